// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"fmt"
	"os"
	"sync"

	"github.com/u-root/u-scp/pkg/device"
	"golang.org/x/sys/unix"
)

// From linux/i2c-dev.h
const I2C_SLAVE = 0x0703

// Dev is a bus behind a Linux i2c-dev character device.
type Dev struct {
	Path string

	mu   sync.Mutex
	f    *os.File
	addr int
}

func (b *Dev) Probe(d *device.Device) error {
	f, err := os.OpenFile(b.Path, os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.Path, err)
	}
	b.mu.Lock()
	b.f = f
	b.addr = -1
	b.mu.Unlock()
	return nil
}

func (b *Dev) Release(d *device.Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.f.Close()
	b.f = nil
}

func (b *Dev) target(addr uint8) error {
	if b.addr == int(addr) {
		return nil
	}
	if err := unix.IoctlSetInt(int(b.f.Fd()), I2C_SLAVE, int(addr)); err != nil {
		return fmt.Errorf("%s: select target %#02x: %w", b.Path, addr, err)
	}
	b.addr = int(addr)
	return nil
}

func (b *Dev) ReadReg(d *device.Device, addr, reg uint8) (uint8, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.target(addr); err != nil {
		return 0, err
	}
	if _, err := b.f.Write([]byte{reg}); err != nil {
		return 0, fmt.Errorf("%s: write reg %#02x: %w", d.Name, reg, err)
	}
	buf := make([]byte, 1)
	if _, err := b.f.Read(buf); err != nil {
		return 0, fmt.Errorf("%s: read reg %#02x: %w", d.Name, reg, err)
	}
	return buf[0], nil
}

func (b *Dev) WriteReg(d *device.Device, addr, reg, val uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.target(addr); err != nil {
		return err
	}
	if _, err := b.f.Write([]byte{reg, val}); err != nil {
		return fmt.Errorf("%s: write reg %#02x: %w", d.Name, reg, err)
	}
	return nil
}
