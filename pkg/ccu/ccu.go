// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ccu gates clocks and power domains. A gate is a single bit in a
// register; the same driver serves the clock control unit and the power
// reset control module, which differ only in base address and bit sense.
package ccu

import (
	"fmt"
	"sync"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
)

// Gate is one gate bit. Reg is an offset from the driver base.
type Gate struct {
	Name string
	Reg  uintptr
	Bit  uint
}

func (g Gate) String() string {
	return g.Name
}

// GateAt returns the gate for bit index idx of a bitmap starting at base,
// counted in 32-bit words.
func GateAt(name string, base uintptr, idx uint) Gate {
	return Gate{Name: name, Reg: base + uintptr(idx/32)*4, Bit: idx % 32}
}

// Driver is the gating capability.
type Driver interface {
	device.Driver
	// Gate turns the given gates off and returns those that were open,
	// which is the set a later Ungate should restore.
	Gate(d *device.Device, gates []Gate) ([]Gate, error)
	// Ungate turns the given gates on.
	Ungate(d *device.Device, gates []Gate) error
}

// GateSet closes gates on d and returns the ones that changed.
func GateSet(d *device.Device, gates []Gate) ([]Gate, error) {
	c, err := device.As[Driver](d)
	if err != nil {
		return nil, err
	}
	return c.Gate(d, gates)
}

// UngateSet opens gates on d.
func UngateSet(d *device.Device, gates []Gate) error {
	c, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return c.Ungate(d, gates)
}

// Bitmap gates by bit. With ActiveLow set, a set bit means gated, as in
// power-off gating registers; otherwise a set bit means open, as in clock
// gating registers.
type Bitmap struct {
	Mem       mmio.Provider
	Base      uintptr
	ActiveLow bool

	mu sync.Mutex
}

func (b *Bitmap) Probe(d *device.Device) error {
	if b.Mem == nil {
		return fmt.Errorf("%s: no register window", d.Name)
	}
	return nil
}

func (b *Bitmap) Release(d *device.Device) {
}

func (b *Bitmap) open(g Gate) bool {
	set := b.Mem.MustRead32(b.Base+g.Reg)&(1<<g.Bit) != 0
	return set != b.ActiveLow
}

func (b *Bitmap) set(g Gate, open bool) {
	if open != b.ActiveLow {
		mmio.SetBits(b.Mem, b.Base+g.Reg, 1<<g.Bit)
	} else {
		mmio.ClearBits(b.Mem, b.Base+g.Reg, 1<<g.Bit)
	}
}

func (b *Bitmap) Gate(d *device.Device, gates []Gate) ([]Gate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var changed []Gate
	for _, g := range gates {
		if g.Bit > 31 {
			return changed, fmt.Errorf("%s: gate %s: bit %d out of range", d.Name, g.Name, g.Bit)
		}
		if !b.open(g) {
			continue
		}
		b.set(g, false)
		changed = append(changed, g)
	}
	return changed, nil
}

func (b *Bitmap) Ungate(d *device.Device, gates []Gate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, g := range gates {
		if g.Bit > 31 {
			return fmt.Errorf("%s: gate %s: bit %d out of range", d.Name, g.Name, g.Bit)
		}
		b.set(g, true)
	}
	return nil
}
