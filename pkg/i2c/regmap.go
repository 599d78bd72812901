// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"fmt"
	"sync"

	"github.com/u-root/u-scp/pkg/device"
)

// Regmap is an in-memory bus. Targets must be added before use.
type Regmap struct {
	mu      sync.Mutex
	targets map[uint8]*[256]uint8
	// OnWrite, if set, observes every register write.
	OnWrite func(addr, reg, val uint8)
}

// AddTarget attaches a target at addr with the given initial registers.
func (r *Regmap) AddTarget(addr uint8, init map[uint8]uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.targets == nil {
		r.targets = make(map[uint8]*[256]uint8)
	}
	regs := &[256]uint8{}
	for k, v := range init {
		regs[k] = v
	}
	r.targets[addr] = regs
}

func (r *Regmap) Probe(*device.Device) error { return nil }
func (r *Regmap) Release(*device.Device)     {}

func (r *Regmap) regs(d *device.Device, addr uint8) (*[256]uint8, error) {
	t, ok := r.targets[addr]
	if !ok {
		return nil, fmt.Errorf("%s: no target at %#02x", d.Name, addr)
	}
	return t, nil
}

func (r *Regmap) ReadReg(d *device.Device, addr, reg uint8) (uint8, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.regs(d, addr)
	if err != nil {
		return 0, err
	}
	return t[reg], nil
}

func (r *Regmap) WriteReg(d *device.Device, addr, reg, val uint8) error {
	r.mu.Lock()
	t, err := r.regs(d, addr)
	if err == nil {
		t[reg] = val
	}
	hook := r.OnWrite
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(addr, reg, val)
	}
	return nil
}
