// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmic

import (
	"fmt"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/i2c"
)

const (
	AXP803_ADDR uint8 = 0x34

	AXP803_IC_TYPE       uint8 = 0x03
	AXP803_WAKEUP_CTRL   uint8 = 0x31
	AXP803_POWER_DISABLE uint8 = 0x32

	AXP803_IC_TYPE_MASK  uint8 = 0xcf
	AXP803_IC_TYPE_VALUE uint8 = 0x41

	// AXP803_WAKEUP_CTRL bits
	AXP803_WAKEUP_SLEEP   uint8 = 1 << 3
	AXP803_WAKEUP_TRIGGER uint8 = 1 << 5
	AXP803_WAKEUP_RESTART uint8 = 1 << 6

	// AXP803_POWER_DISABLE bits
	AXP803_POWER_OFF uint8 = 1 << 7
)

// AXP803 drives an X-Powers AXP803 reached over Bus.
type AXP803 struct {
	// Bus is acquired for as long as the PMIC is running.
	Bus *device.Device
	// Addr defaults to AXP803_ADDR.
	Addr uint8
}

func (p *AXP803) addr() uint8 {
	if p.Addr == 0 {
		return AXP803_ADDR
	}
	return p.Addr
}

func (p *AXP803) Probe(d *device.Device) error {
	if _, err := p.Bus.Get(); err != nil {
		return err
	}
	id, err := i2c.ReadReg(p.Bus, p.addr(), AXP803_IC_TYPE)
	if err == nil && id&AXP803_IC_TYPE_MASK != AXP803_IC_TYPE_VALUE {
		err = fmt.Errorf("%s: unexpected IC type %#02x", d.Name, id)
	}
	if err != nil {
		p.Bus.Put()
		return err
	}
	return nil
}

func (p *AXP803) Release(d *device.Device) {
	p.Bus.Put()
}

func (p *AXP803) Suspend(d *device.Device) error {
	return i2c.SetBits(p.Bus, p.addr(), AXP803_WAKEUP_CTRL, AXP803_WAKEUP_SLEEP)
}

func (p *AXP803) Resume(d *device.Device) error {
	v, err := i2c.ReadReg(p.Bus, p.addr(), AXP803_WAKEUP_CTRL)
	if err != nil {
		return err
	}
	v = (v &^ AXP803_WAKEUP_SLEEP) | AXP803_WAKEUP_TRIGGER
	return i2c.WriteReg(p.Bus, p.addr(), AXP803_WAKEUP_CTRL, v)
}

func (p *AXP803) Shutdown(d *device.Device) error {
	return i2c.SetBits(p.Bus, p.addr(), AXP803_POWER_DISABLE, AXP803_POWER_OFF)
}

func (p *AXP803) Reset(d *device.Device) error {
	return i2c.SetBits(p.Bus, p.addr(), AXP803_WAKEUP_CTRL, AXP803_WAKEUP_RESTART)
}
