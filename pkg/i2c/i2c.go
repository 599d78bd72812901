// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package i2c provides byte-register buses used to reach external chips
// such as the PMIC.
package i2c

import (
	"github.com/u-root/u-scp/pkg/device"
)

// Driver is the bus capability. addr is the 7-bit target address.
type Driver interface {
	device.Driver
	ReadReg(d *device.Device, addr, reg uint8) (uint8, error)
	WriteReg(d *device.Device, addr, reg, val uint8) error
}

// ReadReg reads one register from the target at addr on bus d.
func ReadReg(d *device.Device, addr, reg uint8) (uint8, error) {
	b, err := device.As[Driver](d)
	if err != nil {
		return 0, err
	}
	return b.ReadReg(d, addr, reg)
}

// WriteReg writes one register of the target at addr on bus d.
func WriteReg(d *device.Device, addr, reg, val uint8) error {
	b, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return b.WriteReg(d, addr, reg, val)
}

// SetBits sets mask in a register with a read-modify-write.
func SetBits(d *device.Device, addr, reg, mask uint8) error {
	v, err := ReadReg(d, addr, reg)
	if err != nil {
		return err
	}
	return WriteReg(d, addr, reg, v|mask)
}

// ClearBits clears mask in a register with a read-modify-write.
func ClearBits(d *device.Device, addr, reg, mask uint8) error {
	v, err := ReadReg(d, addr, reg)
	if err != nil {
		return err
	}
	return WriteReg(d, addr, reg, v&^mask)
}
