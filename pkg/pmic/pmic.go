// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmic drives the power management IC during system power
// transitions. Each hook is a single synchronous action.
package pmic

import (
	"github.com/u-root/u-scp/pkg/device"
)

// Driver is the PMIC capability.
type Driver interface {
	device.Driver
	Suspend(d *device.Device) error
	Resume(d *device.Device) error
	Shutdown(d *device.Device) error
	Reset(d *device.Device) error
}

func call(d *device.Device, f func(Driver) error) error {
	p, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return f(p)
}

// Suspend prepares the PMIC to keep only the always-on rails up.
func Suspend(d *device.Device) error {
	return call(d, func(p Driver) error { return p.Suspend(d) })
}

// Resume restores the rails dropped by Suspend.
func Resume(d *device.Device) error {
	return call(d, func(p Driver) error { return p.Resume(d) })
}

// Shutdown turns off every rail the PMIC controls.
func Shutdown(d *device.Device) error {
	return call(d, func(p Driver) error { return p.Shutdown(d) })
}

// Reset asks the PMIC to power cycle the SoC.
func Reset(d *device.Device) error {
	return call(d, func(p Driver) error { return p.Reset(d) })
}
