// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watchdog

import (
	"github.com/u-root/u-scp/pkg/device"
)

// Driver is the watchdog capability.
type Driver interface {
	device.Driver
	// Enable arms the watchdog to reset the SoC after timeout
	// milliseconds. A zero timeout fires as soon as the hardware allows.
	Enable(d *device.Device, timeout uint32) error
	// Disable stops the watchdog.
	Disable(d *device.Device) error
}

// Enable arms the watchdog behind d.
func Enable(d *device.Device, timeout uint32) error {
	w, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return w.Enable(d, timeout)
}

// Disable stops the watchdog behind d.
func Disable(d *device.Device) error {
	w, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return w.Disable(d)
}
