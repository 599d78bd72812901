// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watchdog

import (
	"fmt"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
)

const (
	TWD_STATUS  uintptr = 0x00
	TWD_CTRL    uintptr = 0x10
	TWD_RESTART uintptr = 0x14
	TWD_INTV    uintptr = 0x30

	// TWD_CTRL bits
	TWD_CTRL_STOP      uint32 = 1 << 1
	TWD_CTRL_RESET_EN  uint32 = 1 << 9
	TWD_CTRL_CLK_32KHZ uint32 = 1 << 31

	// The restart register only latches writes carrying this key.
	TWD_RESTART_KEY uint32 = 0xd14 << 16

	// Ticks of the 32kHz counter per millisecond, rounded down.
	twdTicksPerMs = 32
)

// TWD drives the sunxi trusted watchdog in the R_ domain.
type TWD struct {
	Mem  mmio.Provider
	Base uintptr
}

func (w *TWD) Probe(d *device.Device) error {
	if w.Mem == nil {
		return fmt.Errorf("%s: no register window", d.Name)
	}
	// Leave the counter stopped until someone arms it.
	w.Mem.MustWrite32(w.Base+TWD_CTRL, TWD_CTRL_CLK_32KHZ|TWD_CTRL_STOP)
	return nil
}

func (w *TWD) Release(d *device.Device) {
	w.Mem.MustWrite32(w.Base+TWD_CTRL, TWD_CTRL_CLK_32KHZ|TWD_CTRL_STOP)
}

func (w *TWD) Enable(d *device.Device, timeout uint32) error {
	ticks := uint64(timeout) * twdTicksPerMs
	if ticks == 0 {
		ticks = 1
	}
	if ticks > 0xffffffff {
		return fmt.Errorf("%s: timeout %dms out of range", d.Name, timeout)
	}
	w.Mem.MustWrite32(w.Base+TWD_INTV, uint32(ticks))
	w.Mem.MustWrite32(w.Base+TWD_RESTART, TWD_RESTART_KEY|1)
	w.Mem.MustWrite32(w.Base+TWD_CTRL, TWD_CTRL_CLK_32KHZ|TWD_CTRL_RESET_EN)
	return nil
}

func (w *TWD) Disable(d *device.Device) error {
	w.Mem.MustWrite32(w.Base+TWD_CTRL, TWD_CTRL_CLK_32KHZ|TWD_CTRL_STOP)
	return nil
}
