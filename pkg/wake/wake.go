// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wake arms and disarms the interrupts able to bring the system
// out of a low power state.
package wake

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
)

// Source is a set of wake sources.
type Source uint32

const (
	// NMI is the PMIC interrupt, including its power key.
	NMI Source = 1 << iota
	// PowerButton is a GPIO in the always-on pin controller.
	PowerButton
	// RTCAlarm is the always-on real time clock.
	RTCAlarm
	// MsgBox carries requests from the application processor.
	MsgBox
	// IR is the always-on infrared receiver.
	IR
)

var sourceNames = map[Source]string{
	NMI:         "nmi",
	PowerButton: "power-button",
	RTCAlarm:    "rtc-alarm",
	MsgBox:      "msgbox",
	IR:          "ir",
}

func (s Source) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for bit, name := range sourceNames {
		if s&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if rest := s &^ All(); rest != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// All returns every known source.
func All() Source {
	var s Source
	for bit := range sourceNames {
		s |= bit
	}
	return s
}

// ParseSource parses a source name.
func ParseSource(name string) (Source, error) {
	for bit, n := range sourceNames {
		if n == name {
			return bit, nil
		}
	}
	return 0, fmt.Errorf("unknown wake source %q", name)
}

// Driver is the wake source capability.
type Driver interface {
	device.Driver
	Enable(d *device.Device, s Source) error
	Disable(d *device.Device, s Source) error
}

// Enable arms the sources in s.
func Enable(d *device.Device, s Source) error {
	w, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return w.Enable(d, s)
}

// Disable disarms the sources in s.
func Disable(d *device.Device, s Source) error {
	w, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return w.Disable(d, s)
}

const (
	// Offsets from INTC.Base
	INTC_ENABLE uintptr = 0x40
	INTC_MASK   uintptr = 0x50
)

// INTC drives the enable and mask registers of the always-on interrupt
// controller. IRQ maps each source to its interrupt line.
type INTC struct {
	Mem  mmio.Provider
	Base uintptr
	IRQ  map[Source]uint

	mu sync.Mutex
}

func (c *INTC) lines(d *device.Device, s Source) (uint32, error) {
	var mask uint32
	for bit := Source(1); bit != 0 && bit <= s; bit <<= 1 {
		if s&bit == 0 {
			continue
		}
		irq, ok := c.IRQ[bit]
		if !ok || irq > 31 {
			return 0, fmt.Errorf("%s: no interrupt line for %v", d.Name, bit)
		}
		mask |= 1 << irq
	}
	return mask, nil
}

func (c *INTC) Probe(d *device.Device) error {
	if c.Mem == nil {
		return fmt.Errorf("%s: no register window", d.Name)
	}
	return nil
}

// Release disarms everything so no stale wake can fire.
func (c *INTC) Release(d *device.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Mem.MustWrite32(c.Base+INTC_ENABLE, 0)
}

func (c *INTC) Enable(d *device.Device, s Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	mask, err := c.lines(d, s)
	if err != nil {
		return err
	}
	mmio.ClearBits(c.Mem, c.Base+INTC_MASK, mask)
	mmio.SetBits(c.Mem, c.Base+INTC_ENABLE, mask)
	return nil
}

func (c *INTC) Disable(d *device.Device, s Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	mask, err := c.lines(d, s)
	if err != nil {
		return err
	}
	mmio.ClearBits(c.Mem, c.Base+INTC_ENABLE, mask)
	mmio.SetBits(c.Mem, c.Base+INTC_MASK, mask)
	return nil
}
