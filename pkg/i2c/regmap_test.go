// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"errors"
	"testing"

	"github.com/u-root/u-scp/pkg/device"
)

func TestRegmapBitHelpers(t *testing.T) {
	rm := &Regmap{}
	rm.AddTarget(0x34, map[uint8]uint8{0x31: 0x01})
	var writes int
	rm.OnWrite = func(addr, reg, val uint8) { writes++ }

	bus := &device.Device{Name: "i2c0", Driver: rm}
	if _, err := bus.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer bus.Put()

	if err := SetBits(bus, 0x34, 0x31, 0x08); err != nil {
		t.Fatalf("SetBits: %v", err)
	}
	if err := ClearBits(bus, 0x34, 0x31, 0x01); err != nil {
		t.Fatalf("ClearBits: %v", err)
	}
	v, err := ReadReg(bus, 0x34, 0x31)
	if err != nil {
		t.Fatalf("ReadReg: %v", err)
	}
	if v != 0x08 {
		t.Errorf("reg 0x31 = %#02x, want 0x08", v)
	}
	if writes != 2 {
		t.Errorf("OnWrite saw %d writes, want 2", writes)
	}
}

func TestRegmapMissingTarget(t *testing.T) {
	bus := &device.Device{Name: "i2c0", Driver: &Regmap{}}
	if _, err := bus.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer bus.Put()
	if _, err := ReadReg(bus, 0x10, 0); err == nil {
		t.Error("read from absent target succeeded")
	}
}

func TestStoppedBus(t *testing.T) {
	bus := &device.Device{Name: "i2c0", Driver: &Regmap{}}
	if err := WriteReg(bus, 0x34, 0, 0); !errors.Is(err, device.ErrNotRunning) {
		t.Errorf("WriteReg on stopped bus = %v, want ErrNotRunning", err)
	}
}
