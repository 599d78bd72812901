// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watchdog

import (
	"errors"
	"testing"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio/mmiotest"
)

const base = 0x01f01c00

func running(t *testing.T, fm *mmiotest.Fake) *device.Device {
	t.Helper()
	d := &device.Device{Name: "r_twd", Driver: &TWD{Mem: fm, Base: base}}
	fm.ExpectWrite32(base+0x10, 0x80000002)
	if _, err := d.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	return d
}

func TestDisableEnableTwd(t *testing.T) {
	fm := mmiotest.New(t)
	d := running(t, fm)

	fm.ExpectWrite32(base+0x10, 0x80000002)
	if err := Disable(d); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	fm.ExpectWrite32(base+0x30, 5000*32)
	fm.ExpectWrite32(base+0x14, 0x0d140001)
	fm.ExpectWrite32(base+0x10, 0x80000200)
	if err := Enable(d, 5000); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	fm.ExpectWrite32(base+0x10, 0x80000002)
	d.Put()
	fm.Done()
}

func TestEnableZeroTimeoutFiresImmediately(t *testing.T) {
	fm := mmiotest.New(t)
	d := running(t, fm)

	fm.ExpectWrite32(base+0x30, 1)
	fm.ExpectWrite32(base+0x14, 0x0d140001)
	fm.ExpectWrite32(base+0x10, 0x80000200)
	if err := Enable(d, 0); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	fm.Done()
}

func TestEnableOutOfRange(t *testing.T) {
	fm := mmiotest.New(t)
	d := running(t, fm)
	if err := Enable(d, 0xffffffff); err == nil {
		t.Error("Enable accepted an interval beyond the counter width")
	}
	fm.Done()
}

func TestStoppedDeviceIsNotTouched(t *testing.T) {
	fm := mmiotest.New(t)
	d := &device.Device{Name: "r_twd", Driver: &TWD{Mem: fm, Base: base}}
	if err := Enable(d, 0); !errors.Is(err, device.ErrNotRunning) {
		t.Errorf("Enable on stopped device = %v, want ErrNotRunning", err)
	}
	if err := Disable(d); !errors.Is(err, device.ErrNotRunning) {
		t.Errorf("Disable on stopped device = %v, want ErrNotRunning", err)
	}
	fm.Done()
}
