// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package css

import (
	"errors"
	"testing"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
	"github.com/u-root/u-scp/pkg/mmio/mmiotest"
)

const base = 0x01700000

func newCSS(t *testing.T) (*device.Device, *mmio.Sparse) {
	t.Helper()
	mem := mmio.NewSparse()
	d := &device.Device{Name: "css", Driver: &CPUCfg{Mem: mem, Base: base, Clusters: 2, Cores: 4}}
	if _, err := d.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(d.Put)
	return d, mem
}

func TestPowerOnInOrder(t *testing.T) {
	d, mem := newCSS(t)

	if err := SetCSSState(d, On); err != nil {
		t.Fatalf("SetCSSState: %v", err)
	}
	if err := SetClusterState(d, 0, On); err != nil {
		t.Fatalf("SetClusterState: %v", err)
	}
	if err := SetCoreState(d, 0, 0, On); err != nil {
		t.Fatalf("SetCoreState: %v", err)
	}

	if v := mem.MustRead32(base + CSS_CTRL); v != CSS_CTRL_ON {
		t.Errorf("CSS_CTRL = %#08x", v)
	}
	if v := mem.MustRead32(base + CLUSTER_PWR); v != CLUSTER_PWR_ON|1 {
		t.Errorf("CLUSTER_PWR(0) = %#08x", v)
	}
	if v := mem.MustRead32(base + CLUSTER_RESET); v != 1 {
		t.Errorf("CLUSTER_RESET(0) = %#08x", v)
	}
	if v := mem.MustRead32(base + CLUSTER_PWR + 4); v != 0 {
		t.Errorf("CLUSTER_PWR(1) = %#08x, want untouched", v)
	}
}

func TestHierarchyEnforced(t *testing.T) {
	d, _ := newCSS(t)

	if err := SetClusterState(d, 0, On); !errors.Is(err, ErrParentOff) {
		t.Errorf("cluster on with CSS off = %v, want ErrParentOff", err)
	}
	if err := SetCoreState(d, 0, 0, On); !errors.Is(err, ErrParentOff) {
		t.Errorf("core on with cluster off = %v, want ErrParentOff", err)
	}

	SetCSSState(d, On)
	SetClusterState(d, 1, On)
	SetCoreState(d, 1, 3, On)

	if err := SetClusterState(d, 1, Off); !errors.Is(err, ErrChildOn) {
		t.Errorf("cluster off with core on = %v, want ErrChildOn", err)
	}
	if err := SetCSSState(d, Off); !errors.Is(err, ErrChildOn) {
		t.Errorf("CSS off with cluster on = %v, want ErrChildOn", err)
	}

	for _, err := range []error{
		SetCoreState(d, 1, 3, Off),
		SetClusterState(d, 1, Off),
		SetCSSState(d, Off),
	} {
		if err != nil {
			t.Errorf("orderly power down: %v", err)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	d, _ := newCSS(t)
	SetCSSState(d, On)
	if err := SetClusterState(d, 2, On); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("cluster 2 = %v, want ErrNoSuchNode", err)
	}
	if err := SetCoreState(d, 0, 4, On); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("core 0.4 = %v, want ErrNoSuchNode", err)
	}
}

func TestCoreOnRegisterSequence(t *testing.T) {
	fm := mmiotest.New(t)
	d := &device.Device{Name: "css", Driver: &CPUCfg{Mem: fm, Base: base, Clusters: 1, Cores: 4}}
	if _, err := d.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer d.Put()

	// Power first, then reset deassert.
	fm.FakeRead32(base+0x10, CLUSTER_PWR_ON)
	fm.FakeRead32(base+0x10, CLUSTER_PWR_ON)
	fm.ExpectWrite32(base+0x10, CLUSTER_PWR_ON|1)
	fm.FakeRead32(base+0x80, 0)
	fm.ExpectWrite32(base+0x80, 1)
	if err := SetCoreState(d, 0, 0, On); err != nil {
		t.Fatalf("SetCoreState: %v", err)
	}
	fm.Done()
}

func TestProbeRejectsBadTopology(t *testing.T) {
	d := &device.Device{Name: "css", Driver: &CPUCfg{Mem: mmio.NewSparse(), Clusters: 0, Cores: 4}}
	if _, err := d.Get(); err == nil {
		t.Error("probe accepted zero clusters")
	}
}

func TestPowerStateString(t *testing.T) {
	if On.String() != "on" || Off.String() != "off" {
		t.Errorf("got %q/%q", On, Off)
	}
}
