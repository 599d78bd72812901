// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"errors"
	"testing"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/css"
	"github.com/u-root/u-scp/pkg/i2c"
	"github.com/u-root/u-scp/pkg/mmio"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/pmic"
	"github.com/u-root/u-scp/pkg/power"
)

func TestRegistered(t *testing.T) {
	p, err := platform.Open("a83t")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "a83t" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestGates(t *testing.T) {
	g := New("test", nil, &i2c.Regmap{}).Gates()
	for name, set := range map[string][]ccu.Gate{
		"suspend clocks":   g.SuspendClocks,
		"suspend domains":  g.SuspendDomains,
		"shutdown clocks":  g.ShutdownClocks,
		"shutdown domains": g.ShutdownDomains,
	} {
		if len(set) == 0 {
			t.Errorf("%s: empty", name)
		}
		seen := map[ccu.Gate]bool{}
		for _, gate := range set {
			if gate.Bit > 31 {
				t.Errorf("%s: %s: bit %d out of range", name, gate, gate.Bit)
			}
			if seen[gate] {
				t.Errorf("%s: %s listed twice", name, gate)
			}
			seen[gate] = true
		}
	}
	// Keep the console alive in every state.
	for _, gate := range append(g.SuspendClocks, g.ShutdownClocks...) {
		if gate == ccu.A83T_GATE_UART0 {
			t.Errorf("uart0 is gated")
		}
	}
}

func TestInitializeSystemError(t *testing.T) {
	b := New("test", func() (mmio.Provider, error) {
		return nil, errors.New("no /dev/mem")
	}, &i2c.Regmap{})
	if err := b.InitializeSystem(); err == nil {
		t.Fatal("InitializeSystem succeeded without a register window")
	}
	if _, err := b.Devices().Watchdog.Get(); err == nil {
		t.Error("watchdog probed without a register window")
	}
}

func TestBringUp(t *testing.T) {
	bus := &i2c.Regmap{}
	bus.AddTarget(pmic.AXP803_ADDR, map[uint8]uint8{
		pmic.AXP803_IC_TYPE: pmic.AXP803_IC_TYPE_VALUE,
	})
	b := New("test", func() (mmio.Provider, error) {
		return mmio.NewSparse(), nil
	}, bus)
	if err := b.InitializeSystem(); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	m, err := power.New(power.Config{
		Devices:      b.Devices(),
		InitialState: power.Inactive,
	})
	if err != nil {
		t.Fatal(err)
	}
	m.Wakeup()
	if s := m.Step(); s != power.Active {
		t.Fatalf("Step() = %v, want %v", s, power.Active)
	}
	on := b.Mem().MustRead32(CPUCFG_BASE + css.CLUSTER_PWR)
	if on == 0 {
		t.Errorf("cluster 0 not powered after wakeup")
	}
	for _, d := range b.Resident() {
		if d.IsRunning() {
			t.Errorf("%v running without a holder", d)
		}
	}
}
