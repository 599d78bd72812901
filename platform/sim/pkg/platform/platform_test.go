// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"testing"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/power"
	"github.com/u-root/u-scp/pkg/wake"
	"github.com/u-root/u-scp/pkg/watchdog"
	a83t "github.com/u-root/u-scp/platform/a83t/pkg/platform"
)

func newMachine(t *testing.T, s *Sim) *power.Machine {
	t.Helper()
	if err := s.InitializeSystem(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	g := s.Gates()
	m, err := power.New(power.Config{
		Devices:         s.Devices(),
		InitialState:    power.Inactive,
		SuspendWake:     wake.NMI | wake.PowerButton,
		ShutdownWake:    wake.NMI,
		SuspendClocks:   g.SuspendClocks,
		SuspendDomains:  g.SuspendDomains,
		ShutdownClocks:  g.ShutdownClocks,
		ShutdownDomains: g.ShutdownDomains,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func clockOpen(s *Sim, g ccu.Gate) bool {
	return s.Registers().MustRead32(a83t.CCU_BASE+g.Reg)&(1<<g.Bit) != 0
}

func reg(s *Sim, addr uintptr) uint32 {
	return s.Registers().MustRead32(addr)
}

func step(t *testing.T, m *power.Machine, req func() bool, want power.State) {
	t.Helper()
	if !req() {
		t.Fatalf("request ignored in %v", m.State())
	}
	if got := m.Step(); got != want {
		t.Fatalf("Step() = %v, want %v", got, want)
	}
}

func TestRegistered(t *testing.T) {
	p, err := platform.Open("sim")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*Sim); !ok {
		t.Errorf("Open(sim) returned %T", p)
	}
}

func TestSuspendResume(t *testing.T) {
	s := New()
	m := newMachine(t, s)

	step(t, m, m.Wakeup, power.Active)
	if !clockOpen(s, ccu.A83T_GATE_GPU) {
		t.Fatalf("gpu clock gated before suspend")
	}

	step(t, m, m.Suspend, power.Inactive)
	if clockOpen(s, ccu.A83T_GATE_GPU) {
		t.Errorf("gpu clock open after suspend")
	}
	if !clockOpen(s, ccu.A83T_GATE_UART0) {
		t.Errorf("uart0 clock gated after suspend")
	}
	if got := m.Armed(); got != wake.NMI|wake.PowerButton {
		t.Errorf("Armed() = %v after suspend", got)
	}
	// Nothing outside the machine holds r_intc here.
	if got := reg(s, a83t.R_INTC_BASE+wake.INTC_ENABLE); got != 0x3 {
		t.Errorf("INTC_ENABLE = %#x after suspend, want 0x3", got)
	}

	step(t, m, m.Wakeup, power.Active)
	if !clockOpen(s, ccu.A83T_GATE_GPU) {
		t.Errorf("gpu clock gated after resume")
	}
	if got := m.Armed(); got != 0 {
		t.Errorf("Armed() = %v after resume", got)
	}
	if got := reg(s, a83t.R_INTC_BASE+wake.INTC_ENABLE); got != 0 {
		t.Errorf("INTC_ENABLE = %#x after resume", got)
	}
	for _, d := range []interface{ IsRunning() bool }{s.Devices().PMIC, s.Devices().CCU} {
		if d.IsRunning() {
			t.Errorf("%v left running", d)
		}
	}
}

func TestShutdownAndReset(t *testing.T) {
	s := New()
	m := newMachine(t, s)

	step(t, m, m.Wakeup, power.Active)
	step(t, m, m.Shutdown, power.Off)
	if clockOpen(s, ccu.A83T_GATE_DMA) {
		t.Errorf("dma clock open after shutdown")
	}
	if s.Shutdowns() != 1 {
		t.Errorf("Shutdowns() = %d, want 1", s.Shutdowns())
	}

	if got := reg(s, a83t.R_INTC_BASE+wake.INTC_ENABLE); got != 0x1 {
		t.Errorf("INTC_ENABLE = %#x after shutdown, want 0x1", got)
	}

	step(t, m, m.Reset, power.Reset)
	if s.Resets() == 0 {
		t.Errorf("no PMIC restart after reset")
	}
	// The watchdog must still be counting once the attempt returns.
	for i := 0; i < 2; i++ {
		ctrl := reg(s, a83t.R_TWD_BASE+watchdog.TWD_CTRL)
		if ctrl&watchdog.TWD_CTRL_RESET_EN == 0 || ctrl&watchdog.TWD_CTRL_STOP != 0 {
			t.Errorf("attempt %d: TWD_CTRL = %#x, watchdog not armed", i, ctrl)
		}
		m.Step()
	}
}
