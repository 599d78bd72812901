// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/css"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/pmic"
	"github.com/u-root/u-scp/pkg/wake"
	"github.com/u-root/u-scp/pkg/watchdog"
	"go.uber.org/multierr"
)

// action is one hardware step of a sequence.
type action struct {
	name string
	do   func(m *Machine) error
}

// sequence is the work Step does for a transitional state. Ordered
// sequences stop at the first failing action. Best-effort sequences run
// every action and never leave their state.
type sequence struct {
	actions    []action
	next       State
	bestEffort bool
}

var sequences = map[State]sequence{
	Suspend: {
		actions: []action{
			{"enable wake sources", func(m *Machine) error { return m.armWake(m.cfg.SuspendWake) }},
			{"pmic suspend", func(m *Machine) error { return m.with(m.cfg.PMIC, pmic.Suspend) }},
			{"gate power domains", func(m *Machine) error { return m.gate(m.cfg.PRCM, m.cfg.SuspendDomains, &m.gatedDomains) }},
			{"gate clocks", func(m *Machine) error { return m.gate(m.cfg.CCU, m.cfg.SuspendClocks, &m.gatedClocks) }},
		},
		next: Inactive,
	},
	Resume: {
		actions: []action{
			{"ungate clocks", func(m *Machine) error { return m.ungate(m.cfg.CCU, &m.gatedClocks) }},
			{"ungate power domains", func(m *Machine) error { return m.ungate(m.cfg.PRCM, &m.gatedDomains) }},
			{"pmic resume", func(m *Machine) error { return m.with(m.cfg.PMIC, pmic.Resume) }},
			{"disable wake sources", (*Machine).disarmWake},
			{"start first core", (*Machine).bootCore},
		},
		next: Active,
	},
	Shutdown: {
		actions: []action{
			{"enable wake sources", func(m *Machine) error { return m.armWake(m.cfg.ShutdownWake) }},
			{"pmic shutdown", func(m *Machine) error { return m.with(m.cfg.PMIC, pmic.Shutdown) }},
			{"gate power domains", func(m *Machine) error { return m.gate(m.cfg.PRCM, m.cfg.ShutdownDomains, &m.gatedDomains) }},
			{"gate clocks", func(m *Machine) error { return m.gate(m.cfg.CCU, m.cfg.ShutdownClocks, &m.gatedClocks) }},
		},
		next: Off,
	},
	Reset: {
		actions: []action{
			{"pmic reset", func(m *Machine) error { return m.with(m.cfg.PMIC, pmic.Reset) }},
			{"watchdog reset", (*Machine).watchdogReset},
		},
		next:       Reset,
		bestEffort: true,
	},
}

// with runs f on a reference to d held for the duration of the call.
// A nil device means the platform lacks it and f is skipped.
func (m *Machine) with(d *device.Device, f func(*device.Device) error) error {
	if d == nil {
		return nil
	}
	if _, err := d.Get(); err != nil {
		return err
	}
	defer d.Put()
	return f(d)
}

// hold takes a reference to d that outlives the current step, once.
func (m *Machine) hold(d *device.Device, held *bool) error {
	if d == nil || *held {
		return nil
	}
	if _, err := d.Get(); err != nil {
		return err
	}
	*held = true
	return nil
}

func (m *Machine) unhold(d *device.Device, held *bool) {
	if *held {
		d.Put()
		*held = false
	}
}

// armWake keeps the wake controller held while sources are armed.
// Releasing it disables every source.
func (m *Machine) armWake(s wake.Source) error {
	if s == 0 {
		return nil
	}
	if err := m.hold(m.cfg.Wake, &m.holdsWake); err != nil {
		return err
	}
	return m.with(m.cfg.Wake, func(d *device.Device) error {
		if err := wake.Enable(d, s); err != nil {
			return err
		}
		m.armed |= s
		return nil
	})
}

func (m *Machine) disarmWake() error {
	err := m.with(m.cfg.Wake, func(d *device.Device) error {
		if m.armed == 0 {
			return nil
		}
		if err := wake.Disable(d, m.armed); err != nil {
			return err
		}
		m.armed = 0
		return nil
	})
	if err == nil {
		m.unhold(m.cfg.Wake, &m.holdsWake)
	}
	return err
}

// gate closes gates and remembers the ones that were open in *closed so
// ungate restores exactly those.
func (m *Machine) gate(d *device.Device, gates []ccu.Gate, closed *[]ccu.Gate) error {
	if len(gates) == 0 {
		return nil
	}
	return m.with(d, func(d *device.Device) error {
		changed, err := ccu.GateSet(d, gates)
		*closed = append(*closed, changed...)
		return err
	})
}

func (m *Machine) ungate(d *device.Device, closed *[]ccu.Gate) error {
	if len(*closed) == 0 {
		return nil
	}
	return m.with(d, func(d *device.Device) error {
		if err := ccu.UngateSet(d, *closed); err != nil {
			return err
		}
		*closed = nil
		return nil
	})
}

// bootCore powers the subsystem, then cluster 0, then core 0 of it.
// Each level requires its parent.
func (m *Machine) bootCore() error {
	return m.with(m.cfg.CSS, func(d *device.Device) error {
		if err := css.SetCSSState(d, css.On); err != nil {
			return err
		}
		if err := css.SetClusterState(d, 0, css.On); err != nil {
			return err
		}
		return css.SetCoreState(d, 0, 0, css.On)
	})
}

// watchdogReset re-arms the watchdog so it fires right away. The disable
// goes first so a running countdown cannot delay the reset. Releasing the
// watchdog stops it and Reset is never left, so the machine keeps its
// reference for good.
func (m *Machine) watchdogReset() error {
	if err := m.hold(m.cfg.Watchdog, &m.holdsWatchdog); err != nil {
		return err
	}
	return m.with(m.cfg.Watchdog, func(d *device.Device) error {
		return multierr.Append(
			watchdog.Disable(d),
			watchdog.Enable(d, m.cfg.ResetTimeout),
		)
	})
}
