// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package power implements the system power state machine.
//
// Requests (Suspend, Shutdown, Wakeup, Reset) only move the state into a
// transitional value and may be called from any goroutine, including
// interrupt-like event handlers. The firmware main loop calls Step, which
// performs the hardware sequence for a transitional state and commits the
// next stable state.
//
// Reset is a fixed point: Step keeps re-issuing the PMIC and watchdog
// reset attempts on every call and never leaves Reset. A successful reset
// stops this process before the state is observed again, so continuing
// to run means the attempt failed and must be retried.
package power

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/metric"
	"github.com/u-root/u-scp/pkg/wake"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	transitionCount = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "power",
		Name:      "transitions_total",
	}, "from", "to")
	ignoredRequests = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "power",
		Name:      "ignored_requests_total",
	}, "state", "event")
	stepErrors = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "power",
		Name:      "step_errors_total",
	}, "state", "action")
	resetAttempts = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "power",
		Name:      "reset_attempts_total",
	})
	stateGauge = metric.GaugeVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "power",
		Name:      "state",
		Help:      "Current system power state as its numeric value.",
	})
)

// Devices are the devices a machine drives. PMIC, CSS and Watchdog are
// required; the others may be nil on platforms that lack them.
//
// The machine takes a device only for the action that uses it, except
// where releasing it would undo the action: Wake stays held while sources
// are armed, and Watchdog stays held once a reset has been attempted.
type Devices struct {
	PMIC     *device.Device
	CSS      *device.Device
	Watchdog *device.Device
	// CCU gates clocks.
	CCU *device.Device
	// PRCM gates power domains.
	PRCM *device.Device
	Wake *device.Device
}

// Config describes the hardware a machine sequences.
type Config struct {
	Devices

	InitialState State

	// SuspendWake is armed on suspend. ShutdownWake is armed on shutdown
	// and should only contain sources able to trigger a cold boot.
	SuspendWake  wake.Source
	ShutdownWake wake.Source

	SuspendClocks   []ccu.Gate
	SuspendDomains  []ccu.Gate
	ShutdownClocks  []ccu.Gate
	ShutdownDomains []ccu.Gate

	// ResetTimeout is the watchdog timeout in milliseconds used for
	// reset attempts.
	ResetTimeout uint32

	Logger *zap.Logger
}

// Machine owns the system power state.
type Machine struct {
	cfg   Config
	log   *zap.Logger
	state atomic.Uint32

	// stepMu serializes Step; the fields below it belong to Step.
	stepMu       sync.Mutex
	armed        wake.Source
	gatedClocks  []ccu.Gate
	gatedDomains []ccu.Gate
	// Devices the machine keeps a reference to between steps.
	holdsWake     bool
	holdsWatchdog bool
}

// New returns a machine in cfg.InitialState, which must be stable.
func New(cfg Config) (*Machine, error) {
	if cfg.PMIC == nil || cfg.CSS == nil || cfg.Watchdog == nil {
		return nil, errors.New("power: PMIC, CSS and watchdog devices are required")
	}
	if !cfg.InitialState.Stable() {
		return nil, fmt.Errorf("power: initial state %v is not a stable state", cfg.InitialState)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	m := &Machine{cfg: cfg, log: cfg.Logger.Named("power")}
	m.state.Store(uint32(cfg.InitialState))
	stateGauge.WithLabelValues().Set(float64(cfg.InitialState))
	return m, nil
}

// State returns the current state.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Pending reports whether a transition is waiting for Step.
func (m *Machine) Pending() bool {
	return !m.State().Stable()
}

// CanWake reports whether a wake event would be acted upon.
func (m *Machine) CanWake() bool {
	s := m.State()
	return s == Inactive || s == Off
}

// IsRunning reports whether the application processor is up.
func (m *Machine) IsRunning() bool {
	return m.State() == Active
}

// Suspend requests a suspend. It does nothing unless the system is active.
func (m *Machine) Suspend() bool { return m.request(EventSuspend) }

// Shutdown requests a shutdown. It does nothing unless the system is
// active.
func (m *Machine) Shutdown() bool { return m.request(EventShutdown) }

// Wakeup resumes an inactive system and reboots one that is off.
func (m *Machine) Wakeup() bool { return m.request(EventWakeup) }

// Reset requests a reset from any state, overriding pending transitions.
func (m *Machine) Reset() bool { return m.request(EventReset) }

// Request applies ev and reports whether the state changed.
func (m *Machine) Request(ev Event) bool { return m.request(ev) }

func (m *Machine) request(ev Event) bool {
	for {
		cur := m.State()
		next, ok := transitions[transition{cur, ev}]
		if !ok {
			ignoredRequests.WithLabelValues(cur.String(), ev.String()).Inc()
			m.log.Debug("Ignoring request", zap.Stringer("state", cur), zap.Stringer("event", ev))
			return false
		}
		if m.state.CAS(uint32(cur), uint32(next)) {
			m.changed(cur, next)
			return true
		}
	}
}

func (m *Machine) changed(from, to State) {
	transitionCount.WithLabelValues(from.String(), to.String()).Inc()
	stateGauge.WithLabelValues().Set(float64(to))
	if from != to {
		m.log.Info("Power state change", zap.Stringer("from", from), zap.Stringer("to", to))
	}
}

// Step performs the pending transition, if any, and returns the state it
// leaves behind. It is a no-op in stable states.
//
// If an action of a suspend, resume or shutdown sequence fails, the
// sequence stops and a reset is requested rather than claiming a stable
// state the hardware may not be in. A request arriving while Step runs is
// never overwritten; it is handled by the next Step.
func (m *Machine) Step() State {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	cur := m.State()
	seq, ok := sequences[cur]
	if !ok {
		return cur
	}

	if seq.bestEffort {
		m.runAll(cur, seq)
	} else if err := m.runOrdered(cur, seq); err != nil {
		m.log.Error("Power transition failed, resetting", zap.Stringer("state", cur), zap.Error(err))
		m.Reset()
		return m.State()
	}

	if seq.next != cur {
		if m.state.CAS(uint32(cur), uint32(seq.next)) {
			m.changed(cur, seq.next)
		} else {
			m.log.Info("Transition superseded", zap.Stringer("from", cur), zap.Stringer("by", m.State()))
		}
	}
	return m.State()
}

func (m *Machine) runOrdered(cur State, seq sequence) error {
	for _, a := range seq.actions {
		if err := a.do(m); err != nil {
			stepErrors.WithLabelValues(cur.String(), a.name).Inc()
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return nil
}

func (m *Machine) runAll(cur State, seq sequence) {
	if cur == Reset {
		resetAttempts.WithLabelValues().Inc()
	}
	var errs error
	for _, a := range seq.actions {
		if err := a.do(m); err != nil {
			stepErrors.WithLabelValues(cur.String(), a.name).Inc()
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", a.name, err))
		}
	}
	if errs != nil {
		m.log.Warn("Attempt incomplete", zap.Stringer("state", cur), zap.Error(errs))
		return
	}
	m.log.Debug("Attempt issued", zap.Stringer("state", cur))
}

// Close drops the references the machine keeps between steps. Armed wake
// sources and a running reset watchdog are stopped once nothing else
// holds their device. The machine must not be stepped after Close.
func (m *Machine) Close() {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()
	m.unhold(m.cfg.Wake, &m.holdsWake)
	m.unhold(m.cfg.Watchdog, &m.holdsWatchdog)
}

// Armed returns the wake sources currently armed by the machine.
func (m *Machine) Armed() wake.Source {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()
	return m.armed
}

func (m *Machine) String() string {
	return "power.Machine{" + m.State().String() + ", pending=" + strconv.FormatBool(m.Pending()) + "}"
}
