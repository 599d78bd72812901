// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package device implements reference-counted driver lifecycles.
//
// Devices are declared statically by a platform and brought up lazily: the
// first Get probes the driver and the last Put releases it. A driver's
// hardware is never touched outside a Probe/Release bracket, so helpers in
// the driver packages refuse to operate on a device that is not running.
//
// Get and Put may be called from any goroutine. The 0->1 and 1->0 edges are
// serialized per device, so Probe and Release each fire exactly once per
// cycle regardless of how many holders race.
package device

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/u-root/u-scp/pkg/metric"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned when a device is used without a reference.
	ErrNotRunning = errors.New("device not running")
	// ErrWrongDriver is returned when a device's driver lacks a capability.
	ErrWrongDriver = errors.New("driver does not implement capability")
	// ErrContract marks programmer errors such as an unbalanced Put.
	ErrContract = errors.New("device contract violation")
)

var (
	log = zap.NewNop()

	probes = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "device",
		Name:      "probes_total",
	}, "device")
	probeFailures = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "device",
		Name:      "probe_failures_total",
	}, "device")
	releases = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "device",
		Name:      "releases_total",
	}, "device")
	violations = metric.CounterVec(metric.MetricOpts{
		Namespace: "scp",
		Subsystem: "device",
		Name:      "contract_violations_total",
	}, "device")
)

// SetLogger sets the logger used for lifecycle events.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l.Named("device")
}

// Driver is the capability pair every device driver provides.
type Driver interface {
	// Probe detects and initializes the hardware behind d.
	Probe(d *Device) error
	// Release leaves the hardware quiescent and safe to power down.
	Release(d *Device)
}

// Device is a named, driver-backed hardware resource. Devices must not be
// copied after first use.
type Device struct {
	// Name identifies the device in logs and metrics.
	Name string
	// Driver is bound when the device is declared.
	Driver Driver

	mu       sync.Mutex
	refcount atomic.Uint32
}

// Get takes a reference to d, probing the driver if this is the first one.
// On probe failure no reference is taken and Put must not be called.
func (d *Device) Get() (*Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.refcount.Load()
	if n == math.MaxUint32 {
		return nil, violation(d, "reference count overflow")
	}
	if n == 0 {
		if err := d.Driver.Probe(d); err != nil {
			probeFailures.WithLabelValues(d.Name).Inc()
			log.Warn("Probe failed", zap.String("device", d.Name), zap.Error(err))
			return nil, fmt.Errorf("probe %s: %w", d.Name, err)
		}
		probes.WithLabelValues(d.Name).Inc()
		log.Debug("Probed", zap.String("device", d.Name))
	}
	d.refcount.Inc()
	return d, nil
}

// Put drops a reference to d, releasing the driver with the last one.
func (d *Device) Put() {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.refcount.Load()
	if n == 0 {
		violation(d, "put without a reference")
		return
	}
	if n == 1 {
		d.Driver.Release(d)
		releases.WithLabelValues(d.Name).Inc()
		log.Debug("Released", zap.String("device", d.Name))
	}
	d.refcount.Dec()
}

// IsRunning reports whether d has been probed and holds a reference.
func (d *Device) IsRunning() bool {
	return d.refcount.Load() > 0
}

// Refcount returns the number of outstanding references.
func (d *Device) Refcount() uint32 {
	return d.refcount.Load()
}

func (d *Device) String() string {
	return d.Name
}

// As returns the driver of a running device as capability T.
func As[T any](d *Device) (T, error) {
	var zero T
	if d == nil || !d.IsRunning() {
		name := "<nil>"
		if d != nil {
			name = d.Name
		}
		return zero, fmt.Errorf("%s: %w", name, ErrNotRunning)
	}
	c, ok := d.Driver.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %T: %w", d.Name, d.Driver, ErrWrongDriver)
	}
	return c, nil
}

// violation reports a contract violation. Builds tagged debug panic,
// others log and carry on without touching device state.
func violation(d *Device, what string) error {
	err := fmt.Errorf("%s: %s: %w", d.Name, what, ErrContract)
	if strict {
		panic(err)
	}
	violations.WithLabelValues(d.Name).Inc()
	log.Error("Contract violation", zap.String("device", d.Name), zap.Error(err))
	return err
}

// Nop is a driver for devices that only need lifecycle bookkeeping.
type Nop struct{}

func (Nop) Probe(*Device) error { return nil }
func (Nop) Release(*Device)     {}
