// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scp runs the system control processor firmware: it brings up a
// platform, steps the power state machine and serves the request
// surfaces (debug console, signals, metrics).
package scp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/u-root/u-scp/config"
	"github.com/u-root/u-scp/pkg/console"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/logger"
	"github.com/u-root/u-scp/pkg/metric"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/power"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const banner = `
██╗   ██╗      ███████╗ ██████╗██████╗
██║   ██║      ██╔════╝██╔════╝██╔══██╗
██║   ██║█████╗███████╗██║     ██████╔╝
██║   ██║╚════╝╚════██║██║     ██╔═══╝
╚██████╔╝      ███████║╚██████╗██║
 ╚═════╝       ╚══════╝ ╚═════╝╚═╝
 `

var systemVersion = metric.GaugeVec(metric.MetricOpts{
	Namespace: "scp",
	Subsystem: "system",
	Name:      "version",
}, "version")

// Firmware is a platform brought up and bound to a power machine.
type Firmware struct {
	plat platform.Platform
	conf *config.Config
	log  *zap.Logger
	m    *power.Machine
}

// New initializes the platform hardware and builds its power machine.
func New(plat platform.Platform, conf *config.Config, log *zap.Logger) (*Firmware, error) {
	if log == nil {
		log = zap.NewNop()
	}
	device.SetLogger(log)
	log.Info("Initialize system hardware", zap.String("platform", plat.Name()))
	if err := plat.InitializeSystem(); err != nil {
		return nil, fmt.Errorf("platform.InitializeSystem: %w", err)
	}
	m, err := NewMachine(plat, conf, log)
	if err != nil {
		return nil, err
	}
	return &Firmware{plat: plat, conf: conf, log: log, m: m}, nil
}

// NewMachine builds the power machine of plat as configured by conf.
func NewMachine(plat platform.Platform, conf *config.Config, log *zap.Logger) (*power.Machine, error) {
	suspendWake, err := config.ParseWake(conf.Power.SuspendWake)
	if err != nil {
		return nil, err
	}
	shutdownWake, err := config.ParseWake(conf.Power.ShutdownWake)
	if err != nil {
		return nil, err
	}
	g := plat.Gates()
	return power.New(power.Config{
		Devices:         plat.Devices(),
		InitialState:    conf.Power.InitialState,
		SuspendWake:     suspendWake,
		ShutdownWake:    shutdownWake,
		SuspendClocks:   g.SuspendClocks,
		SuspendDomains:  g.SuspendDomains,
		ShutdownClocks:  g.ShutdownClocks,
		ShutdownDomains: g.ShutdownDomains,
		ResetTimeout:    conf.Power.ResetTimeoutMs,
		Logger:          log,
	})
}

// Machine returns the power machine driven by f.
func (f *Firmware) Machine() *power.Machine {
	return f.m
}

// Run holds the resident devices and serves requests until ctx is done.
// The machine is closed and resident devices are released in reverse
// order before it returns.
func (f *Firmware) Run(ctx context.Context) error {
	var port io.ReadWriteCloser
	if dev := f.conf.Console.Device; dev != "" {
		f.log.Info("Configuring debug console", zap.String("device", dev), zap.Int("baud", f.conf.Console.Baud))
		var err error
		if port, err = console.OpenUART(dev, f.conf.Console.Baud); err != nil {
			return err
		}
	}

	held, err := acquire(ctx, f.plat.Resident(), f.conf.ProbeRetry, f.log)
	if err != nil {
		if port != nil {
			port.Close()
		}
		return err
	}
	defer release(held)
	defer f.m.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.stepLoop(ctx)
	})
	g.Go(func() error {
		return f.handleSignals(ctx)
	})
	if addr := f.conf.Metrics.Address; addr != "" {
		f.log.Info("Starting metrics server", zap.String("address", addr))
		g.Go(func() error {
			return metric.Serve(ctx, addr)
		})
	}
	if port != nil {
		g.Go(func() error {
			return f.serveConsole(ctx, port)
		})
	}
	return g.Wait()
}

func (f *Firmware) stepLoop(ctx context.Context) error {
	t := time.NewTicker(f.conf.Power.StepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if f.m.Pending() {
				f.m.Step()
			}
		}
	}
}

func (f *Firmware) serveConsole(ctx context.Context, port io.ReadWriteCloser) error {
	go func() {
		<-ctx.Done()
		port.Close()
	}()
	c := &console.Console{
		Machine: f.m,
		Devices: append(f.plat.Resident(), deviceList(f.plat.Devices())...),
		Logger:  f.log,
	}
	err := c.Serve(port)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		err = errors.New("console closed")
	}
	return err
}

func deviceList(d power.Devices) []*device.Device {
	var l []*device.Device
	for _, dev := range []*device.Device{d.PMIC, d.CSS, d.Watchdog, d.CCU, d.PRCM, d.Wake} {
		if dev != nil {
			l = append(l, dev)
		}
	}
	return l
}

// acquire takes a reference to each device, retrying failed probes with
// exponential backoff. On failure nothing stays held.
func acquire(ctx context.Context, devs []*device.Device, r config.ProbeRetry, log *zap.Logger) ([]*device.Device, error) {
	var held []*device.Device
	for _, d := range devs {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = r.InitialInterval
		b.MaxInterval = r.MaxInterval
		b.MaxElapsedTime = r.MaxElapsedTime
		err := backoff.RetryNotify(func() error {
			_, err := d.Get()
			return err
		}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
			log.Warn("Device probe failed, retrying", zap.Stringer("device", d), zap.Duration("wait", wait), zap.Error(err))
		})
		if err != nil {
			release(held)
			return nil, fmt.Errorf("acquire %v: %w", d, err)
		}
		held = append(held, d)
	}
	return held, nil
}

func release(held []*device.Device) {
	for i := len(held) - 1; i >= 0; i-- {
		held[i].Put()
	}
}

// Startup prints the banner, brings up plat and runs the firmware until
// ctx is done.
func Startup(ctx context.Context, plat platform.Platform, conf *config.Config) error {
	fmt.Print("\n" + banner)
	fmt.Printf("Welcome to u-scp version %s\n\n", conf.Version.Version)
	systemVersion.WithLabelValues(conf.Version.Version).Set(1)

	log := logger.LogContainer.GetLogger()
	f, err := New(plat, conf, log)
	if err != nil {
		return err
	}
	log.Info("Power machine ready", zap.Stringer("state", f.m.State()))
	return f.Run(ctx)
}
