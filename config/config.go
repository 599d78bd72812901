// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"time"

	"github.com/u-root/u-scp/pkg/power"
)

type Version struct {
	Version string
	GitHash string
}

type Power struct {
	// InitialState is the state at cold boot. The application processor
	// has not been started yet, so the default is inactive and the first
	// wakeup boots it. Only active, inactive and off are accepted.
	InitialState power.State `yaml:"initial_state"`
	// StepInterval is how often the main loop steps the state machine.
	StepInterval time.Duration `yaml:"step_interval"`
	// ResetTimeoutMs is the watchdog timeout used by reset attempts.
	ResetTimeoutMs uint32 `yaml:"reset_timeout_ms"`
	// SuspendWake and ShutdownWake name the wake sources armed for each
	// transition; see wake.ParseSource.
	SuspendWake  []string `yaml:"suspend_wake"`
	ShutdownWake []string `yaml:"shutdown_wake"`
}

type Console struct {
	// Device is the serial port of the debug console, disabled if empty.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type Metrics struct {
	// Address for the Prometheus endpoint, disabled if empty.
	Address string `yaml:"address"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ProbeRetry struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	// MaxElapsedTime of zero retries forever.
	MaxElapsedTime time.Duration `yaml:"max_elapsed_time"`
}

type Config struct {
	Version    Version    `yaml:"-"`
	Platform   string     `yaml:"platform"`
	Power      Power      `yaml:"power"`
	Console    Console    `yaml:"console"`
	Metrics    Metrics    `yaml:"metrics"`
	Log        Log        `yaml:"log"`
	ProbeRetry ProbeRetry `yaml:"probe_retry"`
}

var DefaultConfig = &Config{
	Platform: "sim",

	Power: Power{
		InitialState: power.Inactive,
		StepInterval: 10 * time.Millisecond,
		// Zero makes the watchdog fire as soon as it is armed.
		ResetTimeoutMs: 0,
		// The message box lets the application processor's own wake
		// requests through while suspended. Only the PMIC can bring the
		// rails back after a shutdown, so nothing else is armed then.
		SuspendWake:  []string{"nmi", "power-button", "rtc-alarm", "msgbox"},
		ShutdownWake: []string{"nmi"},
	},

	Console: Console{
		Baud: 115200,
	},

	// u-bmc uses 9370, keep the neighbour.
	Metrics: Metrics{
		Address: "[::]:9371",
	},

	Log: Log{
		Level: "info",
	},

	ProbeRetry: ProbeRetry{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsedTime:  30 * time.Second,
	},

	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}
