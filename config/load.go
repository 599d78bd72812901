// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/u-root/u-scp/pkg/wake"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from fs and overlays it on DefaultConfig. Keys
// absent from the file keep their default values.
func Load(fs afero.Fs, path string) (*Config, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c := DefaultConfig.Clone()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	n := *c
	n.Power.SuspendWake = append([]string(nil), c.Power.SuspendWake...)
	n.Power.ShutdownWake = append([]string(nil), c.Power.ShutdownWake...)
	return &n
}

// Validate checks values that cannot be checked while decoding.
func (c *Config) Validate() error {
	if !c.Power.InitialState.Stable() {
		return fmt.Errorf("power.initial_state must be active, inactive or off, got %v", c.Power.InitialState)
	}
	if c.Power.StepInterval <= 0 {
		return fmt.Errorf("power.step_interval must be positive, got %v", c.Power.StepInterval)
	}
	if _, err := ParseWake(c.Power.SuspendWake); err != nil {
		return fmt.Errorf("power.suspend_wake: %w", err)
	}
	if _, err := ParseWake(c.Power.ShutdownWake); err != nil {
		return fmt.Errorf("power.shutdown_wake: %w", err)
	}
	if c.Console.Device != "" && c.Console.Baud <= 0 {
		return fmt.Errorf("console.baud must be positive, got %d", c.Console.Baud)
	}
	return nil
}

// ParseWake combines wake source names into a set.
func ParseWake(names []string) (wake.Source, error) {
	var s wake.Source
	for _, n := range names {
		src, err := wake.ParseSource(n)
		if err != nil {
			return 0, err
		}
		s |= src
	}
	return s, nil
}
