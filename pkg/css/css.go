// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package css controls power of the compute subsystem: the application
// processor complex, its clusters and their cores. Power is hierarchical;
// a core cannot be on while its cluster is off, nor a cluster while the
// subsystem is off.
package css

import (
	"errors"
	"fmt"

	"github.com/u-root/u-scp/pkg/device"
)

// PowerState of a node in the compute subsystem.
type PowerState uint8

const (
	Off PowerState = iota
	On
)

func (s PowerState) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	}
	return fmt.Sprintf("PowerState(%d)", uint8(s))
}

var (
	// ErrParentOff is returned when powering a node whose parent is off.
	ErrParentOff = errors.New("parent power domain is off")
	// ErrChildOn is returned when powering off a node with live children.
	ErrChildOn = errors.New("child power domain is on")
	// ErrNoSuchNode is returned for out of range cluster or core numbers.
	ErrNoSuchNode = errors.New("no such cluster or core")
)

// Driver is the compute subsystem power capability.
type Driver interface {
	device.Driver
	SetCSSState(d *device.Device, s PowerState) error
	SetClusterState(d *device.Device, cluster int, s PowerState) error
	SetCoreState(d *device.Device, cluster, core int, s PowerState) error
}

// SetCSSState powers the whole subsystem on or off.
func SetCSSState(d *device.Device, s PowerState) error {
	c, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return c.SetCSSState(d, s)
}

// SetClusterState powers one cluster on or off.
func SetClusterState(d *device.Device, cluster int, s PowerState) error {
	c, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return c.SetClusterState(d, cluster, s)
}

// SetCoreState powers one core on or off.
func SetCoreState(d *device.Device, cluster, core int, s PowerState) error {
	c, err := device.As[Driver](d)
	if err != nil {
		return err
	}
	return c.SetCoreState(d, cluster, core, s)
}
