// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package css

import (
	"fmt"
	"sync"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
)

const (
	// Offsets from CPUCfg.Base
	CSS_CTRL       uintptr = 0x00
	CLUSTER_PWR    uintptr = 0x10
	CLUSTER_RESET  uintptr = 0x80
	clusterStride  uintptr = 0x04
	CSS_CTRL_ON    uint32  = 1 << 0
	CLUSTER_PWR_ON uint32  = 1 << 8
)

// CPUCfg drives the cluster power switches and core resets.
// CLUSTER_PWR(n) carries one power bit per core plus CLUSTER_PWR_ON;
// CLUSTER_RESET(n) carries one deassert bit per core.
type CPUCfg struct {
	Mem      mmio.Provider
	Base     uintptr
	Clusters int
	Cores    int

	mu sync.Mutex
}

func (c *CPUCfg) pwr(cluster int) uintptr {
	return c.Base + CLUSTER_PWR + uintptr(cluster)*clusterStride
}

func (c *CPUCfg) rst(cluster int) uintptr {
	return c.Base + CLUSTER_RESET + uintptr(cluster)*clusterStride
}

func (c *CPUCfg) Probe(d *device.Device) error {
	if c.Mem == nil {
		return fmt.Errorf("%s: no register window", d.Name)
	}
	if c.Clusters < 1 || c.Cores < 1 || c.Cores > 8 {
		return fmt.Errorf("%s: bad topology %dx%d", d.Name, c.Clusters, c.Cores)
	}
	return nil
}

// Release leaves the application processors running; they are not ours
// to stop on teardown.
func (c *CPUCfg) Release(d *device.Device) {
}

func (c *CPUCfg) cssOn() bool {
	return c.Mem.MustRead32(c.Base+CSS_CTRL)&CSS_CTRL_ON != 0
}

func (c *CPUCfg) clusterOn(cluster int) bool {
	return c.Mem.MustRead32(c.pwr(cluster))&CLUSTER_PWR_ON != 0
}

func (c *CPUCfg) coresOn(cluster int) uint32 {
	return c.Mem.MustRead32(c.pwr(cluster)) & (1<<uint(c.Cores) - 1)
}

func (c *CPUCfg) SetCSSState(d *device.Device, s PowerState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == On {
		mmio.SetBits(c.Mem, c.Base+CSS_CTRL, CSS_CTRL_ON)
		return nil
	}
	for i := 0; i < c.Clusters; i++ {
		if c.clusterOn(i) {
			return fmt.Errorf("%s: cluster %d: %w", d.Name, i, ErrChildOn)
		}
	}
	mmio.ClearBits(c.Mem, c.Base+CSS_CTRL, CSS_CTRL_ON)
	return nil
}

func (c *CPUCfg) SetClusterState(d *device.Device, cluster int, s PowerState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cluster < 0 || cluster >= c.Clusters {
		return fmt.Errorf("%s: cluster %d: %w", d.Name, cluster, ErrNoSuchNode)
	}
	if s == On {
		if !c.cssOn() {
			return fmt.Errorf("%s: cluster %d: %w", d.Name, cluster, ErrParentOff)
		}
		mmio.SetBits(c.Mem, c.pwr(cluster), CLUSTER_PWR_ON)
		return nil
	}
	if c.coresOn(cluster) != 0 {
		return fmt.Errorf("%s: cluster %d: %w", d.Name, cluster, ErrChildOn)
	}
	mmio.ClearBits(c.Mem, c.pwr(cluster), CLUSTER_PWR_ON)
	return nil
}

func (c *CPUCfg) SetCoreState(d *device.Device, cluster, core int, s PowerState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cluster < 0 || cluster >= c.Clusters || core < 0 || core >= c.Cores {
		return fmt.Errorf("%s: core %d.%d: %w", d.Name, cluster, core, ErrNoSuchNode)
	}
	bit := uint32(1) << uint(core)
	if s == On {
		if !c.clusterOn(cluster) {
			return fmt.Errorf("%s: core %d.%d: %w", d.Name, cluster, core, ErrParentOff)
		}
		// Power the core up before releasing it from reset.
		mmio.SetBits(c.Mem, c.pwr(cluster), bit)
		mmio.SetBits(c.Mem, c.rst(cluster), bit)
		return nil
	}
	mmio.ClearBits(c.Mem, c.rst(cluster), bit)
	mmio.ClearBits(c.Mem, c.pwr(cluster), bit)
	return nil
}
