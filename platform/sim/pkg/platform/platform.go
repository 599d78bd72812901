// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform is an A83T with simulated registers and PMIC, for
// running the firmware on a workstation.
package platform

import (
	"github.com/u-root/u-scp/pkg/i2c"
	"github.com/u-root/u-scp/pkg/logger"
	"github.com/u-root/u-scp/pkg/mmio"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/pmic"
	a83t "github.com/u-root/u-scp/platform/a83t/pkg/platform"
	"go.uber.org/atomic"
)

// CCU bus clock gating registers
const (
	BUS_CLK_GATING_FIRST uintptr = 0x60
	BUS_CLK_GATING_LAST  uintptr = 0x6c
)

type Sim struct {
	*a83t.Board
	mem *mmio.Sparse
	bus *i2c.Regmap

	resets    atomic.Uint32
	shutdowns atomic.Uint32
}

// New returns a simulated board with the boot ROM's register state.
func New() *Sim {
	s := &Sim{
		mem: mmio.NewSparse(),
		bus: &i2c.Regmap{},
	}
	s.bus.AddTarget(pmic.AXP803_ADDR, map[uint8]uint8{
		pmic.AXP803_IC_TYPE: pmic.AXP803_IC_TYPE_VALUE,
	})
	s.bus.OnWrite = s.pmicWrite
	s.Board = a83t.New("sim", func() (mmio.Provider, error) {
		return s.mem, nil
	}, s.bus)
	return s
}

func (s *Sim) InitializeSystem() error {
	if err := s.Board.InitializeSystem(); err != nil {
		return err
	}
	// The boot ROM leaves every bus clock running.
	for reg := BUS_CLK_GATING_FIRST; reg <= BUS_CLK_GATING_LAST; reg += 4 {
		s.mem.MustWrite32(a83t.CCU_BASE+reg, 0xffffffff)
	}
	return nil
}

func (s *Sim) pmicWrite(addr, reg, val uint8) {
	if addr != pmic.AXP803_ADDR {
		return
	}
	l := logger.LogContainer.GetSimpleLogger()
	switch {
	case reg == pmic.AXP803_WAKEUP_CTRL && val&pmic.AXP803_WAKEUP_RESTART != 0:
		s.resets.Inc()
		l.Infof("sim: PMIC restart requested (%d so far)", s.resets.Load())
	case reg == pmic.AXP803_POWER_DISABLE && val&pmic.AXP803_POWER_OFF != 0:
		s.shutdowns.Inc()
		l.Infof("sim: PMIC power off requested")
	}
}

// Resets counts PMIC restart requests.
func (s *Sim) Resets() uint32 {
	return s.resets.Load()
}

// Shutdowns counts PMIC power-off requests.
func (s *Sim) Shutdowns() uint32 {
	return s.shutdowns.Load()
}

// Registers exposes the simulated register file.
func (s *Sim) Registers() mmio.Provider {
	return s.mem
}

func init() {
	platform.Register("sim", func() platform.Platform { return New() })
}
