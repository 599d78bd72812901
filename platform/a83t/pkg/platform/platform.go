// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform describes the Allwinner A83T with an AXP803 PMIC.
package platform

import (
	"fmt"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/css"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/i2c"
	"github.com/u-root/u-scp/pkg/mmio"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/pmic"
	"github.com/u-root/u-scp/pkg/power"
	"github.com/u-root/u-scp/pkg/wake"
	"github.com/u-root/u-scp/pkg/watchdog"
)

const (
	CPUCFG_BASE uintptr = 0x01700000
	CCU_BASE    uintptr = 0x01c20000
	R_INTC_BASE uintptr = 0x01f00c00
	R_PRCM_BASE uintptr = 0x01f01400
	R_TWD_BASE  uintptr = 0x01f01c00

	// The PMIC sits on R_RSB, exposed by the kernel as the first bus.
	PMIC_BUS = "/dev/i2c-0"

	CLUSTERS = 2
	CORES    = 4
)

// R_INTC lines of the wake sources.
var wakeIRQ = map[wake.Source]uint{
	wake.NMI:         0,
	wake.PowerButton: 1,
	wake.RTCAlarm:    2,
	wake.MsgBox:      3,
	wake.IR:          4,
}

// Board is an A83T whose register window comes from open and whose PMIC
// is reached through bus.
type Board struct {
	name string
	open func() (mmio.Provider, error)
	mem  mmio.Provider

	twd  *watchdog.TWD
	cfg  *css.CPUCfg
	clk  *ccu.Bitmap
	pd   *ccu.Bitmap
	intc *wake.INTC

	bus      *device.Device
	pmic     *device.Device
	watchdog *device.Device
	css      *device.Device
	ccu      *device.Device
	prcm     *device.Device
	wake     *device.Device
}

// New returns an A83T board. Devices are created but not usable until
// InitializeSystem.
func New(name string, open func() (mmio.Provider, error), bus i2c.Driver) *Board {
	b := &Board{
		name: name,
		open: open,
		twd:  &watchdog.TWD{Base: R_TWD_BASE},
		cfg:  &css.CPUCfg{Base: CPUCFG_BASE, Clusters: CLUSTERS, Cores: CORES},
		clk:  &ccu.Bitmap{Base: CCU_BASE},
		pd:   &ccu.Bitmap{Base: R_PRCM_BASE, ActiveLow: true},
		intc: &wake.INTC{Base: R_INTC_BASE, IRQ: wakeIRQ},
	}
	b.bus = &device.Device{Name: "r_rsb", Driver: bus}
	b.pmic = &device.Device{Name: "axp803", Driver: &pmic.AXP803{Bus: b.bus}}
	b.watchdog = &device.Device{Name: "r_twd", Driver: b.twd}
	b.css = &device.Device{Name: "cpucfg", Driver: b.cfg}
	b.ccu = &device.Device{Name: "ccu", Driver: b.clk}
	b.prcm = &device.Device{Name: "r_prcm", Driver: b.pd}
	b.wake = &device.Device{Name: "r_intc", Driver: b.intc}
	return b
}

func (b *Board) Name() string {
	return b.name
}

func (b *Board) InitializeSystem() error {
	mem, err := b.open()
	if err != nil {
		return fmt.Errorf("%s: register window: %w", b.name, err)
	}
	b.mem = mem
	b.twd.Mem = mem
	b.cfg.Mem = mem
	b.clk.Mem = mem
	b.pd.Mem = mem
	b.intc.Mem = mem
	return nil
}

// Mem is the register window, nil before InitializeSystem.
func (b *Board) Mem() mmio.Provider {
	return b.mem
}

func (b *Board) Devices() power.Devices {
	return power.Devices{
		PMIC:     b.pmic,
		CSS:      b.css,
		Watchdog: b.watchdog,
		CCU:      b.ccu,
		PRCM:     b.prcm,
		Wake:     b.wake,
	}
}

// Resident keeps the PMIC bus open and the interrupt controller
// configured between transitions.
func (b *Board) Resident() []*device.Device {
	return []*device.Device{b.bus, b.wake}
}

func (b *Board) Gates() platform.Gates {
	return platform.Gates{
		SuspendClocks: []ccu.Gate{
			ccu.A83T_GATE_GPU,
			ccu.A83T_GATE_VE,
			ccu.A83T_GATE_DE,
			ccu.A83T_GATE_HDMI,
			ccu.A83T_GATE_CSI,
			ccu.A83T_GATE_MMC1,
			ccu.A83T_GATE_MMC2,
			ccu.A83T_GATE_NAND,
			ccu.A83T_GATE_SPI0,
			ccu.A83T_GATE_SPI1,
			ccu.A83T_GATE_I2S0,
			ccu.A83T_GATE_EHCI0,
			ccu.A83T_GATE_EHCI1,
			ccu.A83T_GATE_USBOTG,
		},
		SuspendDomains: []ccu.Gate{
			ccu.A83T_PD_GPU,
			ccu.A83T_PD_VE,
			ccu.A83T_PD_DE,
		},
		// After shutdown only the R_ domain keeps running, so everything
		// else goes.
		ShutdownClocks: []ccu.Gate{
			ccu.A83T_GATE_GPU,
			ccu.A83T_GATE_VE,
			ccu.A83T_GATE_DE,
			ccu.A83T_GATE_HDMI,
			ccu.A83T_GATE_CSI,
			ccu.A83T_GATE_DMA,
			ccu.A83T_GATE_MMC0,
			ccu.A83T_GATE_MMC1,
			ccu.A83T_GATE_MMC2,
			ccu.A83T_GATE_NAND,
			ccu.A83T_GATE_EMAC,
			ccu.A83T_GATE_SPI0,
			ccu.A83T_GATE_SPI1,
			ccu.A83T_GATE_I2S0,
			ccu.A83T_GATE_EHCI0,
			ccu.A83T_GATE_EHCI1,
			ccu.A83T_GATE_USBOTG,
			ccu.A83T_GATE_MSGBOX,
			ccu.A83T_GATE_HSTIMER,
			ccu.A83T_GATE_I2C0,
			ccu.A83T_GATE_UART1,
		},
		ShutdownDomains: []ccu.Gate{
			ccu.A83T_PD_GPU,
			ccu.A83T_PD_VE,
			ccu.A83T_PD_DE,
			ccu.A83T_PD_USB,
			ccu.A83T_PD_VDD_SYS,
		},
	}
}

func (b *Board) Close() {
	if b.mem != nil {
		b.mem.Close()
		b.mem = nil
	}
}

func init() {
	platform.Register("a83t", func() platform.Platform {
		return New("a83t", func() (mmio.Provider, error) {
			return mmio.Open()
		}, &i2c.Dev{Path: PMIC_BUS})
	})
}
