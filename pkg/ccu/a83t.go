// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ccu

// A83T bus clock gates, offsets from the CCU base.
const a83tGateBase = 0x0060 / 4

var (
	A83T_GATE_DMA     = GateAt("dma", 0, a83tGateBase*32+6)
	A83T_GATE_MMC0    = GateAt("mmc0", 0, a83tGateBase*32+8)
	A83T_GATE_MMC1    = GateAt("mmc1", 0, a83tGateBase*32+9)
	A83T_GATE_MMC2    = GateAt("mmc2", 0, a83tGateBase*32+10)
	A83T_GATE_NAND    = GateAt("nand", 0, a83tGateBase*32+13)
	A83T_GATE_EMAC    = GateAt("emac", 0, a83tGateBase*32+17)
	A83T_GATE_SPI0    = GateAt("spi0", 0, a83tGateBase*32+20)
	A83T_GATE_SPI1    = GateAt("spi1", 0, a83tGateBase*32+21)
	A83T_GATE_USBOTG  = GateAt("usbotg", 0, a83tGateBase*32+24)
	A83T_GATE_EHCI0   = GateAt("ehci0", 0, a83tGateBase*32+26)
	A83T_GATE_EHCI1   = GateAt("ehci1", 0, a83tGateBase*32+27)
	A83T_GATE_VE      = GateAt("ve", 0, (a83tGateBase+1)*32+0)
	A83T_GATE_CSI     = GateAt("csi", 0, (a83tGateBase+1)*32+8)
	A83T_GATE_HDMI    = GateAt("hdmi", 0, (a83tGateBase+1)*32+11)
	A83T_GATE_DE      = GateAt("de", 0, (a83tGateBase+1)*32+12)
	A83T_GATE_GPU     = GateAt("gpu", 0, (a83tGateBase+1)*32+20)
	A83T_GATE_MSGBOX  = GateAt("msgbox", 0, (a83tGateBase+1)*32+21)
	A83T_GATE_I2S0    = GateAt("i2s0", 0, (a83tGateBase+2)*32+12)
	A83T_GATE_I2C0    = GateAt("i2c0", 0, (a83tGateBase+3)*32+0)
	A83T_GATE_UART0   = GateAt("uart0", 0, (a83tGateBase+3)*32+16)
	A83T_GATE_UART1   = GateAt("uart1", 0, (a83tGateBase+3)*32+17)
	A83T_GATE_PIO     = GateAt("pio", 0, (a83tGateBase+2)*32+5)
	A83T_GATE_HSTIMER = GateAt("hstimer", 0, a83tGateBase*32+19)
)

// A83T power-off gating, offsets from the R_PRCM base. Set bits gate.
var (
	A83T_PD_GPU     = Gate{Name: "gpu", Reg: 0x118, Bit: 0}
	A83T_PD_VE      = Gate{Name: "ve", Reg: 0x110, Bit: 0}
	A83T_PD_DE      = Gate{Name: "de", Reg: 0x110, Bit: 1}
	A83T_PD_USB     = Gate{Name: "usb", Reg: 0x110, Bit: 2}
	A83T_PD_VDD_SYS = Gate{Name: "vdd-sys", Reg: 0x110, Bit: 3}
)
