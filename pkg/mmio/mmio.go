// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmio provides 32-bit register access for the drivers of the
// system control processor.
//
// Drivers never map memory themselves. They are handed a Provider and a
// base address, which keeps them usable both against /dev/mem on the SoC
// and against a Sparse register file in tests and simulation.
package mmio

// Provider is a 32-bit register window.
type Provider interface {
	MustRead32(uintptr) uint32
	MustWrite32(uintptr, uint32)
	Close()
}

// SetBits sets the bits of mask in the register at addr.
func SetBits(p Provider, addr uintptr, mask uint32) {
	p.MustWrite32(addr, p.MustRead32(addr)|mask)
}

// ClearBits clears the bits of mask in the register at addr.
func ClearBits(p Provider, addr uintptr, mask uint32) {
	p.MustWrite32(addr, p.MustRead32(addr)&^mask)
}

// WriteBits replaces the bits of mask in the register at addr with val.
func WriteBits(p Provider, addr uintptr, mask, val uint32) {
	p.MustWrite32(addr, (p.MustRead32(addr)&^mask)|(val&mask))
}
