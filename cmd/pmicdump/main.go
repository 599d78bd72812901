// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pmicdump prints the registers of a target on an i2c-dev bus, by default
// the AXP803 the firmware drives.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/i2c"
	"github.com/u-root/u-scp/pkg/pmic"
	a83t "github.com/u-root/u-scp/platform/a83t/pkg/platform"
)

var (
	bus   = pflag.StringP("bus", "b", a83t.PMIC_BUS, "i2c-dev bus the target is on")
	addr  = pflag.Uint8P("addr", "a", pmic.AXP803_ADDR, "7-bit target address")
	first = pflag.Uint8("first", 0x00, "first register to dump")
	last  = pflag.Uint8("last", 0xff, "last register to dump")
)

func main() {
	pflag.Parse()
	d, err := (&device.Device{Name: *bus, Driver: &i2c.Dev{Path: *bus}}).Get()
	if err != nil {
		log.Fatal(err)
	}
	defer d.Put()

	for reg := int(*first); reg <= int(*last); reg++ {
		if reg == int(*first) || reg%16 == 0 {
			fmt.Printf("\n%02x:", reg&^0xf)
			for pad := reg & 0xf; pad > 0; pad-- {
				fmt.Printf("   ")
			}
		}
		v, err := i2c.ReadReg(d, *addr, uint8(reg))
		if err != nil {
			fmt.Printf(" XX")
			continue
		}
		fmt.Printf(" %02x", v)
	}
	fmt.Printf("\n")
}
