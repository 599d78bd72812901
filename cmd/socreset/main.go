// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// socreset resets the A83T through the trusted watchdog, bypassing the
// power state machine. Use it when the firmware itself is wedged.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
	"github.com/u-root/u-scp/pkg/watchdog"
	a83t "github.com/u-root/u-scp/platform/a83t/pkg/platform"
)

var timeout = pflag.Uint32P("timeout", "t", 0, "milliseconds before the reset fires")

func main() {
	pflag.Parse()
	m, err := mmio.Open()
	if err != nil {
		log.Fatalf("mmio.Open: %v", err)
	}
	defer m.Close()

	twd := &watchdog.TWD{Mem: m, Base: a83t.R_TWD_BASE}
	d, err := (&device.Device{Name: "r_twd", Driver: twd}).Get()
	if err != nil {
		log.Fatal(err)
	}
	// The reference is never put back: releasing the watchdog stops it.
	if err := watchdog.Enable(d, *timeout); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("TWD_CTRL: %08x\n", m.MustRead32(a83t.R_TWD_BASE+watchdog.TWD_CTRL))
}
