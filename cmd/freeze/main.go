// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// freeze powers off every core of an A83T cluster and then the cluster
// itself, halting the application processor without telling the firmware.
package main

import (
	"log"

	"github.com/spf13/pflag"
	"github.com/u-root/u-scp/pkg/css"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/mmio"
	a83t "github.com/u-root/u-scp/platform/a83t/pkg/platform"
)

var cluster = pflag.IntP("cluster", "c", 0, "cluster to freeze")

func main() {
	pflag.Parse()
	m, err := mmio.Open()
	if err != nil {
		log.Fatalf("mmio.Open: %v", err)
	}
	defer m.Close()

	d, err := (&device.Device{Name: "cpucfg", Driver: &css.CPUCfg{
		Mem:      m,
		Base:     a83t.CPUCFG_BASE,
		Clusters: a83t.CLUSTERS,
		Cores:    a83t.CORES,
	}}).Get()
	if err != nil {
		log.Fatal(err)
	}
	defer d.Put()

	for core := 0; core < a83t.CORES; core++ {
		if err := css.SetCoreState(d, *cluster, core, css.Off); err != nil {
			log.Fatalf("core %d.%d: %v", *cluster, core, err)
		}
	}
	if err := css.SetClusterState(d, *cluster, css.Off); err != nil {
		log.Fatalf("cluster %d: %v", *cluster, err)
	}
}
