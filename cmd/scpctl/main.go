// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// scpctl sends one command to the firmware debug console and prints the
// reply, e.g. "scpctl -d /dev/ttyS1 suspend".
package main

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/pflag"
	"github.com/u-root/u-scp/pkg/console"
)

var (
	dev  = pflag.StringP("device", "d", "/dev/ttyS1", "serial port wired to the firmware console")
	baud = pflag.IntP("baud", "b", 115200, "baud rate")
)

func main() {
	pflag.Parse()
	if pflag.NArg() == 0 {
		log.Fatalf("usage: scpctl [flags] command [args...]")
	}
	port, err := console.OpenUART(*dev, *baud)
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	if _, err := fmt.Fprintf(port, "%s\n", strings.Join(pflag.Args(), " ")); err != nil {
		log.Fatalf("write %s: %v", *dev, err)
	}
	reply, err := bufio.NewReader(port).ReadString('\n')
	if err != nil {
		log.Fatalf("read %s: %v", *dev, err)
	}
	fmt.Println(strings.TrimRight(reply, "\r\n"))
}
