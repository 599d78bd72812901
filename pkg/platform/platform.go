// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform describes a board to the firmware: which devices it
// has and which gates and wake sources the power transitions use.
package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/power"
)

// Gates lists what each transition closes.
type Gates struct {
	SuspendClocks   []ccu.Gate
	SuspendDomains  []ccu.Gate
	ShutdownClocks  []ccu.Gate
	ShutdownDomains []ccu.Gate
}

type Platform interface {
	Name() string
	// InitializeSystem opens register windows and buses. Devices must
	// not be used before it returns.
	InitializeSystem() error
	Devices() power.Devices
	// Resident devices are held for as long as the firmware runs.
	Resident() []*device.Device
	Gates() Gates
	Close()
}

var (
	mu       sync.Mutex
	registry = map[string]func() Platform{}
)

// Register makes a platform constructor available by name.
func Register(name string, f func() Platform) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("platform: duplicate registration of " + name)
	}
	registry[name] = f
}

// Open returns a new instance of the named platform.
func Open(name string) (Platform, error) {
	mu.Lock()
	f, ok := registry[name]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown platform %q, have %v", name, Names())
	}
	return f(), nil
}

// Names lists registered platforms.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	var n []string
	for k := range registry {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}
