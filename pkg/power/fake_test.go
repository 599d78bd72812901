// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"fmt"
	"strings"
	"sync"

	"github.com/u-root/u-scp/pkg/ccu"
	"github.com/u-root/u-scp/pkg/css"
	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/wake"
)

// recorder collects the hardware calls made by fake drivers in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (r *recorder) call(format string, args ...interface{}) error {
	c := fmt.Sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.fail[c]
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.calls
	r.calls = nil
	return c
}

func (r *recorder) failOn(call string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail == nil {
		r.fail = map[string]error{}
	}
	r.fail[call] = err
}

// lifecycle records probe and release, which tests usually filter out.
type lifecycle struct{ r *recorder }

func (l lifecycle) Probe(d *device.Device) error { return l.r.call("probe %s", d.Name) }
func (l lifecycle) Release(d *device.Device)     { l.r.call("release %s", d.Name) }

type fakePMIC struct{ lifecycle }

func (p fakePMIC) Suspend(*device.Device) error  { return p.r.call("pmic suspend") }
func (p fakePMIC) Resume(*device.Device) error   { return p.r.call("pmic resume") }
func (p fakePMIC) Shutdown(*device.Device) error { return p.r.call("pmic shutdown") }
func (p fakePMIC) Reset(*device.Device) error    { return p.r.call("pmic reset") }

type fakeCSS struct{ lifecycle }

func (c fakeCSS) SetCSSState(_ *device.Device, s css.PowerState) error {
	return c.r.call("css %v", s)
}

func (c fakeCSS) SetClusterState(_ *device.Device, cluster int, s css.PowerState) error {
	return c.r.call("cluster %d %v", cluster, s)
}

func (c fakeCSS) SetCoreState(_ *device.Device, cluster, core int, s css.PowerState) error {
	return c.r.call("core %d.%d %v", cluster, core, s)
}

type fakeWatchdog struct{ lifecycle }

func (w fakeWatchdog) Enable(_ *device.Device, timeout uint32) error {
	return w.r.call("watchdog enable %d", timeout)
}

func (w fakeWatchdog) Disable(*device.Device) error { return w.r.call("watchdog disable") }

type fakeWake struct{ lifecycle }

func (w fakeWake) Enable(_ *device.Device, s wake.Source) error {
	return w.r.call("wake enable %v", s)
}

func (w fakeWake) Disable(_ *device.Device, s wake.Source) error {
	return w.r.call("wake disable %v", s)
}

// fakeGates reports every requested gate as having been open.
type fakeGates struct{ lifecycle }

func (g fakeGates) Gate(d *device.Device, gates []ccu.Gate) ([]ccu.Gate, error) {
	return gates, g.r.call("%s gate %v", d.Name, gates)
}

func (g fakeGates) Ungate(d *device.Device, gates []ccu.Gate) error {
	return g.r.call("%s ungate %v", d.Name, gates)
}

var (
	gpuClock = ccu.Gate{Name: "gpu", Reg: 0x64, Bit: 20}
	mmcClock = ccu.Gate{Name: "mmc0", Reg: 0x60, Bit: 8}
	gpuPower = ccu.Gate{Name: "gpu", Reg: 0x118, Bit: 0}
)

func fakeConfig(r *recorder, initial State) Config {
	l := lifecycle{r}
	return Config{
		Devices: Devices{
			PMIC:     &device.Device{Name: "pmic", Driver: fakePMIC{l}},
			CSS:      &device.Device{Name: "css", Driver: fakeCSS{l}},
			Watchdog: &device.Device{Name: "r_twd", Driver: fakeWatchdog{l}},
			CCU:      &device.Device{Name: "ccu", Driver: fakeGates{l}},
			PRCM:     &device.Device{Name: "prcm", Driver: fakeGates{l}},
			Wake:     &device.Device{Name: "r_intc", Driver: fakeWake{l}},
		},
		InitialState:    initial,
		SuspendWake:     wake.NMI | wake.PowerButton | wake.MsgBox,
		ShutdownWake:    wake.NMI,
		SuspendClocks:   []ccu.Gate{gpuClock},
		SuspendDomains:  []ccu.Gate{gpuPower},
		ShutdownClocks:  []ccu.Gate{gpuClock, mmcClock},
		ShutdownDomains: []ccu.Gate{gpuPower},
	}
}

// hardware drops probe and release records from calls.
func hardware(calls []string) []string {
	var out []string
	for _, c := range calls {
		if strings.HasPrefix(c, "probe ") || strings.HasPrefix(c, "release ") {
			continue
		}
		out = append(out, c)
	}
	return out
}
