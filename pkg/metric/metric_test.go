// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"testing"

	pt "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterVecIsShared(t *testing.T) {
	opts := MetricOpts{Namespace: "scp", Subsystem: "test", Name: "shared_total"}
	a := CounterVec(opts, "device")
	b := CounterVec(opts, "device")
	if a != b {
		t.Fatal("CounterVec returned distinct collectors for the same name")
	}
	a.WithLabelValues("pmic").Inc()
	b.WithLabelValues("pmic").Inc()
	if got := pt.ToFloat64(a.WithLabelValues("pmic")); got != 2 {
		t.Errorf("counter = %v, want 2", got)
	}
}

func TestGaugeVec(t *testing.T) {
	g := GaugeVec(MetricOpts{Namespace: "scp", Subsystem: "test", Name: "level"}, "name")
	g.WithLabelValues("x").Set(3)
	if got := pt.ToFloat64(g.WithLabelValues("x")); got != 3 {
		t.Errorf("gauge = %v, want 3", got)
	}
	if n := pt.CollectAndCount(g); n != 1 {
		t.Errorf("CollectAndCount = %d, want 1", n)
	}
}

func TestHelpDefaultsToName(t *testing.T) {
	opts := MetricOpts{Name: "reset_attempts_total"}
	if h := opts.help(); h != "reset attempts total" {
		t.Errorf("help() = %q", h)
	}
}
