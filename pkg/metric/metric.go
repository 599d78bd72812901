// Copyright 2021-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector created through this package.
var Registry = prometheus.NewRegistry()

var (
	mu         sync.Mutex
	collectors = map[string]prometheus.Collector{}
)

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (o MetricOpts) fqName() string {
	return prometheus.BuildFQName(o.Namespace, o.Subsystem, o.Name)
}

func (o MetricOpts) help() string {
	if o.Help != "" {
		return o.Help
	}
	return strings.ReplaceAll(o.Name, "_", " ")
}

// getOrCreate registers c under its name unless a collector already exists.
func getOrCreate(name string, c prometheus.Collector) prometheus.Collector {
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := collectors[name]; ok {
		return existing
	}
	Registry.MustRegister(c)
	collectors[name] = c
	return c
}

// CounterVec creates or returns a counter vector
func CounterVec(opts MetricOpts, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      opts.help(),
	}, labels)
	return getOrCreate(opts.fqName(), c).(*prometheus.CounterVec)
}

// GaugeVec creates or returns a gauge vector
func GaugeVec(opts MetricOpts, labels ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      opts.help(),
	}, labels)
	return getOrCreate(opts.fqName(), g).(*prometheus.GaugeVec)
}

// Serve exposes the registry on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
