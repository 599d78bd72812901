// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scp

import (
	"context"
	"os"
	"os/signal"

	"github.com/u-root/u-scp/pkg/power"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// signalEvents maps process signals to power requests, standing in for
// the message box and power button interrupts.
var signalEvents = map[os.Signal]power.Event{
	unix.SIGUSR1: power.EventSuspend,
	unix.SIGUSR2: power.EventWakeup,
	unix.SIGPWR:  power.EventShutdown,
	unix.SIGHUP:  power.EventReset,
}

func (f *Firmware) handleSignals(ctx context.Context) error {
	var sigs []os.Signal
	for s := range signalEvents {
		sigs = append(sigs, s)
	}
	c := make(chan os.Signal, len(sigs))
	signal.Notify(c, sigs...)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-c:
			f.signal(s)
		}
	}
}

// signal turns s into a request and reports whether it was accepted.
func (f *Firmware) signal(s os.Signal) bool {
	ev, ok := signalEvents[s]
	if !ok {
		return false
	}
	if !f.m.Request(ev) {
		f.log.Warn("Request ignored", zap.Stringer("signal", s), zap.Stringer("event", ev), zap.Stringer("state", f.m.State()))
		return false
	}
	f.log.Info("Request accepted", zap.Stringer("signal", s), zap.Stringer("event", ev))
	return true
}
