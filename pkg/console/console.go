// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console is a line-oriented debug shell for the power core.
// Every command gets exactly one line in reply.
package console

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/u-root/u-scp/pkg/device"
	"github.com/u-root/u-scp/pkg/metric"
	"github.com/u-root/u-scp/pkg/power"
	"go.uber.org/zap"
)

var commandCount = metric.CounterVec(metric.MetricOpts{
	Namespace: "scp",
	Subsystem: "console",
	Name:      "commands_total",
}, "command")

type Console struct {
	Machine *power.Machine
	// Devices are listed by the devices command.
	Devices []*device.Device
	Logger  *zap.Logger
}

type command func(c *Console, args []string) string

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     help,
		"status":   status,
		"devices":  devices,
		"suspend":  request(power.EventSuspend),
		"shutdown": request(power.EventShutdown),
		"wakeup":   request(power.EventWakeup),
		"reset":    request(power.EventReset),
	}
}

func help(*Console, []string) string {
	var n []string
	for k := range commands {
		n = append(n, k)
	}
	sort.Strings(n)
	return "commands: " + strings.Join(n, " ")
}

func status(c *Console, _ []string) string {
	m := c.Machine
	return fmt.Sprintf("state=%v pending=%t armed=%v", m.State(), m.Pending(), m.Armed())
}

func devices(c *Console, _ []string) string {
	var s []string
	for _, d := range c.Devices {
		s = append(s, fmt.Sprintf("%s=%d", d.Name, d.Refcount()))
	}
	if len(s) == 0 {
		return "no devices"
	}
	return strings.Join(s, " ")
}

func request(ev power.Event) command {
	return func(c *Console, _ []string) string {
		from := c.Machine.State()
		if !c.Machine.Request(ev) {
			return fmt.Sprintf("ignored: %v in %v", ev, from)
		}
		return fmt.Sprintf("ok: %v", ev)
	}
}

// Exec runs one command line and returns the reply, empty for a blank
// line.
func (c *Console) Exec(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	name := strings.ToLower(f[0])
	cmd, ok := commands[name]
	if !ok {
		commandCount.WithLabelValues("unknown").Inc()
		return fmt.Sprintf("unknown command %q, try help", f[0])
	}
	commandCount.WithLabelValues(name).Inc()
	return cmd(c, f[1:])
}

// Serve executes commands read from rw until it reaches EOF or a read
// fails.
func (c *Console) Serve(rw io.ReadWriter) error {
	l := c.Logger
	if l == nil {
		l = zap.NewNop()
	}
	s := bufio.NewScanner(rw)
	for s.Scan() {
		reply := c.Exec(s.Text())
		if reply == "" {
			continue
		}
		l.Debug("Console command", zap.String("line", s.Text()), zap.String("reply", reply))
		if _, err := io.WriteString(rw, reply+"\r\n"); err != nil {
			return fmt.Errorf("console write: %w", err)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("console read: %w", err)
	}
	return nil
}
