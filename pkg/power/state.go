// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"fmt"
	"strings"
)

// State is the system power state.
type State uint32

const (
	// Stable states.
	Active State = iota
	Inactive
	Off
	// Transitional states, left by the next Step.
	Suspend
	Resume
	Shutdown
	Reset
)

var stateNames = [...]string{
	Active:   "active",
	Inactive: "inactive",
	Off:      "off",
	Suspend:  "suspend",
	Resume:   "resume",
	Shutdown: "shutdown",
	Reset:    "reset",
}

// States lists every state.
var States = []State{Active, Inactive, Off, Suspend, Resume, Shutdown, Reset}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Stable reports whether s is a rest state.
func (s State) Stable() bool {
	return s == Active || s == Inactive || s == Off
}

func (s State) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("invalid power state %d", uint32(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseState parses a state name, case insensitively.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown power state %q", name)
}

// Event is a transition request.
type Event uint8

const (
	EventSuspend Event = iota
	EventShutdown
	EventWakeup
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventSuspend:
		return "suspend"
	case EventShutdown:
		return "shutdown"
	case EventWakeup:
		return "wakeup"
	case EventReset:
		return "reset"
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

type transition struct {
	from State
	ev   Event
}

// transitions maps every legal (state, event) pair to its next state.
// Pairs missing from the table are ignored requests.
var transitions = map[transition]State{
	{Active, EventSuspend}:  Suspend,
	{Active, EventShutdown}: Shutdown,
	{Inactive, EventWakeup}: Resume,
	// There is nothing to resume from off; wake by rebooting.
	{Off, EventWakeup}: Reset,
}

func init() {
	// Reset overrides anything, including pending transitions.
	for _, s := range States {
		transitions[transition{s, EventReset}] = Reset
	}
}
