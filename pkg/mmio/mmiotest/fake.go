// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmiotest provides a scripted mmio.Provider for driver tests.
package mmiotest

import (
	"fmt"
	"testing"
)

type op struct {
	write   bool
	address uintptr
	data    uint32
}

func (o *op) String() string {
	t := "read"
	if o.write {
		t = "write"
	}
	return fmt.Sprintf("{%s @ %08x = %08x}", t, o.address, o.data)
}

// Fake checks every access against a queue of expected operations.
// Reads return the value queued with FakeRead32.
type Fake struct {
	t   testing.TB
	ops []op
}

func New(t testing.TB) *Fake {
	return &Fake{t: t}
}

func (m *Fake) next(a uintptr) (op, bool) {
	m.t.Helper()
	if len(m.ops) == 0 {
		m.t.Errorf("Unexpected access on %08x, no operations queued", a)
		return op{}, false
	}
	o := m.ops[0]
	m.ops = m.ops[1:]
	return o, true
}

func (m *Fake) MustRead32(a uintptr) uint32 {
	m.t.Helper()
	o, ok := m.next(a)
	if !ok {
		return 0
	}
	if o.write || o.address != a {
		m.t.Errorf("Expected %s, got read on %08x", o.String(), a)
	}
	return o.data
}

func (m *Fake) MustWrite32(a uintptr, d uint32) {
	m.t.Helper()
	o, ok := m.next(a)
	if !ok {
		return
	}
	if !o.write || o.address != a || o.data != d {
		m.t.Errorf("Expected %s, got write of %08x on %08x", o.String(), d, a)
	}
}

func (m *Fake) ExpectWrite32(a uintptr, d uint32) {
	m.ops = append(m.ops, op{true, a, d})
}

func (m *Fake) FakeRead32(a uintptr, d uint32) {
	m.ops = append(m.ops, op{false, a, d})
}

// Done reports any queued operations that were never performed.
func (m *Fake) Done() {
	m.t.Helper()
	for i := range m.ops {
		m.t.Errorf("Expected %s, never performed", m.ops[i].String())
	}
	m.ops = nil
}

func (m *Fake) Close() {
}
