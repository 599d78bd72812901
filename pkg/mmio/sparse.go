// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import "sync"

// Sparse is an in-memory register file. Unwritten registers read as zero.
// It backs the simulated platform.
type Sparse struct {
	mu   sync.Mutex
	regs map[uintptr]uint32
}

func NewSparse() *Sparse {
	return &Sparse{regs: make(map[uintptr]uint32)}
}

func (s *Sparse) MustRead32(address uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[address]
}

func (s *Sparse) MustWrite32(address uintptr, data uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[address] = data
}

func (s *Sparse) Close() {
}
