// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem maps physical pages from /dev/mem on demand. Mapped pages are
// cached for the lifetime of the provider since the register set touched
// by the firmware is small and fixed.
type DevMem struct {
	f     *os.File
	mu    sync.Mutex
	pages map[uintptr][]byte
}

// Open opens /dev/mem for synchronous register access.
func Open() (*DevMem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}
	return &DevMem{f: f, pages: make(map[uintptr][]byte)}, nil
}

func (m *DevMem) word(address uintptr) *uint32 {
	ps := uintptr(unix.Getpagesize())
	page := address & ^(ps - 1)
	offset := address - page

	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.pages[page]
	if !ok {
		var err error
		mem, err = unix.Mmap(int(m.f.Fd()), int64(page), int(ps), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			panic(fmt.Sprintf("mmap %#08x: %v", page, err))
		}
		m.pages[page] = mem
	}
	return (*uint32)(unsafe.Pointer(&mem[offset]))
}

func (m *DevMem) MustRead32(address uintptr) uint32 {
	return *m.word(address)
}

func (m *DevMem) MustWrite32(address uintptr, data uint32) {
	*m.word(address) = data
}

func (m *DevMem) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for page, mem := range m.pages {
		unix.Munmap(mem)
		delete(m.pages, page)
	}
	m.f.Close()
}
