// Copyright 2018-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package console

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenUART opens the serial port the console is served on.
func OpenUART(f string, baud int) (io.ReadWriteCloser, error) {
	c := &serial.Config{Name: f, Baud: baud}
	s, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("serial.OpenPort: %v", err)
	}
	return s, nil
}
