// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	var console bytes.Buffer
	l, err := New(Options{Level: "debug", File: "/var/log/scp.log", Fs: fs, Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("probing device")
	l.Sync()

	if !strings.Contains(console.String(), "probing device") {
		t.Errorf("console output %q lacks message", console.String())
	}
	b, err := afero.ReadFile(fs, "/var/log/scp.log")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"probing device"`) {
		t.Errorf("file output %q lacks JSON message", string(b))
	}
}

func TestNewLevelFilters(t *testing.T) {
	var console bytes.Buffer
	l, err := New(Options{Level: "warn", Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("quiet")
	l.Warn("loud")
	if strings.Contains(console.String(), "quiet") {
		t.Error("info message passed a warn level logger")
	}
	if !strings.Contains(console.String(), "loud") {
		t.Error("warn message missing")
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Error("New accepted an unknown level")
	}
}
