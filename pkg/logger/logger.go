// Copyright 2021-2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	LogContainer logContainer
	loggerInit   sync.Once
)

// Options select where the firmware logs go.
type Options struct {
	// Level is a zap level name, "info" if empty.
	Level string
	// File receives a copy of the log in epoch-timestamped form.
	// Empty disables the file core.
	File string
	// Fs is used to create File, the OS filesystem if nil.
	Fs afero.Fs
	// Console defaults to os.Stdout.
	Console io.Writer
}

type logContainer struct {
	logger *zap.Logger
	err    error
}

// Init builds the process logger. Only the first call has an effect.
func (l *logContainer) Init(o Options) error {
	loggerInit.Do(func() {
		l.logger, l.err = New(o)
	})
	return l.err
}

// GetLogger returns the pointer to the logger and creates one with default
// options if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	l.Init(Options{})
	if l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// GetSimpleLogger returns the sugared form of GetLogger
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	return l.GetLogger().Sugar()
}

// New builds a standalone logger from o.
func New(o Options) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if o.Level != "" {
		if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.Level, err)
		}
	}
	console := o.Console
	if console == nil {
		console = os.Stdout
	}
	cores := []zapcore.Core{
		zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(console), lvl),
	}
	if o.File != "" {
		w, err := getLogWriter(o.Fs, o.File)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(getJsonEncoder(), w, lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getLogWriter(fs afero.Fs, path string) (zapcore.WriteSyncer, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create logfile: %w", err)
	}
	return zapcore.AddSync(f), nil
}
