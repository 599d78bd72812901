// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// scpfw is the system control processor firmware. It brings up a platform
// and runs its power state machine until interrupted.
//
// Requests can be sent with signals: SIGUSR1 suspends, SIGUSR2 wakes up,
// SIGPWR shuts down and SIGHUP resets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/u-root/u-scp/config"
	"github.com/u-root/u-scp/pkg/logger"
	"github.com/u-root/u-scp/pkg/platform"
	"github.com/u-root/u-scp/pkg/scp"
	"golang.org/x/sys/unix"

	_ "github.com/u-root/u-scp/platform/a83t/pkg/platform"
	_ "github.com/u-root/u-scp/platform/sim/pkg/platform"
)

var (
	configPath    = pflag.StringP("config", "c", "", "YAML configuration file, built-in defaults if empty")
	platformName  = pflag.StringP("platform", "p", "", "platform to run on, overrides the configuration")
	consoleDevice = pflag.String("console", "", "serial device for the debug console, overrides the configuration")
	logLevel      = pflag.String("log-level", "", "log level, overrides the configuration")
	listPlatforms = pflag.Bool("list-platforms", false, "print the supported platforms and exit")
)

func loadConfig() (*config.Config, error) {
	conf := config.DefaultConfig.Clone()
	if *configPath != "" {
		var err error
		if conf, err = config.Load(afero.NewOsFs(), *configPath); err != nil {
			return nil, err
		}
	}
	if *platformName != "" {
		conf.Platform = *platformName
	}
	if *consoleDevice != "" {
		conf.Console.Device = *consoleDevice
	}
	if *logLevel != "" {
		conf.Log.Level = *logLevel
	}
	return conf, conf.Validate()
}

func run() error {
	pflag.Parse()
	if *listPlatforms {
		fmt.Println(strings.Join(platform.Names(), "\n"))
		return nil
	}

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.LogContainer.Init(logger.Options{Level: conf.Log.Level, File: conf.Log.File}); err != nil {
		return err
	}
	log := logger.LogContainer.GetSimpleLogger()
	defer log.Sync()

	p, err := platform.Open(conf.Platform)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()
	if err := scp.Startup(ctx, p, conf); err != nil {
		return err
	}
	log.Info("Shut down cleanly")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scpfw: %v\n", err)
		os.Exit(1)
	}
}
