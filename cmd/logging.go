// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Thermoquad/prism/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const logFile = "prism.log"

// initLogging sends the global logger to a rotated file in the user cache
// dir and, when console is set, to stderr as well. The TUI owns the
// terminal so it logs to the file only.
func initLogging(debug, console bool) error {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, config.AppDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	writers := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(dir, logFile),
		MaxSize:    1,
		MaxBackups: 2,
	}}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(io.MultiWriter(writers...)).
		With().Timestamp().Caller().Logger()
	return nil
}
