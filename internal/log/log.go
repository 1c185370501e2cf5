// Copyright 2026 The Capcheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the process-wide structured logger. Scan and RPC code logs
// through package-level Debugf/Infof/Warnf/Errorf, never by constructing
// their own *logrus.Logger, so that a single Configure call (made once at
// startup from the --log-file and --debug flags) governs every subsystem.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var std = newStd()

func newStd() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Options configures the destination and verbosity of the standard logger.
// Output goes to stderr unless FilePath is set; running the terminal UI does
// not change the destination.
type Options struct {
	// FilePath, if non-empty, rotates logs through lumberjack instead of
	// writing to stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

// Configure applies opts to the standard logger. Call once at startup.
func Configure(opts Options) {
	var out io.Writer = os.Stderr
	if opts.FilePath != "" {
		out = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
	}
	std.SetOutput(out)
	if opts.Debug {
		std.SetLevel(logrus.DebugLevel)
	} else {
		std.SetLevel(logrus.InfoLevel)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Debugf logs at debug level.
func Debugf(format string, args ...any) { std.Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...any) { std.Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...any) { std.Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...any) { std.Errorf(format, args...) }

// WithField returns an entry for structured key/value logging, e.g.
// log.WithField("object", path).Infof("scanning")
func WithField(key string, value any) *logrus.Entry {
	return std.WithField(key, value)
}
