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

// Package scanerr implements the scan's error taxonomy (spec §7): a sum of
// error kinds plus a nesting carrier that preserves a stack of
// file/stage annotations as an error ascends out of the scan.
package scanerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a scan-time error. Only Fatal* kinds ever reach a caller;
// Skippable/MissingDebug/IntraCrate are handled at the point they arise and
// never wrapped with Stage.
type Kind int

const (
	// KindFatalParse: the linked binary or an object file cannot be parsed,
	// a relocation kind is unsupported, or a symbol index is invalid.
	KindFatalParse Kind = iota
	// KindFatalIO: a required file could not be opened or read.
	KindFatalIO
)

func (k Kind) String() string {
	switch k {
	case KindFatalParse:
		return "fatal_parse"
	case KindFatalIO:
		return "fatal_io"
	default:
		return "unknown"
	}
}

// scanError is the nesting carrier: it records a Kind once, at the point of
// origin, then accumulates annotations as it ascends call frames.
type scanError struct {
	kind  Kind
	cause error
}

func (e *scanError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

func (e *scanError) Unwrap() error {
	return e.cause
}

// New wraps cause as a fatal scan error of the given kind.
func New(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &scanError{kind: kind, cause: cause}
}

// Stage annotates err with the file and stage that were being processed when
// it occurred, e.g. Stage("libfoo.rlib", "decoding relocations", err). Every
// fatal return site on the scan path adds one such annotation (spec §9), so
// the final error text reads as a call-stack of (file, stage) pairs.
func Stage(file, stage string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s: %s", file, stage)
}

// KindOf reports the Kind of err, if it (or something it wraps) is a scan
// error produced by New.
func KindOf(err error) (Kind, bool) {
	var se *scanError
	if errors.As(err, &se) {
		return se.kind, true
	}
	return 0, false
}
