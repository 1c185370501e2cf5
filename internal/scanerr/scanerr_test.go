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

package scanerr

import (
	"errors"
	"strings"
	"testing"
)

func TestStageAnnotatesMessage(t *testing.T) {
	base := New(KindFatalParse, errors.New("unsupported relocation kind"))
	wrapped := Stage("libfoo.rlib", "decoding relocations", base)
	if wrapped == nil {
		t.Fatal("Stage() = nil")
	}
	msg := wrapped.Error()
	for _, want := range []string{"libfoo.rlib", "decoding relocations", "unsupported relocation kind"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestKindOfUnwrapsThroughStage(t *testing.T) {
	base := New(KindFatalIO, errors.New("read failed"))
	wrapped := Stage("a.o", "reading object", base)
	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("KindOf() ok = false, want true")
	}
	if kind != KindFatalIO {
		t.Errorf("KindOf() = %v, want %v", kind, KindFatalIO)
	}
}

func TestKindOfFalseForPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() ok = true for a plain error")
	}
}

func TestNewNilCauseReturnsNil(t *testing.T) {
	if err := New(KindFatalParse, nil); err != nil {
		t.Errorf("New(_, nil) = %v, want nil", err)
	}
}
