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

// Package symbol indexes the sections and relocations of unlinked object
// files and the symbol table of a linked executable, the two halves the
// graph collector needs to turn a relocation into a (from, to) symbol edge.
//
// The executable-symbol-table reading technique here is carried over from a
// user-mode stack symbolizer that read ELF symbol tables for an unrelated
// purpose (resolving addresses in a running process's stack to function
// names). Here the same technique builds a symbol -> link-time address map
// instead.
package symbol

import (
	"encoding/json"

	"capcheck/internal/names"
)

// Symbol is an opaque byte sequence identifying a compiled entity. Equality
// is by raw bytes.
type Symbol struct {
	raw string
}

// New wraps a symbol's raw name bytes.
func New(raw []byte) Symbol {
	return Symbol{raw: string(raw)}
}

// Bytes returns the symbol's raw name bytes.
func (s Symbol) Bytes() []byte {
	return []byte(s.raw)
}

// String renders the symbol for logging/debugging.
func (s Symbol) String() string {
	return s.raw
}

// IsZero reports whether this is the zero-value Symbol.
func (s Symbol) IsZero() bool {
	return s.raw == ""
}

// MarshalJSON renders a Symbol as its raw name string, so HTTP/MCP
// consumers of internal/problem.Usage see the symbol name rather than an
// empty object (raw is unexported).
func (s Symbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.raw)
}

// Parts decodes the symbol's demangled form into the candidate Names it
// encodes (see internal/names). A mangled symbol often decodes to several:
// the function itself, a trait-impl Self type, and generic parameters.
func (s Symbol) Parts() []names.Name {
	return names.Split(Demangle(s.raw))
}
