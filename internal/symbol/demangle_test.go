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

package symbol

import "testing"

func legacyMangle(components ...string) string {
	out := "_ZN"
	for _, c := range components {
		out += quoteLen(c)
	}
	return out + "E"
}

func TestDemangleLegacy(t *testing.T) {
	mangled := legacyMangle("std", "fs", "File", "open", "h0123456789abcdef")
	want := "std::fs::File::open"
	if got := Demangle(mangled); got != want {
		t.Errorf("Demangle(%q) = %q, want %q", mangled, got, want)
	}
}

func TestDemangleEscapes(t *testing.T) {
	mangled := legacyMangle("alloc", "string", "String", "$u20$as$u20$core..fmt..Debug", "fmt", "h00000000000000ff")
	got := Demangle(mangled)
	want := "alloc::string::String:: as core..fmt..Debug::fmt"
	if got != want {
		t.Errorf("Demangle(%q) = %q, want %q", mangled, got, want)
	}
}

func TestDemanglePassesThroughUnknownForms(t *testing.T) {
	raw := "already_demangled::path::to::fn"
	if got := Demangle(raw); got != raw {
		t.Errorf("Demangle(%q) = %q, want unchanged", raw, got)
	}
}
