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

import (
	"regexp"
	"strconv"
	"strings"
)

// legacyEscapes are the symbol-safe character substitutions the legacy Rust
// mangling scheme ("_ZN...E") applies so that "<", ">", " " and friends can
// survive as object-file symbol names.
var legacyEscapes = []struct {
	from, to string
}{
	{"$SP$", "@"},
	{"$BP$", "*"},
	{"$RF$", "&"},
	{"$LT$", "<"},
	{"$GT$", ">"},
	{"$LP$", "("},
	{"$RP$", ")"},
	{"$C$", ","},
	{"$u20$", " "},
	{"$u27$", "'"},
	{"$u3b$", ";"},
	{"$u7b$", "{"},
	{"$u7d$", "}"},
	{"$u5b$", "["},
	{"$u5d$", "]"},
}

var hashSuffix = regexp.MustCompile(`^h[0-9a-f]{16}$`)

// Demangle turns a raw object-file symbol name into the composite string
// the name parser expects. Symbols using the legacy "_ZN...E" Rust mangling
// are decoded component-by-component; anything else (already-demangled
// strings, symbols from other toolchains) is passed through unchanged so
// that names.Split can still make what it can of it.
func Demangle(raw string) string {
	name := raw
	// Object files sometimes prefix exported C symbols with an extra
	// underscore (Mach-O convention); legacy Rust mangling always starts
	// with "_ZN" or "ZN", so strip a leading underscore first.
	name = strings.TrimPrefix(name, "_")
	if !strings.HasPrefix(name, "ZN") {
		return raw
	}
	body := strings.TrimPrefix(name, "ZN")
	body = strings.TrimSuffix(body, "E")

	var components []string
	for len(body) > 0 {
		n := 0
		consumed := 0
		for consumed < len(body) && body[consumed] >= '0' && body[consumed] <= '9' {
			n = n*10 + int(body[consumed]-'0')
			consumed++
		}
		if consumed == 0 || n == 0 || consumed+n > len(body) {
			// Not well-formed length-prefixed mangling; bail out and
			// return the original raw symbol rather than guess further.
			return raw
		}
		components = append(components, unescapeLegacy(body[consumed:consumed+n]))
		body = body[consumed+n:]
	}

	if len(components) > 1 && hashSuffix.MatchString(components[len(components)-1]) {
		components = components[:len(components)-1]
	}

	return strings.Join(components, "::")
}

func unescapeLegacy(component string) string {
	out := component
	for _, esc := range legacyEscapes {
		out = strings.ReplaceAll(out, esc.from, esc.to)
	}
	return out
}

// quoteLen is a small helper kept for symmetry with components that embed
// their own length as a literal decimal (used only by tests exercising
// round-trip encoding of synthetic mangled names).
func quoteLen(s string) string {
	return strconv.Itoa(len(s)) + s
}
