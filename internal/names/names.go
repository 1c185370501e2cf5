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

// Package names splits a decorated (mangled, demangled-with-generics) symbol
// string into the one or more fully-qualified name paths it encodes.
package names

import "strings"

// Name is an ordered sequence of path components, e.g. ["std", "fs", "File"].
type Name struct {
	Parts []string
}

// String renders the name the way it appeared in source, "::"-joined.
func (n Name) String() string {
	return strings.Join(n.Parts, "::")
}

// StartsWith reports whether prefix's components are a prefix of n's.
func (n Name) StartsWith(prefix Name) bool {
	if len(prefix.Parts) > len(n.Parts) {
		return false
	}
	for i, p := range prefix.Parts {
		if n.Parts[i] != p {
			return false
		}
	}
	return true
}

// Split parses a composite mangled-symbol string into the Names it embeds.
//
// A mangled symbol can embed several independent paths at once: the function
// itself, the Self type of a trait impl, and generic parameters. For example
// "core::ptr::drop_in_place<std::rt::lang_start<()>::{{closure}}>" yields
//
//	[[core, ptr, drop_in_place], [std, rt, lang_start], [{{closure}}]]
//
// and "<alloc::string::String as core::fmt::Debug>::fmt" yields
//
//	[[alloc, string, String], [core, fmt, Debug, fmt]]
func Split(composite string) []Name {
	var all []Name
	var parts []string
	var part strings.Builder

	flushPart := func() {
		if part.Len() > 0 {
			parts = append(parts, part.String())
			part.Reset()
		}
	}
	flushName := func() {
		if len(parts) > 0 {
			all = append(all, Name{Parts: parts})
			parts = nil
		}
	}

	// asActive is set once we've consumed " as "; the closing '>' that ends
	// the trait-impl notation is then absorbed rather than treated as a
	// boundary, so the part that follows stays attached to the same Name as
	// the component after it.
	asActive := false

	runes := []rune(composite)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		switch {
		case ch == '(' || ch == ')':
			// Ignored entirely.
		case ch == '<' || ch == '>':
			if asActive {
				asActive = false
			} else {
				flushPart()
				flushName()
			}
		case ch == ':':
			flushPart()
			// collapse the second ':' of a "::" boundary
			if i+1 < len(runes) && runes[i+1] == ':' {
				i++
			}
		case ch == ' ':
			if i+3 < len(runes) && runes[i+1] == 'a' && runes[i+2] == 's' && runes[i+3] == ' ' {
				i += 3
				asActive = true
				flushPart()
				flushName()
			} else {
				part.WriteRune(ch)
			}
		default:
			part.WriteRune(ch)
		}
		i++
	}
	flushPart()
	flushName()

	return all
}
