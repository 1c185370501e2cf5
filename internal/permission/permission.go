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

// Package permission holds the immutable tree of built-in and
// user-declared API rules that a candidate name is matched against.
package permission

import (
	"sort"

	"capcheck/internal/names"
)

// Name is an interned identifier for an API category, e.g. "fs", "net".
type Name string

// Config is, for one permission, the set of name prefixes that grant it and
// the set that overrides (excludes) a grant.
type Config struct {
	Include []names.Name
	Exclude []names.Name
}

// Matches reports whether candidate starts with some Include prefix and no
// Exclude prefix.
func (c Config) Matches(candidate names.Name) bool {
	matched := false
	for _, inc := range c.Include {
		if candidate.StartsWith(inc) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, exc := range c.Exclude {
		if candidate.StartsWith(exc) {
			return false
		}
	}
	return true
}

// Table is an immutable PermissionName -> Config mapping, built once from
// the built-in table merged with user configuration.
type Table struct {
	configs map[Name]Config
}

// NewTable builds a Table from the built-in set merged with user overlays.
// Overlay include/exclude prefixes are appended to the built-in ones for any
// permission that already exists, or create a new permission otherwise.
func NewTable(overlays map[Name]Config) Table {
	merged := make(map[Name]Config, len(builtins))
	for name, cfg := range builtins {
		merged[name] = cfg
	}
	for name, overlay := range overlays {
		existing := merged[name]
		existing.Include = append(append([]names.Name{}, existing.Include...), overlay.Include...)
		existing.Exclude = append(append([]names.Name{}, existing.Exclude...), overlay.Exclude...)
		merged[name] = existing
	}
	return Table{configs: merged}
}

// ApisForPath returns every permission whose Config matches name, in
// deterministic (sorted) order.
func (t Table) ApisForPath(name names.Name) []Name {
	var out []Name
	for permName, cfg := range t.configs {
		if cfg.Matches(name) {
			out = append(out, permName)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Config returns the Config for a given permission and whether it exists.
func (t Table) Config(name Name) (Config, bool) {
	cfg, ok := t.configs[name]
	return cfg, ok
}

// Names returns every declared permission name, sorted.
func (t Table) Names() []Name {
	out := make([]Name, 0, len(t.configs))
	for n := range t.configs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func namePath(parts ...string) names.Name {
	return names.Name{Parts: parts}
}

func namePaths(pathStrings ...[]string) []names.Name {
	out := make([]names.Name, len(pathStrings))
	for i, p := range pathStrings {
		out[i] = names.Name{Parts: p}
	}
	return out
}
