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

package conf

import "sync"

// StaticCrateResolver implements internal/checker.CrateResolver from the
// authoritative source-path -> crate-name mapping reported by
// RustcComplete{crate_name, source_paths} RPC messages (spec §4.8,
// SPEC_FULL "crate resolver and policy checker, concretely"). A source
// path can belong to more than one crate (e.g. a shared include built into
// several compilation units), so each path maps to a set of crate names.
type StaticCrateResolver struct {
	mu     sync.RWMutex
	byPath map[string][]string
}

// NewStaticCrateResolver returns an empty resolver; RecordCompilation
// populates it as RustcComplete messages arrive.
func NewStaticCrateResolver() *StaticCrateResolver {
	return &StaticCrateResolver{byPath: make(map[string][]string)}
}

// RecordCompilation registers every source path in sourcePaths as
// belonging to crateName, per one RustcComplete message.
func (r *StaticCrateResolver) RecordCompilation(crateName string, sourcePaths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range sourcePaths {
		r.byPath[p] = appendUnique(r.byPath[p], crateName)
	}
}

// CrateNamesFromSourcePath answers from the accumulated compilation map.
// objectPath is accepted for interface compatibility (spec §2) but unused:
// the original source-path set is already the authoritative per-crate
// membership; the object file it came from adds no further information.
func (r *StaticCrateResolver) CrateNamesFromSourcePath(sourcePath, objectPath string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byPath[sourcePath]...), nil
}

// Snapshot returns the resolver's accumulated state as a crate -> source
// paths map, the shape `capcheck proxy` persists to --crates-out for a
// later `capcheck scan` to consume.
func (r *StaticCrateResolver) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCrate := make(map[string][]string)
	for path, crates := range r.byPath {
		for _, crate := range crates {
			byCrate[crate] = append(byCrate[crate], path)
		}
	}
	return byCrate
}

func appendUnique(existing []string, name string) []string {
	for _, e := range existing {
		if e == name {
			return existing
		}
	}
	return append(existing, name)
}
