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

package problem

import "sync"

// Store is the reference-counted, lock-protected shared problem store (spec
// §5: "the problem store is reference-counted and likewise lock-protected")
// that both the terminal UI thread and the main policy-evaluation thread
// read and mutate. It is the thing internal/httpapi and internal/ui read
// from, and the thing the UI's abort path marks aborted.
type Store struct {
	mu       sync.RWMutex
	outputs  GraphOutputs
	aborted  bool
}

// NewStore wraps an already-computed GraphOutputs for shared access.
func NewStore(outputs GraphOutputs) *Store {
	return &Store{outputs: outputs}
}

// SetOutputs replaces the store's GraphOutputs wholesale, e.g. after a
// fresh scan.
func (s *Store) SetOutputs(outputs GraphOutputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = outputs
}

// Problems returns every recorded Problem, in insertion order.
func (s *Store) Problems() []Problem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Problem(nil), s.outputs.Problems.Items()...)
}

// UsagesForCrate returns the ApiUsage records belonging to crateName.
func (s *Store) UsagesForCrate(crateName string) []ApiUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ApiUsage
	for _, u := range s.outputs.Usages {
		if u.CrateName == crateName {
			out = append(out, u)
		}
	}
	return out
}

// Abort marks the store aborted, per spec §5's UI quit-key handling:
// "pressing the quit key sends on [the abort channel], then locks the
// shared problem store and marks it aborted."
func (s *Store) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
}

// Aborted reports whether Abort has been called.
func (s *Store) Aborted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aborted
}
