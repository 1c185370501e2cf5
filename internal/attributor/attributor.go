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

// Package attributor resolves a virtual address in the linked executable to
// an originating source file path, via the binary's DWARF line program
// (spec §4.5), and filters out toolchain/vendor paths the scan is not
// interested in attributing usage to.
package attributor

import (
	"debug/dwarf"
	"debug/elf"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// vendorPrefixes are hard-coded source path prefixes considered standard
// library or registry-cache code rather than first/third-party package
// code; a resolved path under any of these is dropped (spec §4.5, §8
// property 3). An ordered prefix list is a slice, not a set.
var vendorPrefixes = []string{"/rustc/", "/cargo/registry"}

// Attributor wraps every compile unit's DWARF line-number program found in
// an executable's debug info. A *dwarf.LineReader carries an internal
// cursor that SeekPC moves, so FindLocation is guarded by a mutex: one
// Attributor is shared across the graph package's worker pool for the
// lifetime of a scan, and concurrent callers would otherwise race on the
// same cursor.
type Attributor struct {
	mu          sync.Mutex
	lineReaders []*dwarf.LineReader
}

// New builds an Attributor from f's DWARF sections (at minimum the line
// program, per spec §4.5). Fails if the executable carries no usable DWARF
// data at all.
func New(f *elf.File) (*Attributor, error) {
	data, err := f.DWARF()
	if err != nil {
		return nil, errors.Wrap(err, "loading DWARF debug info")
	}

	a := &Attributor{}
	reader := data.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, errors.Wrap(err, "reading DWARF compile units")
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			reader.SkipChildren()
			continue
		}

		lr, err := data.LineReader(entry)
		if err != nil {
			return nil, errors.Wrap(err, "reading DWARF line program")
		}
		if lr != nil {
			a.lineReaders = append(a.lineReaders, lr)
		}
		reader.SkipChildren()
	}
	return a, nil
}

// FindLocation resolves addr to a source file path, consulting every compile
// unit's line program in turn. Returns false if no compile unit's line
// program covers addr, or if the path it resolves to is vendor-filtered
// (spec §4.5: "missing debug info for an address silently drops that
// edge" — the caller treats both outcomes identically).
func (a *Attributor) FindLocation(addr uint64) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var entry dwarf.LineEntry
	for _, lr := range a.lineReaders {
		if err := lr.SeekPC(addr, &entry); err != nil {
			continue
		}
		if entry.File == nil {
			continue
		}
		return filterVendor(entry.File.Name)
	}
	return "", false
}

// filterVendor reports (path, true) for a path worth attributing usage to,
// or ("", false) if path falls under a vendor/toolchain prefix.
func filterVendor(path string) (string, bool) {
	for _, prefix := range vendorPrefixes {
		if strings.HasPrefix(path, prefix) {
			return "", false
		}
	}
	return path, true
}
