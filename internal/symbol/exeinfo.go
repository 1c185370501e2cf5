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
	"debug/elf"

	"github.com/pkg/errors"
)

// ExeInfo is the link-time symbol -> virtual-address map derived from a
// linked executable (or shared object). It is read-only once built and is
// the sole basis for translating an object file's section-start symbol into
// a runtime address.
//
// Building this walks elf.File.Symbols() and DynamicSymbols(), the same
// walk a stack-unwinding symbolizer uses to build a flat function symbol
// table; here it produces an address lookup instead.
type ExeInfo struct {
	addresses map[string]uint64
}

// LoadExeInfo reads every symbol of f and records its address. Fails hard
// if any symbol's name cannot be read, since an incomplete map would
// silently under-report API usage rather than error loudly.
func LoadExeInfo(f *elf.File) (*ExeInfo, error) {
	info := &ExeInfo{addresses: make(map[string]uint64)}

	symbols, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, errors.Wrap(err, "reading executable symbol table")
	}
	for _, sym := range symbols {
		if sym.Name == "" {
			continue
		}
		info.addresses[sym.Name] = sym.Value
	}

	dynsyms, err := f.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, errors.Wrap(err, "reading executable dynamic symbol table")
	}
	for _, sym := range dynsyms {
		if sym.Name == "" {
			continue
		}
		if _, exists := info.addresses[sym.Name]; !exists {
			info.addresses[sym.Name] = sym.Value
		}
	}

	return info, nil
}

// Address returns the virtual address symbol resolves to in the linked
// executable.
func (e *ExeInfo) Address(s Symbol) (uint64, bool) {
	addr, ok := e.addresses[s.String()]
	return addr, ok
}
