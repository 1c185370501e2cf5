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

// Relocation errors, per spec §4.3. Wrapped with errors.Wrap at each
// call site so the fatal-error chain names the object file and stage.
var (
	ErrUnsupportedRelocation = errors.New("unsupported relocation kind")
	ErrInvalidSymbolIndex    = errors.New("invalid symbol index in object file")
	ErrUnnamedWithoutSection = errors.New("unnamed symbol has no section")
	ErrInvalidSectionIndex   = errors.New("invalid section index")
)

// Reloc is a single relocation edge found within a section: at byte Offset
// (relative to that section's start) there is a reference to symbol Target.
type Reloc struct {
	Offset uint64
	Target elf.Symbol
	Raw    bool // true if Target has no name and must be resolved via its section
}

// ObjectIndex is a per-object-file map from section ordinal to the symbol
// defined at that section's offset zero. Relocations are not stored; they
// are decoded from the file on each Relocations call.
type ObjectIndex struct {
	file *elf.File

	// sectionSymbol[i] is the defining symbol of section index i, if any.
	sectionSymbol []Symbol

	symbols []elf.Symbol
}

// NewObjectIndex builds an ObjectIndex from a parsed unlinked ELF object
// file. Only one symbol per section is expected (the one-symbol-per-section
// compilation regime); the first zero-offset, non-empty-named symbol found
// for a section wins.
func NewObjectIndex(f *elf.File) (*ObjectIndex, error) {
	symbols, err := f.Symbols()
	if err != nil {
		return nil, errors.Wrap(err, "reading object file symbols")
	}

	sectionSymbol := make([]Symbol, len(f.Sections))
	for _, sym := range symbols {
		if sym.Value != 0 || sym.Name == "" {
			continue
		}
		secIdx := int(sym.Section)
		if secIdx <= 0 || secIdx >= len(f.Sections) {
			continue
		}
		if sectionSymbol[secIdx].IsZero() {
			sectionSymbol[secIdx] = New([]byte(sym.Name))
		}
	}

	return &ObjectIndex{
		file:          f,
		sectionSymbol: sectionSymbol,
		symbols:       symbols,
	}, nil
}

// SectionSymbol returns the defining symbol of section index idx, if any.
func (oi *ObjectIndex) SectionSymbol(idx int) (Symbol, bool) {
	if idx < 0 || idx >= len(oi.sectionSymbol) {
		return Symbol{}, false
	}
	s := oi.sectionSymbol[idx]
	return s, !s.IsZero()
}

// Sections exposes the underlying ELF sections for relocation iteration.
func (oi *ObjectIndex) Sections() []*elf.Section {
	return oi.file.Sections
}

// SectionIndex returns the ordinal of a section within the file.
func (oi *ObjectIndex) SectionIndex(sec *elf.Section) int {
	for i, s := range oi.file.Sections {
		if s == sec {
			return i
		}
	}
	return -1
}

// Relocations decodes the relocation entries belonging to sec (i.e. whose
// relocation section's sh_info points at sec's ordinal).
func (oi *ObjectIndex) Relocations(sec *elf.Section) ([]Reloc, error) {
	secIdx := oi.SectionIndex(sec)
	if secIdx < 0 {
		return nil, nil
	}

	var out []Reloc
	for _, relSec := range oi.file.Sections {
		if relSec.Type != elf.SHT_RELA && relSec.Type != elf.SHT_REL {
			continue
		}
		if int(relSec.Info) != secIdx {
			continue
		}

		data, err := relSec.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "reading relocation section %q", relSec.Name)
		}

		entries, err := decodeRelocations(oi.file, relSec.Type, data)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			target, err := oi.resolveSymbolIndex(e.symIdx)
			if err != nil {
				return nil, err
			}
			out = append(out, Reloc{Offset: e.offset, Target: target, Raw: target.Name == ""})
		}
	}
	return out, nil
}

func (oi *ObjectIndex) resolveSymbolIndex(idx uint32) (elf.Symbol, error) {
	// ELF symbol tables reserve index 0 for the null symbol; real symbols
	// used by relocations are indexed from f.Symbols(), which already
	// drops that null entry, so shift by one.
	if idx == 0 || int(idx) > len(oi.symbols) {
		return elf.Symbol{}, ErrInvalidSymbolIndex
	}
	return oi.symbols[idx-1], nil
}

// TargetSymbol resolves a relocation's target to a Symbol, per spec §4.3:
// a named target symbol is used directly; an unnamed target inherits the
// name of the defining symbol of its own section.
func (oi *ObjectIndex) TargetSymbol(r Reloc) (Symbol, bool, error) {
	if r.Target.Name != "" {
		return New([]byte(r.Target.Name)), true, nil
	}
	secIdx := int(r.Target.Section)
	if secIdx <= 0 {
		return Symbol{}, false, ErrUnnamedWithoutSection
	}
	if secIdx >= len(oi.sectionSymbol) {
		return Symbol{}, false, ErrInvalidSectionIndex
	}
	sym, ok := oi.SectionSymbol(secIdx)
	if !ok {
		return Symbol{}, false, nil
	}
	return sym, true, nil
}
