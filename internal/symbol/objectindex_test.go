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
	"errors"
	"testing"
)

func TestNewObjectIndexSectionSymbol(t *testing.T) {
	data := buildMinimalObjectELF(t, "fn_one", "fn_two", true)
	f := parseTestELF(t, data)

	oi, err := NewObjectIndex(f)
	if err != nil {
		t.Fatalf("NewObjectIndex() error = %v", err)
	}

	sym, ok := oi.SectionSymbol(1)
	if !ok {
		t.Fatal("SectionSymbol(1) ok = false, want true")
	}
	if sym.String() != "fn_one" {
		t.Errorf("SectionSymbol(1) = %q, want %q", sym.String(), "fn_one")
	}

	if _, ok := oi.SectionSymbol(3); ok {
		t.Error("SectionSymbol(3) ok = true for a section with no defining symbol")
	}
}

func TestObjectIndexRelocationsResolveNamedTarget(t *testing.T) {
	data := buildMinimalObjectELF(t, "fn_one", "fn_two", true)
	f := parseTestELF(t, data)

	oi, err := NewObjectIndex(f)
	if err != nil {
		t.Fatalf("NewObjectIndex() error = %v", err)
	}

	sec := findSectionByName(oi, ".text")
	if sec == nil {
		t.Fatal("could not find .text section")
	}

	relocs, err := oi.Relocations(sec)
	if err != nil {
		t.Fatalf("Relocations() error = %v", err)
	}
	if len(relocs) != 1 {
		t.Fatalf("got %d relocations, want 1", len(relocs))
	}
	if relocs[0].Offset != 0 {
		t.Errorf("relocs[0].Offset = %d, want 0", relocs[0].Offset)
	}
	if relocs[0].Target.Name != "fn_two" {
		t.Errorf("relocs[0].Target.Name = %q, want %q", relocs[0].Target.Name, "fn_two")
	}

	target, ok, err := oi.TargetSymbol(relocs[0])
	if err != nil {
		t.Fatalf("TargetSymbol() error = %v", err)
	}
	if !ok {
		t.Fatal("TargetSymbol() ok = false, want true")
	}
	if target.String() != "fn_two" {
		t.Errorf("TargetSymbol() = %q, want %q", target.String(), "fn_two")
	}
}

func TestObjectIndexTargetSymbolInvalidSectionIndex(t *testing.T) {
	data := buildMinimalObjectELF(t, "fn_one", "fn_two", true)
	f := parseTestELF(t, data)

	oi, err := NewObjectIndex(f)
	if err != nil {
		t.Fatalf("NewObjectIndex() error = %v", err)
	}

	r := Reloc{Target: elf.Symbol{Section: elf.SectionIndex(len(oi.sectionSymbol) + 5)}}
	_, ok, err := oi.TargetSymbol(r)
	if ok {
		t.Fatal("TargetSymbol() ok = true for an out-of-range section index")
	}
	if !errors.Is(err, ErrInvalidSectionIndex) {
		t.Errorf("TargetSymbol() error = %v, want ErrInvalidSectionIndex", err)
	}
}

func TestObjectIndexNoRelocationsForSectionWithoutRelaEntries(t *testing.T) {
	data := buildMinimalObjectELF(t, "fn_one", "", false)
	f := parseTestELF(t, data)

	oi, err := NewObjectIndex(f)
	if err != nil {
		t.Fatalf("NewObjectIndex() error = %v", err)
	}

	sec := findSectionByName(oi, ".text")
	if sec == nil {
		t.Fatal("could not find .text section")
	}
	relocs, err := oi.Relocations(sec)
	if err != nil {
		t.Fatalf("Relocations() error = %v", err)
	}
	if len(relocs) != 0 {
		t.Errorf("got %d relocations, want 0", len(relocs))
	}
}
