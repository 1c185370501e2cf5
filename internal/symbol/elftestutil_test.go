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
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// buildMinimalObjectELF hand-assembles a tiny ET_REL x86-64 ELF object with
// one ".text" section, a symbol table defining one symbol at the start of
// that section, and (optionally) one RELA relocation within ".text"
// pointing at a second, undefined-section symbol. It exists so
// ObjectIndex/ExeInfo can be exercised against a real parsed *elf.File
// without shipping a binary fixture.
func buildMinimalObjectELF(t *testing.T, definingSymbolName string, extraUndefSymbolName string, withReloc bool) []byte {
	t.Helper()

	const (
		ehdrSize = 64
		shdrSize = 64
		symSize  = 24
	)

	textData := make([]byte, 16)
	textOff := uint64(ehdrSize)

	// .strtab: null byte, then each symbol name NUL-terminated.
	var strtab bytes.Buffer
	strtab.WriteByte(0)
	definingNameOff := strtab.Len()
	strtab.WriteString(definingSymbolName)
	strtab.WriteByte(0)
	var undefNameOff int
	if extraUndefSymbolName != "" {
		undefNameOff = strtab.Len()
		strtab.WriteString(extraUndefSymbolName)
		strtab.WriteByte(0)
	}
	strtabOff := textOff + uint64(len(textData))

	// .shstrtab: section names.
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	nameOffText := shstrtab.Len()
	shstrtab.WriteString(".text\x00")
	nameOffSymtab := shstrtab.Len()
	shstrtab.WriteString(".symtab\x00")
	nameOffStrtab := shstrtab.Len()
	shstrtab.WriteString(".strtab\x00")
	nameOffShstrtab := shstrtab.Len()
	shstrtab.WriteString(".shstrtab\x00")
	var nameOffRela int
	if withReloc {
		nameOffRela = shstrtab.Len()
		shstrtab.WriteString(".rela.text\x00")
	}
	shstrtabOff := strtabOff + uint64(strtab.Len())

	// .symtab: null symbol, defining symbol, optional undefined symbol.
	var symtab bytes.Buffer
	writeSym := func(nameOff uint32, info, other byte, shndx uint16, value, size uint64) {
		binary.Write(&symtab, binary.LittleEndian, nameOff)
		symtab.WriteByte(info)
		symtab.WriteByte(other)
		binary.Write(&symtab, binary.LittleEndian, shndx)
		binary.Write(&symtab, binary.LittleEndian, value)
		binary.Write(&symtab, binary.LittleEndian, size)
	}
	writeSym(0, 0, 0, 0, 0, 0) // null symbol, index 0
	writeSym(uint32(definingNameOff), 0x12 /* GLOBAL|FUNC */, 0, 1 /* .text */, 0, 0)
	if extraUndefSymbolName != "" {
		writeSym(uint32(undefNameOff), 0x10 /* GLOBAL|NOTYPE */, 0, 0 /* SHN_UNDEF */, 0, 0)
	}
	symtabOff := shstrtabOff + uint64(shstrtab.Len())

	var rela bytes.Buffer
	if withReloc {
		// One RELA entry at offset 0 in .text, referencing symbol index 2
		// (the undefined symbol), type R_X86_64_PLT32.
		binary.Write(&rela, binary.LittleEndian, uint64(0))
		info := uint64(2)<<32 | uint64(elf.R_X86_64_PLT32)
		binary.Write(&rela, binary.LittleEndian, info)
		binary.Write(&rela, binary.LittleEndian, int64(-4))
	}
	relaOff := symtabOff + uint64(symtab.Len())

	numSections := 5
	if withReloc {
		numSections = 6
	}
	shoff := relaOff + uint64(rela.Len())

	var buf bytes.Buffer
	// e_ident
	buf.Write([]byte{0x7f, 'E', 'L', 'F', 2 /*ELFCLASS64*/, 1 /*ELFDATA2LSB*/, 1 /*EV_CURRENT*/, 0})
	buf.Write(make([]byte, 8)) // padding
	binary.Write(&buf, binary.LittleEndian, uint16(elf.ET_REL))
	binary.Write(&buf, binary.LittleEndian, uint16(elf.EM_X86_64))
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // e_version
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // e_entry
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // e_phoff
	binary.Write(&buf, binary.LittleEndian, shoff)      // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehdrSize))
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_phentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(shdrSize))
	binary.Write(&buf, binary.LittleEndian, uint16(numSections))
	binary.Write(&buf, binary.LittleEndian, uint16(4)) // e_shstrndx

	if buf.Len() != ehdrSize {
		t.Fatalf("ehdr builder produced %d bytes, want %d", buf.Len(), ehdrSize)
	}

	buf.Write(textData)
	buf.Write(strtab.Bytes())
	buf.Write(shstrtab.Bytes())
	buf.Write(symtab.Bytes())
	buf.Write(rela.Bytes())

	writeShdr := func(nameOff uint32, typ elf.SectionType, flags, addr, offset, size uint64, link, info uint32, addralign, entsize uint64) {
		binary.Write(&buf, binary.LittleEndian, nameOff)
		binary.Write(&buf, binary.LittleEndian, uint32(typ))
		binary.Write(&buf, binary.LittleEndian, flags)
		binary.Write(&buf, binary.LittleEndian, addr)
		binary.Write(&buf, binary.LittleEndian, offset)
		binary.Write(&buf, binary.LittleEndian, size)
		binary.Write(&buf, binary.LittleEndian, link)
		binary.Write(&buf, binary.LittleEndian, info)
		binary.Write(&buf, binary.LittleEndian, addralign)
		binary.Write(&buf, binary.LittleEndian, entsize)
	}

	writeShdr(0, elf.SHT_NULL, 0, 0, 0, 0, 0, 0, 0, 0)                                                    // 0: NULL
	writeShdr(uint32(nameOffText), elf.SHT_PROGBITS, uint64(elf.SHF_ALLOC|elf.SHF_EXECINSTR), 0, textOff, uint64(len(textData)), 0, 0, 1, 0) // 1: .text
	writeShdr(uint32(nameOffSymtab), elf.SHT_SYMTAB, 0, 0, symtabOff, uint64(symtab.Len()), 3 /*link=strtab*/, 1, 8, symSize)                // 2: .symtab
	writeShdr(uint32(nameOffStrtab), elf.SHT_STRTAB, 0, 0, strtabOff, uint64(strtab.Len()), 0, 0, 1, 0)                                      // 3: .strtab
	writeShdr(uint32(nameOffShstrtab), elf.SHT_STRTAB, 0, 0, shstrtabOff, uint64(shstrtab.Len()), 0, 0, 1, 0)                                 // 4: .shstrtab
	if withReloc {
		writeShdr(uint32(nameOffRela), elf.SHT_RELA, 0, 0, relaOff, uint64(rela.Len()), 2 /*link=symtab*/, 1 /*info=.text idx*/, 8, 24) // 5: .rela.text
	}

	return buf.Bytes()
}

func parseTestELF(t *testing.T, data []byte) *elf.File {
	t.Helper()
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("elf.NewFile() error = %v", err)
	}
	return f
}

func findSectionByName(oi *ObjectIndex, name string) *elf.Section {
	for _, sec := range oi.Sections() {
		if sec.Name == name {
			return sec
		}
	}
	return nil
}
