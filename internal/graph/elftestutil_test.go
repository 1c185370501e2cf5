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

package graph

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// buildMinimalNoDWARFExecutable hand-assembles the smallest valid ET_EXEC
// x86-64 ELF debug/elf.NewFile will parse: a NULL section plus a
// ".shstrtab" section, and nothing else. It exists to exercise
// ScanObjects' error path when the linked binary carries no DWARF debug
// info, without shipping a binary fixture.
func buildMinimalNoDWARFExecutable(t *testing.T) []byte {
	t.Helper()

	const ehdrSize = 64

	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	nameOffShstrtab := shstrtab.Len()
	shstrtab.WriteString(".shstrtab\x00")
	shstrtabOff := uint64(ehdrSize)

	shoff := shstrtabOff + uint64(shstrtab.Len())

	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0})
	buf.Write(make([]byte, 8))
	binary.Write(&buf, binary.LittleEndian, uint16(elf.ET_EXEC))
	binary.Write(&buf, binary.LittleEndian, uint16(elf.EM_X86_64))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint64(0))
	binary.Write(&buf, binary.LittleEndian, uint64(0))
	binary.Write(&buf, binary.LittleEndian, shoff)
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint16(ehdrSize))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(64))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(1))

	if buf.Len() != ehdrSize {
		t.Fatalf("ehdr builder produced %d bytes, want %d", buf.Len(), ehdrSize)
	}
	buf.Write(shstrtab.Bytes())

	writeShdr := func(nameOff uint32, typ elf.SectionType, offset, size uint64) {
		binary.Write(&buf, binary.LittleEndian, nameOff)
		binary.Write(&buf, binary.LittleEndian, uint32(typ))
		binary.Write(&buf, binary.LittleEndian, uint64(0))
		binary.Write(&buf, binary.LittleEndian, uint64(0))
		binary.Write(&buf, binary.LittleEndian, offset)
		binary.Write(&buf, binary.LittleEndian, size)
		binary.Write(&buf, binary.LittleEndian, uint32(0))
		binary.Write(&buf, binary.LittleEndian, uint32(0))
		binary.Write(&buf, binary.LittleEndian, uint64(1))
		binary.Write(&buf, binary.LittleEndian, uint64(0))
	}

	writeShdr(0, elf.SHT_NULL, 0, 0)
	writeShdr(uint32(nameOffShstrtab), elf.SHT_STRTAB, shstrtabOff, uint64(shstrtab.Len()))

	return buf.Bytes()
}
