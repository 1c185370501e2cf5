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
	"encoding/binary"

	"github.com/pkg/errors"
)

// relocEntry is the class/endian-agnostic shape we need out of an Elf32_Rel,
// Elf32_Rela, Elf64_Rel or Elf64_Rela record: where the fixup applies and
// which symbol it references. debug/elf does not expose a generic decoded
// relocation-entry API (it only applies relocations internally to resolve
// DWARF section contents), so this decodes the raw section bytes by hand,
// the same way the rest of this package reads raw ELF structures.
type relocEntry struct {
	offset uint64
	symIdx uint32
}

func decodeRelocations(f *elf.File, shType elf.SectionType, data []byte) ([]relocEntry, error) {
	return decodeRelocationsFrom(f.ByteOrder, f.Class == elf.ELFCLASS64, shType, data)
}

func decodeRelocationsFrom(bo binary.ByteOrder, is64 bool, shType elf.SectionType, data []byte) ([]relocEntry, error) {
	var entrySize int
	switch {
	case is64 && shType == elf.SHT_RELA:
		entrySize = 24 // Offset(8) + Info(8) + Addend(8)
	case is64 && shType == elf.SHT_REL:
		entrySize = 16 // Offset(8) + Info(8)
	case !is64 && shType == elf.SHT_RELA:
		entrySize = 12 // Offset(4) + Info(4) + Addend(4)
	case !is64 && shType == elf.SHT_REL:
		entrySize = 8 // Offset(4) + Info(4)
	default:
		return nil, errors.Wrap(ErrUnsupportedRelocation, "unknown relocation section type")
	}

	if len(data)%entrySize != 0 {
		return nil, errors.Wrap(ErrUnsupportedRelocation, "relocation section size is not a multiple of entry size")
	}

	var out []relocEntry
	for off := 0; off+entrySize <= len(data); off += entrySize {
		entry := data[off : off+entrySize]
		if is64 {
			offset := bo.Uint64(entry[0:8])
			info := bo.Uint64(entry[8:16])
			out = append(out, relocEntry{offset: offset, symIdx: uint32(info >> 32)})
		} else {
			offset := uint64(bo.Uint32(entry[0:4]))
			info := bo.Uint32(entry[4:8])
			out = append(out, relocEntry{offset: offset, symIdx: info >> 8})
		}
	}
	return out, nil
}
