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
	"os"
	"path/filepath"
	"testing"

	"capcheck/internal/names"
	"capcheck/internal/permission"
)

type stubResolver struct {
	crates []string
	err    error
}

func (s stubResolver) CrateNamesFromSourcePath(sourcePath, objectPath string) ([]string, error) {
	return s.crates, s.err
}

func TestIsIntraCrate(t *testing.T) {
	cases := []struct {
		candidate names.Name
		crate     string
		want      bool
	}{
		{names.Name{Parts: []string{"alpha", "net", "connect"}}, "alpha", true},
		{names.Name{Parts: []string{"beta", "net", "connect"}}, "alpha", false},
		{names.Name{Parts: nil}, "alpha", false},
	}
	for _, c := range cases {
		if got := isIntraCrate(c.candidate, c.crate); got != c.want {
			t.Errorf("isIntraCrate(%v, %q) = %v, want %v", c.candidate, c.crate, got, c.want)
		}
	}
}

func TestScanObjectsFailsForMissingExecutable(t *testing.T) {
	_, err := ScanObjects(nil, filepath.Join(t.TempDir(), "does-not-exist"), permission.NewTable(nil), stubResolver{})
	if err == nil {
		t.Fatal("ScanObjects() error = nil, want an error for a missing executable")
	}
}

func TestScanObjectsFailsWithoutDWARF(t *testing.T) {
	data := buildMinimalNoDWARFExecutable(t)
	exePath := filepath.Join(t.TempDir(), "exe")
	if err := os.WriteFile(exePath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ScanObjects(nil, exePath, permission.NewTable(nil), stubResolver{})
	if err == nil {
		t.Fatal("ScanObjects() error = nil, want an error for an executable with no DWARF sections")
	}
}
