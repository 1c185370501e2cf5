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

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"capcheck/internal/problem"
)

func TestFreshIsFalseForUnknownPath(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	exePath := filepath.Join(dir, "app")
	if err := os.WriteFile(exePath, []byte("exe"), 0o644); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "libfoo.rlib")
	if err := os.WriteFile(objPath, []byte("obj"), 0o644); err != nil {
		t.Fatal(err)
	}

	fresh, err := c.Fresh(exePath, []string{objPath})
	if err != nil {
		t.Fatal(err)
	}
	if fresh {
		t.Error("Fresh() = true for a scan never stored, want false")
	}
}

func TestStoreThenFreshThenLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	exePath := filepath.Join(dir, "app")
	if err := os.WriteFile(exePath, []byte("exe"), 0o644); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "libfoo.rlib")
	if err := os.WriteFile(objPath, []byte("obj"), 0o644); err != nil {
		t.Fatal(err)
	}
	objectPaths := []string{objPath}

	usages := []problem.ApiUsage{{CrateName: "alpha"}}
	usages[0].AddUsage("net", problem.Usage{Location: "src/lib.rs"})

	if err := c.Store(exePath, objectPaths, usages); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	fresh, err := c.Fresh(exePath, objectPaths)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh {
		t.Error("Fresh() = false right after Store(), want true")
	}

	loaded, err := c.Load(exePath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 || loaded[0].CrateName != "alpha" {
		t.Fatalf("Load() = %+v", loaded)
	}

	// Touching an object file moves its mtime forward, invalidating the
	// whole scan's entry.
	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(objPath, future, future); err != nil {
		t.Fatal(err)
	}
	fresh, err = c.Fresh(exePath, objectPaths)
	if err != nil {
		t.Fatal(err)
	}
	if fresh {
		t.Error("Fresh() = true after mtime changed, want false")
	}
}
