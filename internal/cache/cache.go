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

// Package cache stores the digest (mtime+size of every member file) and the
// ApiUsage rows a prior `capcheck scan` invocation over a given executable +
// object-file set produced, so a repeat invocation with `capcheck scan
// --cache-db` can skip re-walking the whole set when nothing has changed.
// graph.ScanObjects aggregates usages across every object file by crate and
// permission rather than per object file, so the cache operates at the same
// granularity: one row per (executable, object-set) scan, not one row per
// object file. This is a domain enrichment over the original tool
// (SPEC_FULL's Local cache section), grounded on the retrieval pack's other
// CLI tool's internal/db.Initialize: a pure-Go modernc.org/sqlite driver
// opened behind database/sql, migrated with a plain CREATE TABLE IF NOT
// EXISTS string.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"capcheck/internal/permission"
	"capcheck/internal/problem"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	exe_path TEXT PRIMARY KEY,
	digest TEXT NOT NULL,
	usages_json TEXT NOT NULL
);
`

// Cache wraps a sqlite database file holding prior scan results keyed by
// executable path.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache db %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrating cache schema")
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// record is the JSON shape stored per ApiUsage in a scan's row: enough of an
// ApiUsage to reconstruct usage flagging without re-parsing the object files.
type record struct {
	CrateName string                     `json:"crate_name"`
	Usages    map[permission.Name][]usage `json:"usages"`
}

type usage struct {
	Location string `json:"location"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// digest hashes every member path's mtime+size into one string, so a change
// to any single object file (or the executable itself) changes the digest
// for the whole scan unit.
func digest(paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		info, err := os.Stat(p)
		if err != nil {
			return "", errors.Wrapf(err, "stat %s", p)
		}
		fmt.Fprintf(h, "%s:%d:%d\n", p, info.ModTime().Unix(), info.Size())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fresh reports whether exePath has a cached entry whose digest matches the
// current mtime+size of exePath and every path in objectPaths, i.e. whether
// none of them have changed since the last scan of this exact set.
func (c *Cache) Fresh(exePath string, objectPaths []string) (bool, error) {
	want, err := digest(append([]string{exePath}, objectPaths...))
	if err != nil {
		return false, err
	}

	var got string
	err = c.db.QueryRow(`SELECT digest FROM scans WHERE exe_path = ?`, exePath).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "querying cache for %s", exePath)
	}
	return got == want, nil
}

// Load returns the cached ApiUsage records for exePath. Callers should check
// Fresh first.
func (c *Cache) Load(exePath string) ([]problem.ApiUsage, error) {
	var raw string
	err := c.db.QueryRow(`SELECT usages_json FROM scans WHERE exe_path = ?`, exePath).Scan(&raw)
	if err != nil {
		return nil, errors.Wrapf(err, "loading cached usages for %s", exePath)
	}

	var recs []record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, errors.Wrapf(err, "decoding cached usages for %s", exePath)
	}

	out := make([]problem.ApiUsage, 0, len(recs))
	for _, r := range recs {
		au := problem.ApiUsage{CrateName: r.CrateName}
		for perm, us := range r.Usages {
			for _, u := range us {
				au.AddUsage(perm, problem.Usage{
					Location: problem.SourceLocation(u.Location),
				})
			}
		}
		out = append(out, au)
	}
	return out, nil
}

// Store records the digest of exePath + objectPaths and the ApiUsage rows
// produced by scanning them, replacing any prior entry for exePath.
func (c *Cache) Store(exePath string, objectPaths []string, usages []problem.ApiUsage) error {
	sum, err := digest(append([]string{exePath}, objectPaths...))
	if err != nil {
		return err
	}

	recs := make([]record, len(usages))
	for i, au := range usages {
		r := record{CrateName: au.CrateName, Usages: make(map[permission.Name][]usage, len(au.Usages))}
		for perm, us := range au.Usages {
			for _, u := range us {
				r.Usages[perm] = append(r.Usages[perm], usage{Location: string(u.Location)})
			}
		}
		recs[i] = r
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return errors.Wrap(err, "encoding cache entry")
	}

	_, err = c.db.Exec(
		`INSERT INTO scans (exe_path, digest, usages_json) VALUES (?, ?, ?)
		 ON CONFLICT(exe_path) DO UPDATE SET digest = excluded.digest, usages_json = excluded.usages_json`,
		exePath, sum, string(payload),
	)
	return errors.Wrapf(err, "storing cache entry for %s", exePath)
}
