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

// Package graph implements the top-level symbol-graph walk (spec §4.6):
// given a linked executable and the unlinked object files that made it up,
// it produces the ApiUsage records the policy checker consumes.
package graph

import (
	"bytes"
	"context"
	"debug/elf"
	"os"
	"sync"
	"time"

	"github.com/tklauser/numcpus"
	"golang.org/x/time/rate"

	"capcheck/internal/attributor"
	"capcheck/internal/checker"
	"capcheck/internal/log"
	"capcheck/internal/names"
	"capcheck/internal/permission"
	"capcheck/internal/problem"
	"capcheck/internal/scanerr"
	"capcheck/internal/symbol"
)

// usageEdge is one (crate, permission, Usage) tuple found while walking a
// single object file, before being folded into the shared GraphOutputs.
type usageEdge struct {
	crate string
	perm  permission.Name
	usage problem.Usage
}

// ScanObjects walks every object path against the linked executable at
// exePath, emitting ApiUsage records for each (crate, permission) observed
// and any base problems encountered along the way (spec §4.6). resolver is
// the external crate-resolver collaborator (spec §2); see
// internal/checker.CrateResolver.
//
// §5 notes that concurrent scans are safe because PermissionTable and
// ExeInfo are read-only once built; this also means one scan's object files
// can be walked by a small worker pool, sized from the online CPU count
// rather than assumed to equal runtime.NumCPU(). The one piece of shared
// mutable state the workers touch is the *attributor.Attributor's DWARF line
// readers, which attributor.FindLocation itself serializes with a mutex.
// Each object file's edges are computed independently and then folded into
// the result in input order, so the worker pool does not disturb the
// deterministic object×section×relocation×crate×candidate-name×permission
// ordering spec §8 requires.
func ScanObjects(objectPaths []string, exePath string, permTable permission.Table, resolver checker.CrateResolver) (problem.GraphOutputs, error) {
	var out problem.GraphOutputs

	exeFile, err := elf.Open(exePath)
	if err != nil {
		return out, scanerr.Stage(exePath, "opening executable", scanerr.New(scanerr.KindFatalIO, err))
	}
	defer exeFile.Close()

	exeInfo, err := symbol.LoadExeInfo(exeFile)
	if err != nil {
		return out, scanerr.Stage(exePath, "loading executable symbol table", err)
	}

	attr, err := attributor.New(exeFile)
	if err != nil {
		return out, scanerr.Stage(exePath, "loading DWARF debug info", err)
	}

	scanPath := func(objectPath string) ([]usageEdge, error) {
		var edges []usageEdge
		collect := func(crate string, perm permission.Name, u problem.Usage) {
			edges = append(edges, usageEdge{crate: crate, perm: perm, usage: u})
		}

		if symbol.IsArchive(objectPath) {
			err := symbol.WalkArchive(objectPath, func(entryName string, data []byte) error {
				f, err := elf.NewFile(bytes.NewReader(data))
				if err != nil {
					// A malformed archive *entry* is skipped (spec §4.6, §7).
					log.Warnf("%s: skipping unreadable archive entry %q: %v", objectPath, entryName, err)
					return nil
				}
				defer f.Close()
				return scanOneObject(f, objectPath, exeInfo, attr, permTable, resolver, collect)
			})
			return edges, scanerr.Stage(objectPath, "walking archive", err)
		}

		data, err := os.ReadFile(objectPath)
		if err != nil {
			return nil, scanerr.Stage(objectPath, "reading object file", scanerr.New(scanerr.KindFatalIO, err))
		}
		f, err := elf.NewFile(bytes.NewReader(data))
		if err != nil {
			return nil, scanerr.Stage(objectPath, "parsing object file", scanerr.New(scanerr.KindFatalParse, err))
		}
		defer f.Close()
		return edges, scanOneObject(f, objectPath, exeInfo, attr, permTable, resolver, collect)
	}

	results, err := runWorkerPool(objectPaths, scanPath)
	if err != nil {
		return out, err
	}

	byCratePerm := map[string]int{}
	for _, edges := range results {
		for _, e := range edges {
			key := e.crate + "\x00" + string(e.perm)
			idx, ok := byCratePerm[key]
			if !ok {
				idx = len(out.Usages)
				byCratePerm[key] = idx
				out.Usages = append(out.Usages, problem.ApiUsage{CrateName: e.crate})
			}
			out.Usages[idx].AddUsage(e.perm, e.usage)
		}
	}
	return out, nil
}

// runWorkerPool fans objectPaths out across workerCount() goroutines,
// logging progress at a rate-limited cadence so a large scan doesn't flood
// the log, and returns each path's edges in objectPaths order alongside the
// first fatal error encountered (if any), after which remaining unstarted
// work is abandoned.
func runWorkerPool(objectPaths []string, scanPath func(string) ([]usageEdge, error)) ([][]usageEdge, error) {
	workers := workerCount()
	if workers > len(objectPaths) {
		workers = len(objectPaths)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([][]usageEdge, len(objectPaths))
	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if limiter.Allow() {
					log.Infof("scanning %s", j.path)
				}
				edges, err := scanPath(j.path)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[j.index] = edges
			}
		}()
	}

feeding:
	for i, path := range objectPaths {
		select {
		case <-ctx.Done():
			break feeding
		case jobs <- job{index: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// workerCount sizes the pool from the online CPU count, per §5's "safe to
// run multiple scans in parallel" observation applied within one scan's
// own object-file walk.
func workerCount() int {
	n, err := numcpus.GetOnline()
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func scanOneObject(
	f *elf.File,
	objectPath string,
	exeInfo *symbol.ExeInfo,
	attr *attributor.Attributor,
	permTable permission.Table,
	resolver checker.CrateResolver,
	collect func(crate string, perm permission.Name, u problem.Usage),
) error {
	oi, err := symbol.NewObjectIndex(f)
	if err != nil {
		return scanerr.Stage(objectPath, "building object index", scanerr.New(scanerr.KindFatalParse, err))
	}

	for idx, sec := range oi.Sections() {
		definingSym, ok := oi.SectionSymbol(idx)
		if !ok {
			continue
		}
		fromAddr, ok := exeInfo.Address(definingSym)
		if !ok {
			continue
		}

		relocs, err := oi.Relocations(sec)
		if err != nil {
			return scanerr.Stage(objectPath, "decoding relocations for "+sec.Name, scanerr.New(scanerr.KindFatalParse, err))
		}

		for _, reloc := range relocs {
			target, ok, err := oi.TargetSymbol(reloc)
			if err != nil {
				// A missing relocation target kind is fatal: the analyser
				// cannot reason about the rest of the binary either (§4.6).
				return scanerr.Stage(objectPath, "resolving relocation target in "+sec.Name, scanerr.New(scanerr.KindFatalParse, err))
			}
			if !ok {
				continue
			}

			addr := fromAddr + reloc.Offset
			sourcePath, ok := attr.FindLocation(addr)
			if !ok {
				continue // MissingDebug: silently dropped (spec §7)
			}

			crates, err := resolver.CrateNamesFromSourcePath(sourcePath, objectPath)
			if err != nil {
				log.Warnf("%s: resolving crates for %s: %v", objectPath, sourcePath, err)
				continue
			}

			for _, crate := range crates {
				for _, candidate := range target.Parts() {
					if isIntraCrate(candidate, crate) {
						continue // IntraCrate: silently dropped by design (spec §7)
					}
					for _, api := range permTable.ApisForPath(candidate) {
						collect(crate, api, problem.Usage{
							Location: problem.SourceLocation(sourcePath),
							From:     definingSym,
							To:       target,
						})
					}
				}
			}
		}
	}
	return nil
}

func isIntraCrate(candidate names.Name, crate string) bool {
	return len(candidate.Parts) > 0 && candidate.Parts[0] == crate
}
