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

// Package checker implements policy derivation (spec §4.7): given the graph
// collector's ApiUsage observations and a crate's declared permission
// grants, it decides which usages are violations.
package checker

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set"

	"capcheck/internal/permission"
	"capcheck/internal/problem"
)

// CrateResolver maps a source file path to the packages it belongs to
// (spec §2: "interface consumed from outside"). internal/conf.StaticCrateResolver
// is the concrete implementation driven by RPC-reported compilations.
type CrateResolver interface {
	CrateNamesFromSourcePath(sourcePath, objectPath string) ([]string, error)
}

// Grants maps a crate name to the set of permissions it has been declared to
// need, e.g. from a user's configuration file.
type Grants interface {
	PermissionsGranted(crateName string) []permission.Name
}

// Checker holds the mutable state shared between the UI thread (editing
// grants, triggering a re-check) and the main scan thread (consuming
// ApiUsage records), guarded by a single mutex per spec §5.
type Checker struct {
	mu       sync.Mutex
	grants   Grants
	reported mapset.Set // set of "crate\x00permission" pairs already emitted
}

// New builds a Checker that consults grants for each crate's declared
// permissions.
func New(grants Grants) *Checker {
	return &Checker{grants: grants, reported: mapset.NewThreadUnsafeSet()}
}

// PermissionUsed compares usage's permissions against the crate's declared
// grants, appending one Violation problem per (crate, permission) pair not
// covered — at most once per pair, even across repeated calls for the same
// crate, until Reset is called.
func (c *Checker) PermissionUsed(usage *problem.ApiUsage, problems *problem.List) {
	c.mu.Lock()
	defer c.mu.Unlock()

	granted := mapset.NewThreadUnsafeSet()
	for _, p := range c.grants.PermissionsGranted(usage.CrateName) {
		granted.Add(string(p))
	}

	for permName, usages := range usage.Usages {
		if granted.Contains(string(permName)) {
			continue
		}
		key := dedupeKey(usage.CrateName, permName)
		if c.reported.Contains(key) {
			continue
		}
		c.reported.Add(key)

		problems.Append(problem.Problem{
			Severity:   problem.SeverityViolation,
			CrateName:  usage.CrateName,
			Permission: permName,
			Message:    fmt.Sprintf("crate %q uses permission %q without a declared grant", usage.CrateName, permName),
			Usage:      firstUsage(usages),
		})
	}
}

// Reset clears the dedupe set, e.g. after a fresh scan whose ApiUsage
// records should be re-checked from scratch.
func (c *Checker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reported = mapset.NewThreadUnsafeSet()
}

func dedupeKey(crateName string, perm permission.Name) string {
	return crateName + "\x00" + string(perm)
}

func firstUsage(usages []problem.Usage) *problem.Usage {
	if len(usages) == 0 {
		return nil
	}
	return &usages[0]
}
