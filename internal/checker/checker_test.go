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

package checker

import (
	"testing"

	"capcheck/internal/permission"
	"capcheck/internal/problem"
	"capcheck/internal/symbol"
)

type stubGrants struct {
	granted map[string][]permission.Name
}

func (g stubGrants) PermissionsGranted(crateName string) []permission.Name {
	return g.granted[crateName]
}

func usageWith(crate string, perms ...permission.Name) *problem.ApiUsage {
	u := &problem.ApiUsage{CrateName: crate}
	for _, p := range perms {
		u.AddUsage(p, problem.Usage{
			Location: "src/lib.rs",
			From:     symbol.New([]byte(crate + "::f")),
			To:       symbol.New([]byte("std::net::TcpStream::connect")),
		})
	}
	return u
}

func TestPermissionUsedFlagsUngrantedPermission(t *testing.T) {
	c := New(stubGrants{granted: map[string][]permission.Name{"alpha": {"fs"}}})
	var problems problem.List

	c.PermissionUsed(usageWith("alpha", "net"), &problems)

	if problems.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", problems.Len())
	}
	p := problems.Items()[0]
	if p.CrateName != "alpha" || p.Permission != "net" || p.Severity != problem.SeverityViolation {
		t.Errorf("problem = %+v, want violation for alpha/net", p)
	}
}

func TestPermissionUsedAllowsGrantedPermission(t *testing.T) {
	c := New(stubGrants{granted: map[string][]permission.Name{"alpha": {"net"}}})
	var problems problem.List

	c.PermissionUsed(usageWith("alpha", "net"), &problems)

	if problems.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for a granted permission", problems.Len())
	}
}

func TestPermissionUsedDedupesAcrossCalls(t *testing.T) {
	c := New(stubGrants{})
	var problems problem.List

	c.PermissionUsed(usageWith("alpha", "net"), &problems)
	c.PermissionUsed(usageWith("alpha", "net"), &problems)

	if problems.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after two calls for the same crate/permission", problems.Len())
	}
}

func TestResetClearsDedupeState(t *testing.T) {
	c := New(stubGrants{})
	var problems problem.List

	c.PermissionUsed(usageWith("alpha", "net"), &problems)
	c.Reset()
	c.PermissionUsed(usageWith("alpha", "net"), &problems)

	if problems.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after Reset() between calls", problems.Len())
	}
}
