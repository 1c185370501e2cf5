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

package conf

import "capcheck/internal/permission"

// StoreGrants adapts a *Store to internal/checker.Grants, always reading
// the currently-active Config so a hot-reloaded grant takes effect on the
// very next policy check without re-scanning (spec §4.7).
type StoreGrants struct {
	Store *Store
}

// PermissionsGranted returns crateName's declared allow_apis, or nil if the
// crate has no entry (meaning it is granted nothing).
func (g StoreGrants) PermissionsGranted(crateName string) []permission.Name {
	cfg := g.Store.Get()
	for _, c := range cfg.Crates {
		if c.Name == crateName {
			out := make([]permission.Name, len(c.AllowApis))
			for i, a := range c.AllowApis {
				out[i] = permission.Name(a)
			}
			return out
		}
	}
	return nil
}
