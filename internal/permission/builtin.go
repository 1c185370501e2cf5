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

package permission

// builtins is the hard-coded default permission table (see spec §6).
var builtins = map[Name]Config{
	"fs": {
		Include: namePaths(
			[]string{"std", "fs"},
			[]string{"std", "path"},
			[]string{"std", "io"},
			[]string{"std", "os", "linux", "fs"},
			[]string{"std", "os", "unix", "fs"},
			[]string{"std", "os", "unix", "io"},
			[]string{"std", "os", "wasi", "fs"},
			[]string{"std", "os", "wasi", "io"},
			[]string{"std", "os", "windows", "fs"},
			[]string{"std", "os", "windows", "io"},
			// std::env provides several functions that return paths, which
			// can in turn allow filesystem access.
			[]string{"std", "env"},
		),
		Exclude: namePaths(
			[]string{"std", "io", "stdio"},
			[]string{"std", "env", "var"},
			[]string{"std", "env", "var_os"},
			[]string{"std", "env", "vars"},
			[]string{"std", "env", "vars_os"},
			[]string{"std", "env", "args"},
		),
	},
	"env": {
		Include: namePaths([]string{"std", "env"}),
	},
	"net": {
		Include: namePaths(
			[]string{"std", "net"},
			[]string{"std", "os", "unix", "net"},
			[]string{"std", "os", "wasi", "net"},
			[]string{"std", "os", "windows", "net"},
		),
	},
	"process": {
		Include: namePaths(
			[]string{"std", "process"},
			[]string{"std", "unix", "process"},
			[]string{"std", "windows", "process"},
		),
		Exclude: namePaths(
			[]string{"std", "process", "abort"},
			[]string{"std", "process", "exit"},
		),
	},
	"terminate": {
		Include: namePaths(
			[]string{"std", "process", "abort"},
			[]string{"std", "process", "exit"},
		),
	},
}
