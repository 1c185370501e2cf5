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

package problem

import (
	"testing"

	"capcheck/internal/permission"
	"capcheck/internal/symbol"
)

func TestApiUsageAddUsage(t *testing.T) {
	var a ApiUsage
	a.CrateName = "alpha"
	u := Usage{
		Location: "src/lib.rs",
		From:     symbol.New([]byte("alpha::connect")),
		To:       symbol.New([]byte("std::net::TcpStream::connect")),
	}
	a.AddUsage(permission.Name("net"), u)

	got := a.Usages[permission.Name("net")]
	if len(got) != 1 || got[0] != u {
		t.Errorf("Usages[net] = %+v, want [%+v]", got, u)
	}
}

func TestListAppendAndLen(t *testing.T) {
	var l List
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	l.Append(Problem{Severity: SeverityViolation, CrateName: "alpha", Permission: "net"})
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if l.Items()[0].CrateName != "alpha" {
		t.Errorf("Items()[0].CrateName = %q, want alpha", l.Items()[0].CrateName)
	}
}

func TestSeverityString(t *testing.T) {
	cases := map[Severity]string{
		SeverityInfo:      "info",
		SeverityWarning:   "warning",
		SeverityViolation: "violation",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
