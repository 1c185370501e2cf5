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

// Package problem holds the data model the graph collector (internal/graph)
// produces and the policy checker (internal/checker) consumes: per-crate API
// usage observations and the problem list derived from them (spec §3, §4.7).
package problem

import (
	"encoding/json"

	"capcheck/internal/permission"
	"capcheck/internal/symbol"
)

// SourceLocation is an originating source file path.
type SourceLocation string

// Usage is a single attributed edge: a reference from symbol From to symbol
// To, found at SourceLocation.
type Usage struct {
	Location SourceLocation `json:"location"`
	From     symbol.Symbol  `json:"from"`
	To       symbol.Symbol  `json:"to"`
}

// ApiUsage groups observed Usages by one crate, keyed by permission.
// internal/graph emits one ApiUsage per (crate, permission) pair.
type ApiUsage struct {
	CrateName string                      `json:"crate_name"`
	Usages    map[permission.Name][]Usage `json:"usages"`
}

// AddUsage appends u under perm, creating the slice on first use.
func (a *ApiUsage) AddUsage(perm permission.Name, u Usage) {
	if a.Usages == nil {
		a.Usages = make(map[permission.Name][]Usage)
	}
	a.Usages[perm] = append(a.Usages[perm], u)
}

// Severity classifies a Problem for display/sorting purposes. The core
// itself only ever produces Violation problems (spec §7: "PolicyViolation —
// not raised by the scanner; produced by the policy checker"); other
// severities exist for the checker and UI layers built on top of it.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityViolation
)

// MarshalJSON renders a Severity as its String() form, so HTTP consumers
// (internal/httpapi) see "violation" rather than a bare integer.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// Problem is one reportable finding: a crate used a permission it was not
// granted, or some other base-problem condition. Skipped archive members
// are logged by internal/graph, not recorded as Problems.
type Problem struct {
	Severity   Severity        `json:"severity"`
	CrateName  string          `json:"crate_name"`
	Permission permission.Name `json:"permission"`
	Message    string          `json:"message"`
	Usage      *Usage          `json:"usage,omitempty"` // nil for base problems not tied to a specific edge
}

// List is an append-only collection of Problems. internal/graph.ScanObjects
// leaves it empty; the checker appends policy violations as it consumes each
// ApiUsage. It is never mutated concurrently with a read outside of the lock
// internal/checker.Checker holds around it.
type List struct {
	items []Problem
}

// Append adds p to the list.
func (l *List) Append(p Problem) {
	l.items = append(l.items, p)
}

// Items returns every problem recorded so far, in insertion order.
func (l *List) Items() []Problem {
	return l.items
}

// Len reports how many problems have been recorded.
func (l *List) Len() int {
	return len(l.items)
}

// GraphOutputs is the collector's full result: every ApiUsage it observed,
// plus a problem list that the policy checker fills in afterwards.
type GraphOutputs struct {
	Usages   []ApiUsage
	Problems List
}
