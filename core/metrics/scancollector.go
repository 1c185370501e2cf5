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

// Package metrics exposes a prometheus.Collector tracking one symbol-graph
// scan's progress: objects scanned, relocations walked, usages emitted and
// policy violations found. It follows the Describe/Collect shape of a
// collector manager that reports scrape duration/success alongside
// per-collector data; here there is exactly one collector (the scan itself)
// so the manager layer collapses into a single struct.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DefaultNamespace is the prometheus namespace every capcheck metric is
// built under.
const DefaultNamespace = "capcheck"

// ScanCollector reports cumulative counters for one scan_objects invocation.
// Counts are plain, unsynchronized fields: callers must not update them
// concurrently with each other or with Collect. internal/graph.ScanObjects
// does not update a ScanCollector itself.
type ScanCollector struct {
	objectsScanned   uint64
	relocationsWalked uint64
	usagesEmitted    uint64
	violationsFound  uint64

	objectsScannedDesc    *prometheus.Desc
	relocationsWalkedDesc *prometheus.Desc
	usagesEmittedDesc     *prometheus.Desc
	violationsFoundDesc   *prometheus.Desc
}

// NewScanCollector builds a collector with its descriptors pre-built.
func NewScanCollector() *ScanCollector {
	return &ScanCollector{
		objectsScannedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(DefaultNamespace, "scan", "objects_scanned_total"),
			"Number of object files (including archive members) walked in the most recent scan.",
			nil, nil,
		),
		relocationsWalkedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(DefaultNamespace, "scan", "relocations_walked_total"),
			"Number of relocation entries walked in the most recent scan.",
			nil, nil,
		),
		usagesEmittedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(DefaultNamespace, "scan", "usages_emitted_total"),
			"Number of ApiUsage records emitted in the most recent scan.",
			nil, nil,
		),
		violationsFoundDesc: prometheus.NewDesc(
			prometheus.BuildFQName(DefaultNamespace, "scan", "violations_found_total"),
			"Number of policy violations found in the most recent scan.",
			nil, nil,
		),
	}
}

// AddObjectScanned increments the objects-scanned counter by one.
func (c *ScanCollector) AddObjectScanned() { c.objectsScanned++ }

// AddRelocationsWalked increments the relocations-walked counter by n.
func (c *ScanCollector) AddRelocationsWalked(n int) { c.relocationsWalked += uint64(n) }

// AddUsageEmitted increments the usages-emitted counter by one.
func (c *ScanCollector) AddUsageEmitted() { c.usagesEmitted++ }

// SetViolationsFound sets the violations-found gauge-as-counter to n,
// reflecting the final ProblemList size after policy derivation (spec §4.7)
// rather than an incremental count, since violations are deduped and can
// only be known once all usages are checked.
func (c *ScanCollector) SetViolationsFound(n int) { c.violationsFound = uint64(n) }

// Describe implements prometheus.Collector.
func (c *ScanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.objectsScannedDesc
	ch <- c.relocationsWalkedDesc
	ch <- c.usagesEmittedDesc
	ch <- c.violationsFoundDesc
}

// Collect implements prometheus.Collector.
func (c *ScanCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.objectsScannedDesc, prometheus.CounterValue, float64(c.objectsScanned))
	ch <- prometheus.MustNewConstMetric(c.relocationsWalkedDesc, prometheus.CounterValue, float64(c.relocationsWalked))
	ch <- prometheus.MustNewConstMetric(c.usagesEmittedDesc, prometheus.CounterValue, float64(c.usagesEmitted))
	ch <- prometheus.MustNewConstMetric(c.violationsFoundDesc, prometheus.CounterValue, float64(c.violationsFound))
}
