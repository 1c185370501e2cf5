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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"capcheck/internal/cache"
	"capcheck/internal/checker"
	"capcheck/internal/conf"
	"capcheck/internal/graph"
	"capcheck/internal/problem"
	"capcheck/internal/ui"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "scan object files against a linked executable and report API usage",
		ArgsUsage: "<object-file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true, Usage: "path to capcheck.toml"},
			&cli.StringFlag{Name: "exe", Required: true, Usage: "path to the linked executable"},
			&cli.StringFlag{Name: "crates", Required: true, Usage: "path to a JSON {crate: [source_paths]} map, as reported by `capcheck proxy`"},
			&cli.StringFlag{Name: "cache-db", Usage: "sqlite cache path; when set and neither the executable nor any object file has changed, the scan is skipped"},
			&cli.BoolFlag{Name: "ui", Usage: "drive the alternate-screen terminal UI instead of printing to stdout"},
		},
		Action: runScan,
	}
}

// loadCrateMap reads the {crate: [source_paths]} sidecar a prior `capcheck
// proxy` run would have produced from RustcComplete events, and feeds it
// into a StaticCrateResolver.
func loadCrateMap(path string) (*conf.StaticCrateResolver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crate map %s: %w", path, err)
	}
	var byCrate map[string][]string
	if err := json.Unmarshal(raw, &byCrate); err != nil {
		return nil, fmt.Errorf("parsing crate map %s: %w", path, err)
	}
	resolver := conf.NewStaticCrateResolver()
	for crate, paths := range byCrate {
		resolver.RecordCompilation(crate, paths)
	}
	return resolver, nil
}

func runScan(c *cli.Context) error {
	objectPaths := c.Args().Slice()
	if len(objectPaths) == 0 {
		return cli.Exit("at least one object file is required", 1)
	}

	store, err := conf.NewStore(c.String("config"))
	if err != nil {
		return err
	}
	resolver, err := loadCrateMap(c.String("crates"))
	if err != nil {
		return err
	}

	exePath := c.String("exe")

	var objCache *cache.Cache
	if path := c.String("cache-db"); path != "" {
		objCache, err = cache.Open(path)
		if err != nil {
			return err
		}
		defer objCache.Close()

		fresh, err := objCache.Fresh(exePath, objectPaths)
		if err != nil {
			return err
		}
		if fresh {
			usages, err := objCache.Load(exePath)
			if err != nil {
				return err
			}
			return checkAndReport(c, store, usages)
		}
	}

	outputs, err := graph.ScanObjects(objectPaths, exePath, store.Get().PermissionTable(), resolver)
	if err != nil {
		return err
	}

	if objCache != nil {
		if err := objCache.Store(exePath, objectPaths, outputs.Usages); err != nil {
			return err
		}
	}

	return checkAndReportOutputs(c, store, outputs)
}

// checkAndReport runs the policy checker over cached usages (the exe +
// object set was unchanged since the last scan) and reports the result.
func checkAndReport(c *cli.Context, store *conf.Store, usages []problem.ApiUsage) error {
	var outputs problem.GraphOutputs
	outputs.Usages = usages
	return checkAndReportOutputs(c, store, outputs)
}

func checkAndReportOutputs(c *cli.Context, store *conf.Store, outputs problem.GraphOutputs) error {
	chk := checker.New(conf.StoreGrants{Store: store})
	for i := range outputs.Usages {
		chk.PermissionUsed(&outputs.Usages[i], &outputs.Problems)
	}
	return reportOutputs(c, outputs)
}

func reportOutputs(c *cli.Context, outputs problem.GraphOutputs) error {
	store := problem.NewStore(outputs)
	events := make(chan ui.AppEvent, 1)
	events <- ui.AppEvent{Problems: store.Problems()}
	close(events)

	kind := ui.BasicPrint
	if c.Bool("ui") {
		kind = ui.FullTerm
	}
	abort := make(chan struct{}, 1)
	return ui.Run(kind, store, events, abort, c.App.Writer)
}
