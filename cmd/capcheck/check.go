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
	"github.com/urfave/cli/v2"

	"capcheck/internal/cache"
	"capcheck/internal/conf"
	"capcheck/internal/problem"
)

// checkCommand re-derives problems from a prior scan's cached ApiUsage
// records against the current configuration, without re-walking any object
// file (spec §4.7: "this separation lets the UI recompute problems after a
// user edits configuration without re-scanning binaries").
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "recompute policy violations from a cached scan against the current config",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true},
			&cli.StringFlag{Name: "exe", Required: true, Usage: "executable path the cached scan was run against"},
			&cli.StringFlag{Name: "cache-db", Required: true},
			&cli.BoolFlag{Name: "ui"},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	store, err := conf.NewStore(c.String("config"))
	if err != nil {
		return err
	}

	objCache, err := cache.Open(c.String("cache-db"))
	if err != nil {
		return err
	}
	defer objCache.Close()

	usages, err := objCache.Load(c.String("exe"))
	if err != nil {
		return err
	}

	var outputs problem.GraphOutputs
	outputs.Usages = usages

	return checkAndReportOutputs(c, store, outputs)
}
