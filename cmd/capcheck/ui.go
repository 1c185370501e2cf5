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
	"capcheck/internal/checker"
	"capcheck/internal/conf"
	"capcheck/internal/problem"
	"capcheck/internal/ui"
)

// uiCommand drives the alternate-screen terminal UI directly over a prior
// scan's cached results, without printing anything to stdout first.
func uiCommand() *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "browse a prior scan's problems in the terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true},
			&cli.StringFlag{Name: "exe", Required: true, Usage: "executable path the cached scan was run against"},
			&cli.StringFlag{Name: "cache-db", Required: true},
		},
		Action: runUI,
	}
}

func runUI(c *cli.Context) error {
	confStore, err := conf.NewStore(c.String("config"))
	if err != nil {
		return err
	}
	if err := confStore.Watch(); err != nil {
		return err
	}
	defer confStore.Close()

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

	chk := checker.New(conf.StoreGrants{Store: confStore})
	for i := range outputs.Usages {
		chk.PermissionUsed(&outputs.Usages[i], &outputs.Problems)
	}

	problemStore := problem.NewStore(outputs)
	events := make(chan ui.AppEvent, 1)
	events <- ui.AppEvent{Problems: problemStore.Problems()}
	abort := make(chan struct{}, 1)

	return ui.Run(ui.FullTerm, problemStore, events, abort, c.App.Writer)
}
