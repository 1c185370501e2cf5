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

// Command capcheck is the build-time capability checker's CLI: it scans
// object files against a linked executable (scan), recomputes policy
// violations from an existing scan result after a config edit (check),
// drives the terminal UI over a scan result (ui), serves a read-only HTTP
// view of the last scan (serve), runs the RPC supervisor a compiler wrapper
// talks to (proxy), and exposes the same operations to agentic tools over
// MCP (mcp).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"capcheck/internal/log"
)

func main() {
	app := &cli.App{
		Name:  "capcheck",
		Usage: "build-time capability checker for compiled packages",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "rotate logs through this file instead of stderr"},
		},
		Before: func(c *cli.Context) error {
			log.Configure(log.Options{
				FilePath: c.String("log-file"),
				Debug:    c.Bool("debug"),
			})
			return nil
		},
		Commands: []*cli.Command{
			scanCommand(),
			checkCommand(),
			uiCommand(),
			serveCommand(),
			proxyCommand(),
			mcpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
