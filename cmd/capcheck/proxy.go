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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v2"

	"capcheck/internal/conf"
	"capcheck/internal/log"
	"capcheck/internal/rpc"
)

// proxyCommand runs the RPC supervisor a compiler wrapper process talks to
// during a build (spec §4.8): it records RustcComplete's authoritative
// source-path sets for the crate resolver, flags disallowed unsafe usage,
// and writes the accumulated crate map to --crates-out so a subsequent
// `capcheck scan` can consume it.
func proxyCommand() *cli.Command {
	return &cli.Command{
		Name:  "proxy",
		Usage: "run the RPC supervisor a compiler wrapper reports build events to",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true},
			&cli.StringFlag{Name: "crates-out", Required: true, Usage: "where to write the accumulated {crate: [source_paths]} map"},
		},
		Action: runProxy,
	}
}

func runProxy(c *cli.Context) error {
	confStore, err := conf.NewStore(c.String("config"))
	if err != nil {
		return err
	}

	resolver := conf.NewStaticCrateResolver()
	crateOut := c.String("crates-out")
	var writeMu sync.Mutex
	disallowedUnsafe := map[string]bool{}
	for _, crate := range confStore.Get().Crates {
		disallowedUnsafe[crate.Name] = !crate.AllowUnsafe
	}

	handler := func(req rpc.Request) rpc.Outcome {
		switch req.Kind {
		case rpc.KindRustcStarted:
			log.WithField("crate", req.CrateName).Infof("proxy: rustc started")

		case rpc.KindRustcComplete:
			resolver.RecordCompilation(req.CrateName, req.SourcePaths)
			log.WithField("crate", req.CrateName).Infof("proxy: rustc complete, %d source paths", len(req.SourcePaths))
			writeMu.Lock()
			err := writeCrateMap(crateOut, resolver)
			writeMu.Unlock()
			if err != nil {
				log.Warnf("proxy: writing crate map: %v", err)
			}

		case rpc.KindCrateUsesUnsafe:
			log.WithField("crate", req.CrateName).Warnf("proxy: unsafe usage at %s:%d", req.FileName, req.StartLine)
			if disallowedUnsafe[req.CrateName] {
				return rpc.OutcomeGiveUp
			}

		case rpc.KindLinkerInvoked:
			log.Infof("proxy: linker invoked")

		case rpc.KindBuildScriptComplete:
			log.WithField("package", req.PackageName).Infof("proxy: build script exited %d", req.ExitCode)
			if req.ExitCode != 0 {
				return rpc.OutcomeGiveUp
			}
		}
		return rpc.OutcomeContinue
	}

	srv, err := rpc.Listen(confStore.Get().SocketPath, handler)
	if err != nil {
		return err
	}
	defer srv.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		srv.Close()
	}()

	log.Infof("proxy: listening on %s", srv.Addr())
	return srv.Serve()
}

func writeCrateMap(path string, resolver *conf.StaticCrateResolver) error {
	snapshot := resolver.Snapshot()
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
