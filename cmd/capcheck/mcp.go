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
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v2"

	"capcheck/internal/checker"
	"capcheck/internal/conf"
	"capcheck/internal/graph"
	"capcheck/internal/problem"
)

// mcpVersion is the version reported to MCP clients during initialization.
const mcpVersion = "0.1.0"

// scanArgs is the input schema for the capcheck.scan tool.
type scanArgs struct {
	Config      string              `json:"config"`
	Exe         string              `json:"exe"`
	ObjectPaths []string            `json:"objectPaths"`
	Crates      map[string][]string `json:"crates"`
}

// listProblemsArgs is the input schema for the capcheck.listProblems tool;
// it operates on the result of the most recent capcheck.scan call in this
// server's lifetime.
type listProblemsArgs struct{}

// mcpCommand starts a stdio MCP server exposing capcheck.scan and
// capcheck.listProblems, so an agentic coding tool can drive a scan and
// read back problems without shelling out to the CLI (SPEC_FULL's
// Agent/editor integration section).
func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "start an MCP server exposing scan and problem-listing tools",
		Action: runMCP,
	}
}

func runMCP(c *cli.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "capcheck",
		Version: mcpVersion,
	}, nil)

	var lastOutputs problem.GraphOutputs

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capcheck.scan",
		Description: "Scan object files against a linked executable and return observed API usages and policy violations.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args scanArgs) (*mcp.CallToolResult, any, error) {
		confStore, err := conf.NewStore(args.Config)
		if err != nil {
			return errorResult(err), nil, nil
		}

		resolver := conf.NewStaticCrateResolver()
		for crate, paths := range args.Crates {
			resolver.RecordCompilation(crate, paths)
		}

		outputs, err := graph.ScanObjects(args.ObjectPaths, args.Exe, confStore.Get().PermissionTable(), resolver)
		if err != nil {
			return errorResult(err), nil, nil
		}

		chk := checker.New(conf.StoreGrants{Store: confStore})
		for i := range outputs.Usages {
			chk.PermissionUsed(&outputs.Usages[i], &outputs.Problems)
		}
		lastOutputs = outputs

		summary := fmt.Sprintf("scanned %d object file(s); found %d (crate, permission) usage record(s), %d problem(s)",
			len(args.ObjectPaths), len(outputs.Usages), outputs.Problems.Len())
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: summary}},
		}, outputs.Problems.Items(), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capcheck.listProblems",
		Description: "List the problems found by the most recent capcheck.scan call.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listProblemsArgs) (*mcp.CallToolResult, any, error) {
		items := lastOutputs.Problems.Items()
		summary := fmt.Sprintf("%d problem(s) from the last scan", len(items))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: summary}},
		}, items, nil
	})

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
