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

// Package httpapi is an optional read-only view onto a completed scan's
// problem store, for operators who want to poll results from another
// process instead of parsing capcheck's own stdout. Exposes GET /problems,
// GET /usages/:crate and the standard pprof profiling surface, the same
// gin + gin-contrib/pprof pairing used elsewhere in the retrieval pack.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"capcheck/internal/problem"
)

// ProblemSource supplies the data this API serves; cmd/capcheck passes a
// *problem.Store, which satisfies it.
type ProblemSource interface {
	Problems() []problem.Problem
	UsagesForCrate(crateName string) []problem.ApiUsage
}

// NewRouter builds the gin engine. pprof is always registered under
// /debug/pprof, matching the teacher's own pairing of these two modules.
func NewRouter(source ProblemSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	pprof.Register(r)

	r.GET("/problems", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Problems())
	})

	r.GET("/usages/:crate", func(c *gin.Context) {
		crate := c.Param("crate")
		c.JSON(http.StatusOK, source.UsagesForCrate(crate))
	})

	return r
}

// Serve blocks, serving the API on addr (e.g. "127.0.0.1:9091").
func Serve(addr string, source ProblemSource) error {
	return NewRouter(source).Run(addr)
}
