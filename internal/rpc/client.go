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

package rpc

import (
	"context"
	"net"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/pkg/errors"
)

// Send dials the supervisor's Unix socket at path and round-trips req,
// returning the Outcome it replies with. One connection per call (spec
// §4.8): the subordinate wrapper process opens a fresh connection for
// every event it reports.
//
// The subordinate can start racing the supervisor's listener (SPEC_FULL's
// Retry/backoff section), so dialing retries with backoff until ctx is
// done rather than failing on the first refused connection.
func Send(ctx context.Context, path string, req Request) (Outcome, error) {
	conn, err := dialWithBackoff(ctx, path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := Encode(conn, req); err != nil {
		return "", err
	}
	return DecodeOutcome(conn)
}

func dialWithBackoff(ctx context.Context, path string) (net.Conn, error) {
	b := backoff.New(2*time.Second, 10*time.Millisecond)
	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		wait := b.Duration()
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "dialing rpc socket %s", path)
		case <-time.After(wait):
		}
	}
}
