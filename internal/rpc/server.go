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
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"capcheck/internal/log"
)

// Handler answers one Request with the Outcome the driver should act on
// (spec §4.8: "the driver blocks on it and acts accordingly").
type Handler func(Request) Outcome

// Server listens on a Unix stream socket, per spec §6 ("the socket path is
// passed to the subordinate via environment, its value chosen by the
// supervisor at startup"). Each accepted connection carries exactly one
// request and one response (spec §4.8); connections are never reused.
type Server struct {
	listener net.Listener
	handler  Handler
}

// Listen removes any stale socket file at path and starts listening.
func Listen(path string, handler Handler) (*Server, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "removing stale socket %s", path)
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", path)
	}
	// The socket carries build-event data (source paths, build-script
	// output) for every subordinate process on the machine; restrict it
	// to the owner rather than leaving it at the umask-derived default.
	if err := unix.Chmod(path, 0600); err != nil {
		l.Close()
		return nil, errors.Wrapf(err, "restricting permissions on %s", path)
	}
	return &Server{listener: l, handler: handler}, nil
}

// Addr returns the socket path being listened on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until the listener is closed, handling each
// synchronously in its own goroutine (spec §5: "each RPC connection is
// short-lived and synchronous").
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Wrap(err, "accepting rpc connection")
		}
		connID := uuid.New().String()
		go s.handleOne(connID, conn)
	}
}

func (s *Server) handleOne(connID string, conn net.Conn) {
	defer conn.Close()

	req, err := Decode(conn)
	if err != nil {
		log.WithField("conn", connID).Warnf("rpc: decode failed: %v", err)
		return
	}
	log.WithField("conn", connID).WithField("kind", string(req.Kind)).Debugf("rpc: request received")

	outcome := s.handler(req)
	if err := EncodeOutcome(conn, outcome); err != nil {
		log.WithField("conn", connID).Warnf("rpc: writing outcome failed: %v", err)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}
