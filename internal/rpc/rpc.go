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

// Package rpc is the control plane (spec §4.8) a companion wrapper around
// the compiler uses to tell the supervisor about compile lifecycle events:
// a length-prefixed JSON request over a local stream socket, one message
// per connection, with a small Outcome response telling the driver whether
// to continue.
package rpc

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Kind discriminates the Request sum type (spec §4.8).
type Kind string

const (
	KindCrateUsesUnsafe     Kind = "crate_uses_unsafe"
	KindRustcStarted        Kind = "rustc_started"
	KindRustcComplete       Kind = "rustc_complete"
	KindLinkerInvoked       Kind = "linker_invoked"
	KindBuildScriptComplete Kind = "build_script_complete"
)

// LinkInfo is opaque to the core (spec §4.8, SPEC_FULL supplemented
// features): carried through JSON round-trips untouched.
type LinkInfo struct {
	Linker string   `json:"linker"`
	Args   []string `json:"args"`
}

// SandboxConfig is likewise opaque to the core.
type SandboxConfig struct {
	AllowNetwork  bool     `json:"allow_network"`
	WritableRoots []string `json:"writable_roots"`
}

// Request is one RPC message. Exactly one of the Kind-specific fields is
// populated, selected by Kind; this mirrors the original's sum-type
// Request enum in a JSON-friendly tagged-union shape.
type Request struct {
	Kind Kind `json:"kind"`

	// KindCrateUsesUnsafe
	CrateName string `json:"crate_name,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	StartLine int    `json:"start_line,omitempty"`

	// KindRustcComplete
	SourcePaths []string `json:"source_paths,omitempty"`

	// KindLinkerInvoked
	LinkInfo *LinkInfo `json:"link_info,omitempty"`

	// KindBuildScriptComplete
	ExitCode      int            `json:"exit_code,omitempty"`
	Stdout        string         `json:"stdout,omitempty"`
	Stderr        string         `json:"stderr,omitempty"`
	PackageName   string         `json:"package_name,omitempty"`
	SandboxConfig *SandboxConfig `json:"sandbox_config,omitempty"`
	BuildScript   string         `json:"build_script,omitempty"`
}

// CrateUsesUnsafe builds a KindCrateUsesUnsafe request.
func CrateUsesUnsafe(crateName, fileName string, startLine int) Request {
	return Request{Kind: KindCrateUsesUnsafe, CrateName: crateName, FileName: fileName, StartLine: startLine}
}

// RustcStarted builds a KindRustcStarted request.
func RustcStarted(crateName string) Request {
	return Request{Kind: KindRustcStarted, CrateName: crateName}
}

// RustcComplete builds a KindRustcComplete request.
func RustcComplete(crateName string, sourcePaths []string) Request {
	return Request{Kind: KindRustcComplete, CrateName: crateName, SourcePaths: sourcePaths}
}

// LinkerInvokedRequest builds a KindLinkerInvoked request.
func LinkerInvokedRequest(info LinkInfo) Request {
	return Request{Kind: KindLinkerInvoked, LinkInfo: &info}
}

// BuildScriptComplete builds a KindBuildScriptComplete request.
func BuildScriptComplete(exitCode int, stdout, stderr, packageName string, sandbox SandboxConfig, buildScript string) Request {
	return Request{
		Kind:          KindBuildScriptComplete,
		ExitCode:      exitCode,
		Stdout:        stdout,
		Stderr:        stderr,
		PackageName:   packageName,
		SandboxConfig: &sandbox,
		BuildScript:   buildScript,
	}
}

// Outcome is the RPC response: a sum over {Continue, GiveUp} (spec §4.8).
// SPEC_FULL's supplemented-features note keeps this a strict two-variant
// sum rather than adding a speculative third state.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeGiveUp   Outcome = "give_up"
)

// byteOrder is the "little-endian unsigned machine-word length" framing
// the spec calls for; a 64-bit word matches the native word size on every
// platform this tool targets.
var byteOrder = binary.LittleEndian

// Encode writes req to w as a length-prefixed JSON payload: an 8-byte
// little-endian length followed by that many bytes of JSON.
func Encode(w io.Writer, req Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshaling rpc request")
	}
	var lenBuf [8]byte
	byteOrder.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "writing rpc length prefix")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "writing rpc payload")
	}
	return nil
}

// Decode reads one length-prefixed JSON request from r. RPC decode failures
// include the raw message text in the returned error (spec §7).
func Decode(r io.Reader) (Request, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Request{}, errors.Wrap(err, "reading rpc length prefix")
	}
	n := byteOrder.Uint64(lenBuf[:])

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Request{}, errors.Wrap(err, "reading rpc payload")
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, errors.Wrapf(err, "decoding rpc payload %q", string(payload))
	}
	return req, nil
}

// EncodeOutcome writes outcome to w in the same length-prefixed JSON shape
// as a Request, so the driver can read its response with a symmetric codec.
func EncodeOutcome(w io.Writer, outcome Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return errors.Wrap(err, "marshaling rpc outcome")
	}
	var lenBuf [8]byte
	byteOrder.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "writing rpc outcome length prefix")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "writing rpc outcome payload")
	}
	return nil
}

// DecodeOutcome reads one length-prefixed Outcome from r.
func DecodeOutcome(r io.Reader) (Outcome, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", errors.Wrap(err, "reading rpc outcome length prefix")
	}
	n := byteOrder.Uint64(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", errors.Wrap(err, "reading rpc outcome payload")
	}
	var outcome Outcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return "", errors.Wrapf(err, "decoding rpc outcome %q", string(payload))
	}
	return outcome, nil
}
