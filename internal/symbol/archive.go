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

package symbol

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
)

// IsArchive reports whether path names an archive container of object
// files (".a" or ".rlib"), rather than a single unlinked object.
//
// The original tool this is modeled on checked the literal extension
// string ".a" (with a leading dot) against the already-dot-stripped
// extension it got back from its own path library, so archives ending in
// ".a" could never match. filepath.Ext always returns the extension with
// its leading dot, so comparing against ".a" here is correct and the bug
// cannot be reproduced in this port.
func IsArchive(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".a" || ext == ".rlib"
}

// WalkArchive streams each entry of an ar archive (.a/.rlib) to fn. A
// header or data read failure ends the walk without an error: the entries
// before it have already been passed to fn, the ones after it are not
// visited. An error returned by fn is propagated to the caller unchanged.
func WalkArchive(path string, fn func(entryName string, data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := ar.NewReader(f)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// A header read failure leaves the reader's position wherever
			// the failed read stopped, with no way to resynchronize to the
			// next entry boundary: stop rather than loop on the same error.
			return nil
		}

		name := strings.TrimRight(header.Name, "/ ")
		buf := make([]byte, header.Size)
		if _, err := io.ReadFull(reader, buf); err != nil {
			return nil
		}
		if err := fn(name, buf); err != nil {
			return err
		}
	}
}
