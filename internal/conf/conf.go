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

// Package conf loads and hot-reloads the TOML configuration file that
// declares, per crate, the permissions it is granted and any user overlays
// on the built-in permission table (spec §2, §4.2). It also supplies the
// two concrete collaborators the core treats as "interfaces consumed from
// outside" (spec §2): the crate resolver and the permission grants lookup.
package conf

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"capcheck/internal/log"
	"capcheck/internal/names"
	"capcheck/internal/permission"
)

// PermOverlay is the TOML shape for one user-declared permission rule,
// merged into the built-in table by permission.NewTable.
type PermOverlay struct {
	Include [][]string `toml:"include"`
	Exclude [][]string `toml:"exclude"`
}

// CrateConfig is a single crate's declared permission grants.
type CrateConfig struct {
	Name        string   `toml:"name" validate:"required"`
	AllowApis   []string `toml:"allow_apis"`
	AllowUnsafe bool     `toml:"allow_unsafe"`
}

// Sandbox controls the build-script sandbox (spec §4.8 BuildScriptComplete).
type Sandbox struct {
	AllowNetwork  bool     `toml:"allow_network"`
	WritableRoots []string `toml:"writable_roots"`
}

// Config is the root of the TOML configuration file (cackle.toml's Go
// counterpart, per SPEC_FULL's Configuration section).
type Config struct {
	SocketPath  string                 `toml:"socket_path" validate:"required"`
	Crates      []CrateConfig          `toml:"crate"`
	Permissions map[string]PermOverlay `toml:"permission"`
	Sandbox     Sandbox                `toml:"sandbox"`
}

var validate = validator.New()

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrapf(err, "validating config %s", path)
	}
	return &cfg, nil
}

// PermissionTable builds the permission.Table this config's overlays
// produce, merged over the built-in set (spec §4.2).
func (c *Config) PermissionTable() permission.Table {
	overlays := make(map[permission.Name]permission.Config, len(c.Permissions))
	for name, o := range c.Permissions {
		overlays[permission.Name(name)] = permission.Config{
			Include: toNames(o.Include),
			Exclude: toNames(o.Exclude),
		}
	}
	return permission.NewTable(overlays)
}

func toNames(paths [][]string) []names.Name {
	out := make([]names.Name, len(paths))
	for i, p := range paths {
		out[i] = names.Name{Parts: p}
	}
	return out
}

// Store holds the currently-active Config behind a mutex, since both the UI
// thread (editing) and the main thread (policy evaluation) read it
// concurrently (spec §5).
type Store struct {
	mu      sync.RWMutex
	path    string
	config  *Config
	watcher *fsnotify.Watcher
}

// NewStore loads path once and wraps the result for concurrent access and
// hot-reload.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, config: cfg}, nil
}

// Get returns the currently-active Config.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Watch starts an fsnotify watch on the config file, re-loading and
// swapping the active Config whenever it changes on disk. Errors while
// re-loading are logged and the previous Config is kept active, so a
// transiently invalid edit (e.g. mid-save) never drops the last-known-good
// configuration. Call Close to stop watching.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "starting config watcher")
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return errors.Wrapf(err, "watching %s", dir)
	}
	s.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(s.path)
				if err != nil {
					log.Warnf("config: reload %s failed, keeping previous config: %v", s.path, err)
					continue
				}
				s.mu.Lock()
				s.config = cfg
				s.mu.Unlock()
				log.Infof("config: reloaded %s", s.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warnf("config: watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the config watcher, if one was started.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
