// Copyright 2026 The Govisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package govinit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SplitCommands splits a command line into commands at each "--".
// Empty commands are dropped.
func SplitCommands(args []string) [][]string {
	var cmds [][]string
	start := 0
	for i := 0; i <= len(args); i++ {
		if i == len(args) || args[i] == "--" {
			if i > start {
				cmds = append(cmds, args[start:i])
			}
			start = i + 1
		}
	}
	return cmds
}

// RegisterCommand registers one command line.  The first word is the
// command; in the argument vector it is replaced by its base name.
func RegisterCommand(reg *Registry, name string, cmd []string, env []string, quiet bool) (*Entry, error) {
	if len(cmd) == 0 || cmd[0] == "" {
		return nil, ErrNoCommand
	}
	argv := append([]string{filepath.Base(cmd[0])}, cmd[1:]...)
	return reg.Register(name, cmd[0], argv, env, quiet)
}

// RegisterArgs registers every "--" separated command in args.
func RegisterArgs(reg *Registry, args []string, env []string, quiet bool) error {
	for _, cmd := range SplitCommands(args) {
		if _, e := RegisterCommand(reg, "", cmd, env, quiet); e != nil {
			return e
		}
	}
	return nil
}

// ScanDirectory lists the executable regular files in dir (following
// symbolic links), sorted by name.
func ScanDirectory(dir string) ([]string, error) {
	names, e := readDirNames(dir)
	if e != nil {
		return nil, e
	}
	sort.Strings(names)
	var files []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		fi, e := os.Stat(path)
		if e != nil {
			return nil, errors.Wrapf(e, "stat %s", path)
		}
		if !fi.Mode().IsRegular() || fi.Mode().Perm()&0111 == 0 {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

func readDirNames(dir string) ([]string, error) {
	d, e := os.Open(dir)
	if e != nil {
		return nil, errors.Wrapf(e, "open %s", dir)
	}
	defer d.Close()
	names, e := d.Readdirnames(-1)
	if e != nil {
		return nil, errors.Wrapf(e, "scan %s", dir)
	}
	return names, nil
}

// RegisterDirectory registers every executable found by ScanDirectory,
// each run without arguments.
func RegisterDirectory(reg *Registry, dir string, env []string, quiet bool) error {
	files, e := ScanDirectory(dir)
	if e != nil {
		return e
	}
	for _, f := range files {
		if _, e := RegisterCommand(reg, "", []string{f}, env, quiet); e != nil {
			return e
		}
	}
	return nil
}

// ProcessManifest describes one process in a manifest file.
type ProcessManifest struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Quiet   *bool    `yaml:"quiet"`
}

// Manifest is the YAML form of a list of processes:
//
//	processes:
//	  - name: web
//	    command: [nginx, -g, "daemon off;"]
//	  - command: [/usr/sbin/crond, -f]
//	    quiet: true
type Manifest struct {
	Processes []ProcessManifest `yaml:"processes"`
}

// LoadManifest decodes a manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if e := dec.Decode(&m); e != nil && e != io.EOF {
		return nil, errors.Wrap(e, "bad manifest")
	}
	return &m, nil
}

// LoadManifestFile decodes the manifest in the named file.
func LoadManifestFile(path string) (*Manifest, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, errors.Wrapf(e, "open %s", path)
	}
	defer f.Close()
	m, e := LoadManifest(f)
	if e != nil {
		return nil, errors.Wrap(e, path)
	}
	return m, nil
}

// Register adds the manifest's processes to reg.  Processes that do not
// say otherwise get the default quiet setting.
func (m *Manifest) Register(reg *Registry, env []string, quiet bool) error {
	for i, p := range m.Processes {
		q := quiet
		if p.Quiet != nil {
			q = *p.Quiet
		}
		if _, e := RegisterCommand(reg, p.Name, p.Command, env, q); e != nil {
			return errors.Wrapf(e, "process %d", i+1)
		}
	}
	return nil
}

// SyslogDrainFlag is the option that puts this executable into syslog
// drain mode, and SyslogRawFlag turns on raw echo there.
const (
	SyslogDrainFlag = "--syslog-drain"
	SyslogRawFlag   = "--raw"
)

// RegisterSyslogDrain registers the syslog drain as a supervised entry
// named "syslog", running the executable at self.  Its output is never
// silenced; it is the whole point.
func RegisterSyslogDrain(reg *Registry, self, path string, raw bool, env []string) (*Entry, error) {
	args := []string{"syslog", SyslogDrainFlag, path}
	if raw {
		args = append(args, SyslogRawFlag)
	}
	return reg.Register("syslog", self, args, env, false)
}

func quoteArg(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "'" + s + "'"
	}
	return s
}

// WriteListing prints one line per entry: its name, the command, and
// the arguments, quoting arguments that contain white space.
func WriteListing(w io.Writer, reg *Registry) error {
	for _, e := range reg.Entries() {
		words := []string{e.Name + ":", e.Command}
		for _, a := range e.Args[1:] {
			words = append(words, quoteArg(a))
		}
		if _, err := fmt.Fprintln(w, strings.Join(words, " ")); err != nil {
			return err
		}
	}
	return nil
}
