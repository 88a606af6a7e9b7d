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
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// ProcessSpec describes a single supervised command.  It is not changed
// once the owning Registry is sealed.
type ProcessSpec struct {
	Name    string   // Display name, unique within the registry
	Command string   // Path, or a bare name to be found in $PATH
	Args    []string // Argument vector; Args[0] is the display token
	Env     []string // Shared by every spec built from the same environment
	Quiet   bool     // Send stdout and stderr to /dev/null
}

// Entry is a ProcessSpec plus the runtime state that the Supervisor and
// the Relay share.  All runtime fields are single words updated
// atomically, so an Entry needs no lock.
type Entry struct {
	ProcessSpec

	base    string
	ordinal int

	pid       atomic.Int32
	spawns    atomic.Int64
	reaps     atomic.Int64
	status    atomic.Uint32
	hasStatus atomic.Bool
	stamp     atomic.Int64
}

// Pid returns the pid of the running process, or 0 if not running.
func (e *Entry) Pid() int {
	return int(e.pid.Load())
}

// Running is true while the entry has a pid that has not been reaped.
func (e *Entry) Running() bool {
	return e.pid.Load() != 0
}

// Spawns returns how many processes have been started for the entry.
func (e *Entry) Spawns() int64 {
	return e.spawns.Load()
}

// Reaps returns how many of those processes have been reaped.
func (e *Entry) Reaps() int64 {
	return e.reaps.Load()
}

// LastStatus returns the wait status of the most recently reaped process.
// The second value is false if nothing has been reaped yet.
func (e *Entry) LastStatus() (unix.WaitStatus, bool) {
	if !e.hasStatus.Load() {
		return 0, false
	}
	return unix.WaitStatus(e.status.Load()), true
}

// Since returns the time of the last spawn or reap.
func (e *Entry) Since() time.Time {
	return time.Unix(0, e.stamp.Load())
}

// started records a successful spawn.  Only the Launcher calls this.
func (e *Entry) started(pid int) {
	e.pid.Store(int32(pid))
	e.spawns.Inc()
	e.stamp.Store(time.Now().UnixNano())
}

// reaped clears the pid, but only if it still refers to the process that
// was reaped.  Only the Relay calls this.
func (e *Entry) reaped(pid int, ws unix.WaitStatus) bool {
	if !e.pid.CAS(int32(pid), 0) {
		return false
	}
	e.status.Store(uint32(ws))
	e.hasStatus.Store(true)
	e.reaps.Inc()
	e.stamp.Store(time.Now().UnixNano())
	return true
}

// Registry is the ordered list of supervised entries.  Entries are added
// during startup, then the registry is sealed and never changes shape
// again; only the runtime fields inside each Entry move after that.
type Registry struct {
	entries []*Entry
	groups  map[string]int
	sealed  bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]int)}
}

// Register adds a process to the registry.  The name hint, or failing
// that the base name of the command, determines the display name.  Specs
// whose names collide (ignoring case) are numbered in registration order,
// starting at 1; the numbers are fixed here, and become visible in the
// name when the registry is sealed.  The env slice is retained, not
// copied.
func (r *Registry) Register(hint, command string, args, env []string, quiet bool) (*Entry, error) {
	if r.sealed {
		return nil, ErrRegistrySealed
	}
	if command == "" {
		return nil, ErrNoCommand
	}
	base := hint
	if base == "" {
		base = filepath.Base(command)
	}
	if len(args) == 0 {
		args = []string{filepath.Base(command)}
	}
	key := strings.ToLower(base)
	r.groups[key]++

	e := &Entry{
		ProcessSpec: ProcessSpec{
			Name:    base,
			Command: command,
			Args:    append([]string{}, args...),
			Env:     env,
			Quiet:   quiet,
		},
		base:    base,
		ordinal: r.groups[key],
	}
	r.entries = append(r.entries, e)
	return e, nil
}

// Seal fixes the registry, assigning final display names.  It is safe
// to call more than once.
func (r *Registry) Seal() {
	if r.sealed {
		return
	}
	for _, e := range r.entries {
		if r.groups[strings.ToLower(e.base)] > 1 {
			e.Name = e.base + "/" + strconv.Itoa(e.ordinal)
		}
	}
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Entries returns the entries in registration order.  Callers must not
// modify the returned slice.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// FindByPid returns the entry currently running pid, or nil.  This is a
// linear scan; registries hold tens of entries, not thousands.
func (r *Registry) FindByPid(pid int) *Entry {
	if pid <= 0 {
		return nil
	}
	for _, e := range r.entries {
		if e.Pid() == pid {
			return e
		}
	}
	return nil
}

// Find returns the entry with the given display name, or nil.
func (r *Registry) Find(name string) *Entry {
	for _, e := range r.entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}
