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
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// ExecHelperName is argv[0] for a process started by the Launcher.
	// The process is this executable, which must check for it with
	// IsExecHelper before doing anything else.
	ExecHelperName = "govinit:exec"

	// ExitExecFailed is the exit status of a spawned process that could
	// not exec its command.  It is the status a C program gets from
	// exit(-1), which ordinary programs rarely choose.
	ExitExecFailed = 255
)

type startFunc func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error)

// Launcher starts processes for registry entries.
//
// The Go runtime gives us no way to run code between fork and exec, and
// we need some: descriptor redirection, and a PATH search whose failures
// must land in the child rather than in the supervisor.  So the Launcher
// starts this same executable in exec helper mode, and the helper sets
// up its descriptors and execs the real command.  See RunExecHelper.
type Launcher struct {
	self    string
	diag    *Diag
	metrics *Metrics
	start   startFunc
}

// NewLauncher returns a Launcher that re-enters the executable at self.
// An empty self means os.Executable().
func NewLauncher(self string, diag *Diag, metrics *Metrics) (*Launcher, error) {
	if self == "" {
		exe, e := os.Executable()
		if e != nil {
			return nil, errors.Wrap(e, "cannot locate own executable")
		}
		self = exe
	}
	return &Launcher{
		self:    self,
		diag:    diag,
		metrics: metrics,
		start:   os.StartProcess,
	}, nil
}

// helperArgs is the argument vector handed to the exec helper:
// the marker, a mode word, the command, then the command's own argv.
func helperArgs(spec *ProcessSpec) []string {
	mode := "-"
	if spec.Quiet {
		mode = "q"
	}
	args := make([]string, 0, len(spec.Args)+3)
	args = append(args, ExecHelperName, mode, spec.Command)
	return append(args, spec.Args...)
}

// Spawn starts a process for e and records its pid.  An error here means
// no process was created; the entry is left not running.  Errors in
// finding or executing the command happen later, inside the new process,
// and show up only as its exit status.
func (l *Launcher) Spawn(e *Entry) error {
	p, err := l.start(l.self, helperArgs(&e.ProcessSpec), &os.ProcAttr{
		Env:   e.Env,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		l.metrics.SpawnFailed(e.Name)
		l.diag.Printf("spawn %s failed: %v", e.Name, err)
		return errors.Wrapf(err, "spawn %s", e.Name)
	}
	e.started(p.Pid)
	// We reap with wait4 ourselves; the os.Process is of no further use.
	p.Release()
	l.metrics.Spawned(e.Name)
	l.diag.Printf("exec %s pid %d `%s`", e.Name, e.Pid(), e.Command)
	return nil
}

// Alive probes pid with signal 0.  It does not reap.  A pid we are not
// allowed to signal still exists, so EPERM counts as alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	e := unix.Kill(pid, 0)
	return e == nil || e == unix.EPERM
}
