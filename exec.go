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
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultPath is searched when PATH is not set at all.
const DefaultPath = "/usr/local/bin:/bin:/usr/bin"

// ErrNotInPath means every PATH directory was tried without success.
var ErrNotInPath = errors.New("not found in PATH")

// ExecError describes why a command could not be executed.
type ExecError struct {
	Command string // Command, or the candidate path that failed
	Err     error
	Denied  bool // Some PATH candidate failed with EACCES
}

func (e *ExecError) Error() string {
	if e.Err == ErrNotInPath && e.Denied {
		return e.Command + ": " + e.Err.Error() +
			" (permission denied on at least one candidate)"
	}
	return e.Command + ": " + e.Err.Error()
}

type execFunc func(argv0 string, argv []string, envv []string) error

// execCommand execs command, searching path for it when it has no slash.
// The exec function does not return when it succeeds, so any return from
// here is an *ExecError.  (A fake exec may return nil, in which case so
// do we.)
//
// Like execvp, ENOENT, ENOTDIR and EACCES move the search along to the
// next directory; anything else stops it immediately.
func execCommand(command string, argv, env []string, path string, exec execFunc) error {
	if strings.Contains(command, "/") {
		if e := exec(command, argv, env); e != nil {
			return &ExecError{Command: command, Err: e}
		}
		return nil
	}

	denied := false
	for _, dir := range strings.Split(path, ":") {
		candidate := command
		if dir != "" {
			candidate = strings.TrimSuffix(dir, "/") + "/" + command
		}
		switch e := exec(candidate, argv, env); e {
		case nil:
			return nil
		case unix.ENOENT, unix.ENOTDIR:
		case unix.EACCES:
			denied = true
		default:
			return &ExecError{Command: candidate, Err: e}
		}
	}
	return &ExecError{Command: command, Err: ErrNotInPath, Denied: denied}
}

// IsExecHelper reports whether args (normally os.Args) were produced by
// the Launcher.
func IsExecHelper(args []string) bool {
	return len(args) >= 3 && args[0] == ExecHelperName
}

// RunExecHelper is the body of a process started by the Launcher.  It
// points stdin at /dev/null, and for quiet specs stdout and stderr as
// well, keeping a private close-on-exec copy of the original stderr so
// that a failure to launch can still be reported.  Then it execs the
// command.  It returns only on failure, with the exit status to use.
func RunExecHelper(args []string) int {
	quiet := args[1] == "q"
	command := args[2]
	argv := args[3:]
	if len(argv) == 0 {
		argv = []string{filepath.Base(command)}
	}

	out, e := redirect(quiet)
	logger := log.New(out, "", DiagFlags)
	if e != nil {
		logger.Printf("%s: redirecting descriptors: %v", argv[0], e)
		return ExitExecFailed
	}

	path, ok := os.LookupEnv("PATH")
	if !ok {
		path = DefaultPath
	}
	e = execCommand(command, argv, os.Environ(), path, unix.Exec)
	logger.Printf("%v", e)
	return ExitExecFailed
}

// redirect applies the descriptor policy and returns where launch
// failures should be written.
func redirect(quiet bool) (*os.File, error) {
	null, e := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if e != nil {
		return os.Stderr, e
	}
	nfd := int(null.Fd())
	if nfd > 2 {
		defer null.Close()
	}

	if e = dupTo(nfd, 0); e != nil {
		return os.Stderr, e
	}
	if !quiet {
		return os.Stderr, nil
	}

	fd, e := unix.FcntlInt(os.Stderr.Fd(), unix.F_DUPFD_CLOEXEC, 3)
	if e != nil {
		return os.Stderr, e
	}
	out := os.NewFile(uintptr(fd), "stderr")
	for _, target := range []int{1, 2} {
		if e = dupTo(nfd, target); e != nil {
			return out, e
		}
	}
	return out, nil
}
