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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Relay turns signals into supervisor state changes.  SIGCHLD reaps
// children, clearing the pid of the entry that owned each one; SIGINT and
// SIGTERM trigger the shutdown token and nothing more.  Anything heavier
// is left to the Supervisor loop.
type Relay struct {
	visor *Visor
	wait  func(ws *unix.WaitStatus) (int, error)
	chld  chan os.Signal
	term  chan os.Signal
	done  chan struct{}
	wg    sync.WaitGroup
}

func wait4Any(ws *unix.WaitStatus) (int, error) {
	return unix.Wait4(-1, ws, unix.WNOHANG, nil)
}

// NewRelay returns a Relay for v.  Nothing happens until Install.
func NewRelay(v *Visor) *Relay {
	return &Relay{
		visor: v,
		wait:  wait4Any,
		chld:  make(chan os.Signal, 16),
		term:  make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
}

// Install registers for the signals and starts relaying them.  Unless we
// are pid 1 we also ask to become a child subreaper, so orphans of our
// children are reparented to us.  Supervision must not start if this
// fails.
func (r *Relay) Install() error {
	if e := becomeSubreaper(); e != nil {
		return errors.Wrap(e, "cannot become child subreaper")
	}
	signal.Notify(r.chld, unix.SIGCHLD)
	signal.Notify(r.term, unix.SIGINT, unix.SIGTERM)
	r.wg.Add(1)
	go r.run()
	return nil
}

// Stop deregisters the signals and waits for the relay to finish.
func (r *Relay) Stop() {
	signal.Stop(r.chld)
	signal.Stop(r.term)
	close(r.done)
	r.wg.Wait()
}

func (r *Relay) run() {
	defer r.wg.Done()
	// Children may have exited before we started listening.
	r.Reap()
	for {
		select {
		case <-r.chld:
			r.Reap()
		case sig := <-r.term:
			r.Terminate(sig)
		case <-r.done:
			return
		}
	}
}

// Reap collects every child that has exited, and returns how many it
// found.  SIGCHLD does not tell us which child, and several exits can
// arrive as one signal, so it loops until wait4 has nothing more.
// A pid that belongs to no entry (an orphan) is reaped and otherwise
// ignored.
func (r *Relay) Reap() int {
	n := 0
	for {
		var ws unix.WaitStatus
		r.visor.lock.Lock()
		pid, err := r.wait(&ws)
		if pid > 0 {
			n++
			r.reaped(pid, ws)
		}
		r.visor.lock.Unlock()

		switch {
		case err == unix.EINTR:
		case err != nil, pid <= 0:
			return n
		}
	}
}

func (r *Relay) reaped(pid int, ws unix.WaitStatus) {
	e := r.visor.Registry.FindByPid(pid)
	if e == nil || !e.reaped(pid, ws) {
		r.visor.Metrics.OrphanReaped()
		return
	}
	r.visor.Metrics.Reaped(e.Name)
	r.visor.Diag.Printf("reaped %s pid %d (%s)", e.Name, pid, DescribeStatus(ws))
}

// Terminate records a termination request.  Repeats, such as a second
// SIGTERM sent to the whole process group, are ignored.
func (r *Relay) Terminate(sig os.Signal) {
	if r.visor.Shutdown.Trigger(sig) {
		r.visor.Diag.Printf("received %s", signalName(sig))
	}
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}

// DescribeStatus renders a wait status for humans.
func DescribeStatus(ws unix.WaitStatus) string {
	switch {
	case ws.Exited():
		return fmt.Sprintf("exited %d", ws.ExitStatus())
	case ws.Signaled():
		s := "killed by " + signalName(ws.Signal())
		if ws.CoreDump() {
			s += ", core dumped"
		}
		return s
	case ws.Stopped():
		return "stopped by " + signalName(ws.StopSignal())
	}
	return fmt.Sprintf("status %#x", uint32(ws))
}
