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
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Visor is the supervision context.  It owns the registry, the shutdown
// token, and the diagnostic stream, and is handed both to the Supervisor
// loop and to the Relay.  Spawning a process and publishing its pid is
// done under the lock, as is reaping, so a child that exits at once can
// not be reaped before its entry knows its pid.
type Visor struct {
	Registry *Registry
	Shutdown *Shutdown
	Diag     *Diag
	Metrics  *Metrics

	lock sync.Mutex
}

// NewVisor returns a supervision context for reg.  A nil diag discards
// diagnostics (apart from the in-memory log), and nil metrics are fine.
func NewVisor(reg *Registry, diag *Diag, metrics *Metrics) *Visor {
	if diag == nil {
		diag = NewDiag(nil)
	}
	return &Visor{
		Registry: reg,
		Shutdown: NewShutdown(),
		Diag:     diag,
		Metrics:  metrics,
	}
}

// Spawner starts a process for an entry.  *Launcher is the real one.
type Spawner interface {
	Spawn(e *Entry) error
}

// Supervisor is the poll loop.  It is either running, spawning whatever
// is not alive and then sleeping, or it has seen the shutdown request,
// in which case it signals everything once and returns.
type Supervisor struct {
	visor   *Visor
	spawner Spawner
	backoff *backoff
	alive   func(pid int) bool
	kill    func(pid int, sig unix.Signal) error
}

// NewSupervisor returns a Supervisor for v that starts processes with sp.
func NewSupervisor(v *Visor, sp Spawner) *Supervisor {
	return &Supervisor{
		visor:   v,
		spawner: sp,
		backoff: newBackoff(),
		alive:   Alive,
		kill:    unix.Kill,
	}
}

// Interval returns the current poll interval.
func (s *Supervisor) Interval() time.Duration {
	return s.backoff.Interval()
}

// Run seals the registry and supervises until shutdown is requested.  It
// returns ErrNoProcesses, without doing anything, if there is nothing to
// supervise.
func (s *Supervisor) Run() error {
	reg := s.visor.Registry
	reg.Seal()
	if reg.Len() == 0 {
		return ErrNoProcesses
	}

	s.visor.Diag.Printf("supervising %d processes", reg.Len())
	for !s.visor.Shutdown.Requested() {
		s.tick()
		// An early wake means shutdown; leave the interval alone.
		if s.sleep(s.backoff.Interval()) {
			s.visor.Metrics.Interval(s.backoff.Advance())
		}
	}
	s.terminate()
	return nil
}

// tick spawns every entry that has no live process.  Spawn failures are
// logged by the spawner and retried on the next tick.
func (s *Supervisor) tick() {
	for _, e := range s.visor.Registry.Entries() {
		if s.visor.Shutdown.Requested() {
			return
		}
		s.visor.lock.Lock()
		if pid := e.Pid(); pid == 0 || !s.alive(pid) {
			s.spawner.Spawn(e)
		}
		s.visor.lock.Unlock()
	}
}

func (s *Supervisor) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.visor.Shutdown.Done():
		return false
	}
}

// terminate sends SIGTERM, once, to every entry believed to be running.
// It neither waits for them to exit nor checks on them again.
func (s *Supervisor) terminate() {
	for _, e := range s.visor.Registry.Entries() {
		pid := e.Pid()
		if pid == 0 {
			continue
		}
		if err := s.kill(pid, unix.SIGTERM); err != nil {
			s.visor.Diag.Printf("SIGTERM %s pid %d failed: %v",
				e.Name, pid, err)
			continue
		}
		s.visor.Diag.Printf("sent SIGTERM to %s pid %d", e.Name, pid)
	}
	s.visor.Diag.Printf("shutting down")
}
