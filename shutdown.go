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
	"sync"

	"go.uber.org/atomic"
)

// Shutdown is the one cancellation token in the supervisor.  The flag is
// set by the termination handler and read by the loop; the channel lets
// a sleeping loop wake early.
type Shutdown struct {
	flag atomic.Bool
	sig  atomic.String
	ch   chan struct{}
	once sync.Once
}

// NewShutdown returns an untriggered Shutdown.
func NewShutdown() *Shutdown {
	return &Shutdown{ch: make(chan struct{})}
}

// Trigger requests shutdown.  Only the first call has any effect, and
// only it returns true.
func (s *Shutdown) Trigger(sig os.Signal) bool {
	fired := false
	s.once.Do(func() {
		if sig != nil {
			s.sig.Store(sig.String())
		}
		s.flag.Store(true)
		close(s.ch)
		fired = true
	})
	return fired
}

// Requested reports whether Trigger has been called.
func (s *Shutdown) Requested() bool {
	return s.flag.Load()
}

// Signal names the signal that triggered shutdown, if any.
func (s *Shutdown) Signal() string {
	return s.sig.Load()
}

// Done is closed when shutdown is requested.
func (s *Shutdown) Done() <-chan struct{} {
	return s.ch
}
