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
	"io"
	"log"
	"strings"
	"sync"
)

// DiagFlags are the log.Logger flags used on the diagnostic stream.
const DiagFlags = log.LstdFlags | log.Lmicroseconds

// Diag is the supervisor's diagnostic stream.  Lines written to it are
// fanned out to every destination logger (each with its own prefix and
// flags), and retained in a Log for the status API.
type Diag struct {
	logger *log.Logger
	ring   *Log
	dests  []*log.Logger
	lock   sync.Mutex
}

// Write implements io.Writer for the embedded log.Logger.  It expects
// whole lines, which is what log.Logger delivers.
func (d *Diag) Write(b []byte) (int, error) {
	lines := strings.Split(strings.Trim(string(b), "\n"), "\n")
	d.lock.Lock()
	for _, line := range lines {
		for _, dest := range d.dests {
			dest.Println(line)
		}
	}
	d.lock.Unlock()
	d.ring.Write(b)
	return len(b), nil
}

// AddWriter adds a destination.  Lines are written to w through a logger
// using the given flags.
func (d *Diag) AddWriter(w io.Writer, flags int) {
	d.lock.Lock()
	d.dests = append(d.dests, log.New(w, "", flags))
	d.lock.Unlock()
}

// Logger returns the logger that feeds the stream, for code such as
// http.Server that wants a *log.Logger of its own.
func (d *Diag) Logger() *log.Logger {
	return d.logger
}

// Log returns the in-memory copy of the stream.
func (d *Diag) Log() *Log {
	return d.ring
}

// Printf logs one line.
func (d *Diag) Printf(format string, v ...interface{}) {
	d.logger.Printf(format, v...)
}

// NewDiag returns a diagnostic stream writing timestamped lines to w.  If
// w is nil the stream only feeds the in-memory Log (plus anything added
// with AddWriter later).
func NewDiag(w io.Writer) *Diag {
	d := &Diag{ring: NewLog(MaxLogRecords)}
	d.logger = log.New(d, "", 0)
	if w != nil {
		d.AddWriter(w, DiagFlags)
	}
	return d
}
