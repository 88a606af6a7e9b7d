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
	"strings"
	"sync"
	"time"
)

const (
	// MaxLogRecords is how many diagnostic lines are retained in memory.
	MaxLogRecords = 1000
)

// LogRecord is one retained diagnostic line.
type LogRecord struct {
	Id   int64     `json:"id,string"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Log is a fixed size ring of diagnostic lines.  It implements io.Writer,
// so it can sit underneath a log.Logger, and it supports waiting for new
// lines so that the status API can long-poll it.
type Log struct {
	records    []LogRecord
	numRecords int
	id         int64
	cvs        map[*sync.Cond]bool
	mx         sync.Mutex
}

// Write stores each newline separated line of b as its own record.
func (l *Log) Write(b []byte) (int, error) {
	str := strings.Trim(string(b), "\n")
	now := time.Now()
	l.mx.Lock()
	for _, line := range strings.Split(str, "\n") {
		idx := l.numRecords % len(l.records)
		l.id++
		l.records[idx] = LogRecord{Id: l.id, Time: now, Text: line}
		// numRecords keeps counting past the ring size; it is the
		// index of the next slot, modulo the size.
		l.numRecords++
	}
	for cv := range l.cvs {
		cv.Broadcast()
	}
	l.mx.Unlock()
	return len(b), nil
}

// Records returns the retained records, oldest first, and an id that
// changes whenever a line is added.  If last equals the current id the
// log has not changed, and nil is returned.
func (l *Log) Records(last int64) ([]LogRecord, int64) {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.id == last {
		return nil, last
	}
	cnt := l.numRecords
	if cnt > len(l.records) {
		cnt = len(l.records)
	}
	recs := make([]LogRecord, 0, cnt)
	for i := l.numRecords - cnt; i < l.numRecords; i++ {
		recs = append(recs, l.records[i%len(l.records)])
	}
	return recs, l.id
}

// Watch waits until the id moves past last, or until expire elapses.
// It returns the id current at that point.  An expire of zero polls.
func (l *Log) Watch(last int64, expire time.Duration) int64 {
	expired := false
	var timer *time.Timer
	cv := sync.NewCond(&l.mx)
	if expire > 0 {
		timer = time.AfterFunc(expire, func() {
			l.mx.Lock()
			expired = true
			cv.Broadcast()
			l.mx.Unlock()
		})
	} else {
		expired = true
	}

	l.mx.Lock()
	l.cvs[cv] = true
	for l.id == last && !expired {
		cv.Wait()
	}
	delete(l.cvs, cv)
	last = l.id
	l.mx.Unlock()
	if timer != nil {
		timer.Stop()
	}
	return last
}

// NewLog returns an empty Log holding up to max records.  A max of zero
// means MaxLogRecords.
func NewLog(max int) *Log {
	if max <= 0 {
		max = MaxLogRecords
	}
	return &Log{
		records: make([]LogRecord, max),
		// Start from the clock so that ids from a restarted
		// process do not collide with ones a client has cached.
		id:  time.Now().UnixNano(),
		cvs: make(map[*sync.Cond]bool),
	}
}
