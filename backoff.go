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
	"time"
)

const (
	backoffStart    = 100 * time.Millisecond
	backoffFineStep = 100 * time.Millisecond
	backoffFineMax  = time.Second
	backoffStep     = time.Second
	backoffMax      = 10 * time.Second
)

// backoff is the supervisor's poll interval.  It starts at 100ms and
// climbs in 100ms steps to 1s, then in 1s steps to 10s, where it stays.
// It never comes back down: a system that has been quiet for a while is
// polled less often, one that is crash looping at startup is polled
// often.
type backoff struct {
	d time.Duration
}

func newBackoff() *backoff {
	return &backoff{d: backoffStart}
}

func (b *backoff) Interval() time.Duration {
	return b.d
}

// Advance moves to the next step, and returns the new interval.
func (b *backoff) Advance() time.Duration {
	switch {
	case b.d < backoffFineMax:
		b.d += backoffFineStep
		if b.d > backoffFineMax {
			b.d = backoffFineMax
		}
	case b.d < backoffMax:
		b.d += backoffStep
		if b.d > backoffMax {
			b.d = backoffMax
		}
	}
	return b.d
}
