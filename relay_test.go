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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"
)

type waitResult struct {
	pid int
	ws  unix.WaitStatus
	err error
}

// scriptedWait plays back wait4 results, then reports no more children.
func scriptedWait(results ...waitResult) func(*unix.WaitStatus) (int, error) {
	return func(ws *unix.WaitStatus) (int, error) {
		if len(results) == 0 {
			return -1, unix.ECHILD
		}
		r := results[0]
		results = results[1:]
		*ws = r.ws
		return r.pid, r.err
	}
}

func TestRelayReap(t *testing.T) {
	Convey("Given a relay with two running entries", t, func() {
		reg := NewRegistry()
		a, _ := reg.Register("", "a", nil, nil, false)
		b, _ := reg.Register("", "b", nil, nil, false)
		reg.Seal()
		a.started(42)
		b.started(43)
		v := newTestVisor(t, reg)
		r := NewRelay(v)

		Convey("Every exited child is reaped in one pass", func() {
			r.wait = scriptedWait(
				waitResult{pid: 42, ws: unix.WaitStatus(7 << 8)},
				waitResult{pid: 43, ws: unix.WaitStatus(unix.SIGKILL)},
			)
			So(r.Reap(), ShouldEqual, 2)
			So(a.Running(), ShouldBeFalse)
			So(b.Running(), ShouldBeFalse)
			ws, _ := a.LastStatus()
			So(ws.ExitStatus(), ShouldEqual, 7)
			So(logged(v, "reaped a pid 42 (exited 7)"), ShouldBeTrue)
			So(logged(v, "reaped b pid 43 (killed by SIGKILL)"), ShouldBeTrue)
			So(testutil.ToFloat64(v.Metrics.reaps.WithLabelValues("a")), ShouldEqual, 1)
		})

		Convey("Orphans are reaped without touching any entry", func() {
			r.wait = scriptedWait(waitResult{pid: 99})
			So(r.Reap(), ShouldEqual, 1)
			So(a.Pid(), ShouldEqual, 42)
			So(b.Pid(), ShouldEqual, 43)
			So(a.Reaps(), ShouldEqual, 0)
			So(testutil.ToFloat64(v.Metrics.orphans), ShouldEqual, 1)
		})

		Convey("Interrupted waits are retried", func() {
			r.wait = scriptedWait(
				waitResult{pid: -1, err: unix.EINTR},
				waitResult{pid: 43},
			)
			So(r.Reap(), ShouldEqual, 1)
			So(b.Running(), ShouldBeFalse)
		})

		Convey("Nothing to reap returns at once", func() {
			r.wait = scriptedWait(waitResult{pid: 0})
			So(r.Reap(), ShouldEqual, 0)
			So(a.Running(), ShouldBeTrue)
		})
	})
}

func TestRelayTerminate(t *testing.T) {
	Convey("A termination signal only sets the shutdown flag", t, func() {
		reg := NewRegistry()
		a, _ := reg.Register("", "a", nil, nil, false)
		a.started(42)
		v := newTestVisor(t, reg)
		r := NewRelay(v)

		r.Terminate(unix.SIGTERM)
		So(v.Shutdown.Requested(), ShouldBeTrue)
		So(logged(v, "received SIGTERM"), ShouldBeTrue)
		So(a.Pid(), ShouldEqual, 42)

		Convey("Later signals are not logged again", func() {
			r.Terminate(unix.SIGTERM)
			r.Terminate(unix.SIGINT)
			So(loggedCount(v, "received"), ShouldEqual, 1)
			So(v.Shutdown.Signal(), ShouldEqual, unix.SIGTERM.String())
		})
	})
}

func TestDescribeStatus(t *testing.T) {
	Convey("Wait statuses read naturally", t, func() {
		So(DescribeStatus(unix.WaitStatus(0)), ShouldEqual, "exited 0")
		So(DescribeStatus(unix.WaitStatus(255<<8)), ShouldEqual, "exited 255")
		So(DescribeStatus(unix.WaitStatus(unix.SIGTERM)), ShouldEqual, "killed by SIGTERM")
	})
}
