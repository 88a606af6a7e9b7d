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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testLog struct {
	t *testing.T
}

func (tl *testLog) Write(p []byte) (n int, err error) {
	s := string(p)
	s = strings.Trim(s, "\n")
	tl.t.Log(s)
	return len(p), nil
}

// newTestVisor returns a supervision context whose diagnostics go to the
// test log, and to the in-memory Log for inspection.
func newTestVisor(t *testing.T, reg *Registry) *Visor {
	return NewVisor(reg, NewDiag(&testLog{t}), NewMetrics("test"))
}

// logged reports whether some retained diagnostic line contains s.
func logged(v *Visor, s string) bool {
	return loggedCount(v, s) > 0
}

// loggedCount counts the retained diagnostic lines containing s.
func loggedCount(v *Visor, s string) int {
	n := 0
	recs, _ := v.Diag.Log().Records(0)
	for _, r := range recs {
		if strings.Contains(r.Text, s) {
			n++
		}
	}
	return n
}

func TestDiag(t *testing.T) {
	Convey("Diagnostic stream", t, func() {
		d := NewDiag(nil)
		var b strings.Builder
		d.AddWriter(&b, 0)

		d.Printf("exec %s pid %d", "sleep", 42)
		So(b.String(), ShouldEqual, "exec sleep pid 42\n")

		recs, id := d.Log().Records(0)
		So(len(recs), ShouldEqual, 1)
		So(recs[0].Text, ShouldEqual, "exec sleep pid 42")

		Convey("Unchanged log returns nothing", func() {
			again, id2 := d.Log().Records(id)
			So(again, ShouldBeNil)
			So(id2, ShouldEqual, id)
		})

		Convey("Lines written through Logger reach every destination", func() {
			d.Logger().Print("http: TLS handshake error")
			So(b.String(), ShouldEndWith, "http: TLS handshake error\n")
			recs, _ = d.Log().Records(0)
			So(len(recs), ShouldEqual, 2)
			So(recs[1].Text, ShouldEqual, "http: TLS handshake error")
		})
	})
}

func TestLogRing(t *testing.T) {
	Convey("Log keeps only the newest records", t, func() {
		l := NewLog(3)
		for _, s := range []string{"a", "b", "c", "d\ne"} {
			l.Write([]byte(s + "\n"))
		}
		recs, _ := l.Records(0)
		So(len(recs), ShouldEqual, 3)
		So(recs[0].Text, ShouldEqual, "c")
		So(recs[1].Text, ShouldEqual, "d")
		So(recs[2].Text, ShouldEqual, "e")
		So(recs[2].Id, ShouldEqual, recs[1].Id+1)
	})

	Convey("Watch returns when a line arrives", t, func() {
		l := NewLog(0)
		_, id := l.Records(0)
		go l.Write([]byte("reaped\n"))
		So(l.Watch(id, time.Minute), ShouldNotEqual, id)
	})

	Convey("Watch gives up after the expiry", t, func() {
		l := NewLog(0)
		_, id := l.Records(0)
		So(l.Watch(id, 10*time.Millisecond), ShouldEqual, id)
		So(l.Watch(id, 0), ShouldEqual, id)
	})
}
