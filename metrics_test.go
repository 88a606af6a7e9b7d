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
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Nil metrics record nothing", t, func() {
		var m *Metrics
		So(func() {
			m.Spawned("a")
			m.SpawnFailed("a")
			m.Reaped("a")
			m.OrphanReaped()
			m.Interval(time.Second)
		}, ShouldNotPanic)
		So(m.Registry(), ShouldBeNil)
	})

	Convey("Spawns and reaps move the running gauge", t, func() {
		m := NewMetrics("")
		m.Spawned("web")
		So(testutil.ToFloat64(m.running.WithLabelValues("web")), ShouldEqual, 1)
		m.Reaped("web")
		So(testutil.ToFloat64(m.running.WithLabelValues("web")), ShouldEqual, 0)
		So(testutil.ToFloat64(m.spawns.WithLabelValues("web")), ShouldEqual, 1)
		m.Interval(1500 * time.Millisecond)
		So(testutil.ToFloat64(m.interval), ShouldEqual, 1.5)
		n, err := testutil.GatherAndCount(m.Registry())
		So(err, ShouldBeNil)
		So(n, ShouldBeGreaterThan, 0)
	})
}
