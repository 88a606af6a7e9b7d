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

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackoff(t *testing.T) {
	Convey("The poll interval climbs a staircase", t, func() {
		b := newBackoff()
		So(b.Interval(), ShouldEqual, 100*time.Millisecond)

		var got []time.Duration
		for i := 0; i < 20; i++ {
			got = append(got, b.Advance())
		}
		ms := time.Millisecond
		So(got[:9], ShouldResemble, []time.Duration{
			200 * ms, 300 * ms, 400 * ms, 500 * ms, 600 * ms,
			700 * ms, 800 * ms, 900 * ms, 1000 * ms,
		})
		So(got[9], ShouldEqual, 2*time.Second)
		So(got[17], ShouldEqual, 10*time.Second)

		Convey("And stays at the top", func() {
			So(got[18], ShouldEqual, 10*time.Second)
			So(got[19], ShouldEqual, 10*time.Second)
			So(b.Advance(), ShouldEqual, 10*time.Second)
		})
	})
}
