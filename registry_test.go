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

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"
)

func TestRegistryNames(t *testing.T) {
	Convey("Given a registry", t, func() {
		reg := NewRegistry()
		env := []string{"PATH=/bin"}

		Convey("A lone command keeps its base name", func() {
			e, err := reg.Register("", "/usr/sbin/crond", nil, env, false)
			So(err, ShouldBeNil)
			reg.Seal()
			So(e.Name, ShouldEqual, "crond")
			So(e.Args, ShouldResemble, []string{"crond"})
		})

		Convey("Colliding names are numbered in order, ignoring case", func() {
			a, _ := reg.Register("", "/bin/Worker", nil, env, false)
			b, _ := reg.Register("", "nginx", nil, env, false)
			c, _ := reg.Register("", "/opt/worker", nil, env, true)
			d, _ := reg.Register("", "WORKER", nil, env, false)
			reg.Seal()
			So(a.Name, ShouldEqual, "Worker/1")
			So(b.Name, ShouldEqual, "nginx")
			So(c.Name, ShouldEqual, "worker/2")
			So(d.Name, ShouldEqual, "WORKER/3")
			So(reg.Find("worker/2"), ShouldEqual, c)
			So(reg.Find("worker"), ShouldBeNil)
		})

		Convey("A name hint replaces the base name", func() {
			e, _ := reg.Register("web", "/usr/sbin/nginx", nil, env, false)
			reg.Seal()
			So(e.Name, ShouldEqual, "web")
			So(e.Command, ShouldEqual, "/usr/sbin/nginx")
		})

		Convey("The environment is shared, not copied", func() {
			a, _ := reg.Register("", "a", nil, env, false)
			b, _ := reg.Register("", "b", nil, env, false)
			So(&a.Env[0], ShouldPointTo, &env[0])
			So(&b.Env[0], ShouldPointTo, &env[0])
		})

		Convey("Empty commands are refused", func() {
			_, err := reg.Register("x", "", nil, env, false)
			So(err, ShouldEqual, ErrNoCommand)
			So(reg.Len(), ShouldEqual, 0)
		})

		Convey("Registering after sealing fails", func() {
			reg.Seal()
			So(reg.Sealed(), ShouldBeTrue)
			_, err := reg.Register("", "sleep", nil, env, false)
			So(err, ShouldEqual, ErrRegistrySealed)
		})
	})
}

func TestRegistryRuntime(t *testing.T) {
	Convey("Given registered entries", t, func() {
		reg := NewRegistry()
		a, _ := reg.Register("", "a", nil, nil, false)
		b, _ := reg.Register("", "b", nil, nil, false)
		reg.Seal()

		So(a.Running(), ShouldBeFalse)
		So(reg.FindByPid(0), ShouldBeNil)

		a.started(100)
		b.started(200)
		So(reg.FindByPid(200), ShouldEqual, b)
		So(reg.FindByPid(300), ShouldBeNil)
		So(a.Spawns(), ShouldEqual, 1)

		Convey("Reaping the current pid clears it", func() {
			So(a.reaped(100, unix.WaitStatus(3<<8)), ShouldBeTrue)
			So(a.Pid(), ShouldEqual, 0)
			So(a.Reaps(), ShouldEqual, 1)
			ws, ok := a.LastStatus()
			So(ok, ShouldBeTrue)
			So(ws.ExitStatus(), ShouldEqual, 3)
		})

		Convey("Reaping some other pid changes nothing", func() {
			So(a.reaped(99, 0), ShouldBeFalse)
			So(a.Pid(), ShouldEqual, 100)
			_, ok := a.LastStatus()
			So(ok, ShouldBeFalse)
		})
	})
}
