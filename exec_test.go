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

// testExec records exec attempts.  Paths in found succeed (return nil);
// other listed paths fail with the given error; the rest are ENOENT.
type testExec struct {
	found map[string]bool
	errs  map[string]error
	tried []string
}

func (x *testExec) exec(argv0 string, argv []string, envv []string) error {
	x.tried = append(x.tried, argv0)
	if x.found[argv0] {
		return nil
	}
	if e, ok := x.errs[argv0]; ok {
		return e
	}
	return unix.ENOENT
}

func TestExecSearch(t *testing.T) {
	Convey("Given a PATH of /a:/b", t, func() {
		x := &testExec{found: map[string]bool{}, errs: map[string]error{}}
		argv := []string{"mytool", "-v"}

		Convey("The command is found in the second directory", func() {
			x.found["/b/mytool"] = true
			So(execCommand("mytool", argv, nil, "/a:/b", x.exec), ShouldBeNil)
			So(x.tried, ShouldResemble, []string{"/a/mytool", "/b/mytool"})
		})

		Convey("A missing command is not found in PATH", func() {
			e := execCommand("mytool", argv, nil, "/a:/b", x.exec)
			So(e, ShouldNotBeNil)
			So(e.Error(), ShouldEqual, "mytool: not found in PATH")
			So(x.tried, ShouldResemble, []string{"/a/mytool", "/b/mytool"})
		})

		Convey("Permission denied is remembered and the search goes on", func() {
			x.errs["/a/mytool"] = unix.EACCES
			x.errs["/b/mytool"] = unix.ENOTDIR
			e := execCommand("mytool", argv, nil, "/a/:/b", x.exec)
			So(e.Error(), ShouldEqual, "mytool: not found in PATH "+
				"(permission denied on at least one candidate)")
			So(e.(*ExecError).Denied, ShouldBeTrue)
			So(x.tried, ShouldResemble, []string{"/a/mytool", "/b/mytool"})
		})

		Convey("Any other error stops the search", func() {
			x.errs["/a/mytool"] = unix.ENOEXEC
			x.found["/b/mytool"] = true
			e := execCommand("mytool", argv, nil, "/a:/b", x.exec)
			So(e, ShouldNotBeNil)
			So(e.(*ExecError).Command, ShouldEqual, "/a/mytool")
			So(e.(*ExecError).Err, ShouldEqual, unix.ENOEXEC)
			So(x.tried, ShouldResemble, []string{"/a/mytool"})
		})

		Convey("A command with a slash is not searched for", func() {
			e := execCommand("./bin/mytool", argv, nil, "/a:/b", x.exec)
			So(e.(*ExecError).Err, ShouldEqual, unix.ENOENT)
			So(x.tried, ShouldResemble, []string{"./bin/mytool"})
		})

		Convey("An empty PATH element means the current directory", func() {
			execCommand("mytool", argv, nil, "/a::/b", x.exec)
			So(x.tried, ShouldResemble, []string{"/a/mytool", "mytool", "/b/mytool"})
		})
	})
}

func TestExecHelperArgs(t *testing.T) {
	Convey("The helper argument vector round trips", t, func() {
		spec := &ProcessSpec{
			Command: "/bin/sleep",
			Args:    []string{"sleep", "60"},
			Quiet:   true,
		}
		args := helperArgs(spec)
		So(args, ShouldResemble, []string{ExecHelperName, "q", "/bin/sleep", "sleep", "60"})
		So(IsExecHelper(args), ShouldBeTrue)

		spec.Quiet = false
		So(helperArgs(spec)[1], ShouldEqual, "-")

		So(IsExecHelper([]string{"govinit", "-n"}), ShouldBeFalse)
		So(IsExecHelper([]string{ExecHelperName}), ShouldBeFalse)
	})
}
