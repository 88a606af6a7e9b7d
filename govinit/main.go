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

// Command govinit is a process 1 for containers.  It runs the commands it
// is given, restarts them whenever they exit, reaps every zombie that
// lands on it, drains /dev/log to its own output, and on SIGINT or
// SIGTERM passes SIGTERM along to everything it started and exits.
//
//	govinit [options] [-- command args [-- command args ...]]
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/pborman/getopt"

	"github.com/gdamore/govinit"
	"github.com/gdamore/govinit/rest"
	"github.com/gdamore/govinit/syslog"
)

var version = "1.0.0"

var (
	optHelp     = getopt.BoolLong("help", 'h', "Print out a help screen")
	optVersion  = getopt.BoolLong("version", 'v', "Print out the version")
	optDryRun   = getopt.BoolLong("dry-run", 'n', "Print the commands to be run, but do not run them")
	optQuiet    = getopt.BoolLong("quiet", 'q', "Send output of supervised commands to /dev/null; with -n, print nothing")
	optDirs     = getopt.ListLong("directory", 'd', "Run every executable file in DIR (repeatable)", "DIR")
	optManifest = getopt.StringLong("manifest", 'f', "", "Read processes from a YAML manifest", "FILE")
	optSyslog   = getopt.StringLong("syslog", 'l', syslog.DefaultPath, "Drain syslog datagrams from PATH (empty disables)", "PATH")
	optRaw      = getopt.BoolLong("raw", 'r', "Echo each syslog datagram before parsing it")
	optListen   = getopt.StringLong("listen", 'a', "", "Serve status and metrics on ADDR", "ADDR")
	optDrain    = getopt.StringLong("syslog-drain", 0, "", "Run as the syslog drain on PATH (internal)", "PATH")
)

func main() {
	// Processes we spawn come back through here first.
	if govinit.IsExecHelper(os.Args) {
		os.Exit(govinit.RunExecHelper(os.Args))
	}
	getopt.Parse()
	os.Exit(run())
}

// options is the configuration taken from the command line.
type options struct {
	dirs     []string
	manifest string
	syslog   string
	raw      bool
	quiet    bool
	dryRun   bool
}

func run() int {
	if *optHelp {
		getopt.Usage()
		return 0
	}
	if *optVersion {
		fmt.Printf("govinit v%s\n", version)
		return 0
	}
	if *optDrain != "" {
		return drain(*optDrain, *optRaw)
	}

	self, e := os.Executable()
	if e != nil {
		log.Printf("cannot locate own executable: %v", e)
		return 1
	}
	opts := &options{
		dirs:     *optDirs,
		manifest: *optManifest,
		syslog:   *optSyslog,
		raw:      *optRaw,
		quiet:    *optQuiet,
		dryRun:   *optDryRun,
	}
	reg, e := configure(opts, self, getopt.Args())
	switch {
	case e == govinit.ErrNoProcesses && opts.dryRun:
		if !opts.quiet {
			fmt.Fprintf(os.Stderr, "no processes to supervise.\n")
		}
		return 1
	case e == govinit.ErrNoProcesses:
		fmt.Fprintf(os.Stderr, "No sub-processes identified.\nWhat shall I supervise?\n")
		return 1
	case e != nil:
		log.Printf("%v", e)
		return 1
	}
	reg.Seal()

	if opts.dryRun {
		return dryRun(reg, opts.quiet)
	}
	return supervise(reg, self)
}

// configure builds the registry from the directories, the manifest, and
// last the commands on the command line, all sharing one environment
// slice.  With none of those there is nothing to supervise, and it fails
// with ErrNoProcesses; the syslog drain alone is not worth running.
// Otherwise the drain, unless disabled, is added after them.
func configure(opts *options, self string, args []string) (*govinit.Registry, error) {
	reg := govinit.NewRegistry()
	env := os.Environ()

	for _, dir := range opts.dirs {
		if e := govinit.RegisterDirectory(reg, dir, env, opts.quiet); e != nil {
			return nil, e
		}
	}
	if opts.manifest != "" {
		m, e := govinit.LoadManifestFile(opts.manifest)
		if e != nil {
			return nil, e
		}
		if e := m.Register(reg, env, opts.quiet); e != nil {
			return nil, e
		}
	}
	if e := govinit.RegisterArgs(reg, args, env, opts.quiet); e != nil {
		return nil, e
	}
	if reg.Len() == 0 {
		return nil, govinit.ErrNoProcesses
	}

	if opts.syslog != "" && !opts.dryRun {
		if _, e := govinit.RegisterSyslogDrain(reg, self, opts.syslog, opts.raw, env); e != nil {
			return nil, e
		}
	}
	return reg, nil
}

func dryRun(reg *govinit.Registry, quiet bool) int {
	if quiet {
		return 0
	}
	if e := govinit.WriteListing(os.Stdout, reg); e != nil {
		return 1
	}
	return 0
}

func supervise(reg *govinit.Registry, self string) int {
	diag := govinit.NewDiag(os.Stderr)
	metrics := govinit.NewMetrics("govinit")
	v := govinit.NewVisor(reg, diag, metrics)

	launcher, e := govinit.NewLauncher(self, diag, metrics)
	if e != nil {
		diag.Printf("%v", e)
		return 1
	}
	relay := govinit.NewRelay(v)
	if e := relay.Install(); e != nil {
		diag.Printf("%v", e)
		return 1
	}
	defer relay.Stop()

	if *optListen != "" {
		srv := &http.Server{
			Addr:     *optListen,
			Handler:  rest.NewHandler(v),
			ErrorLog: diag.Logger(),
		}
		go func() {
			e := srv.ListenAndServe()
			diag.Printf("status listener on %s failed: %v", *optListen, e)
		}()
	}

	if e := govinit.NewSupervisor(v, launcher).Run(); e != nil {
		diag.Printf("%v", e)
		return 1
	}
	return 0
}

func drain(path string, raw bool) int {
	out := log.New(os.Stdout, "", 0)
	diag := log.New(os.Stderr, "syslog: ", govinit.DiagFlags)
	if e := syslog.Run(path, raw, out, diag); e != nil {
		diag.Printf("%v", e)
		return 1
	}
	return 0
}
