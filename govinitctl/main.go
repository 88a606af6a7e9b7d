// Copyright 2015 The Govisor Authors
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

// Command govinitctl queries the status listener of a running govinit
// (started with -a).  It uses subcommands.
//
// The flags are
//
//	-a <address>	- the status address, default is
//			  http://127.0.0.1:8321
//
// Subcommands are
//
//	entries             - list all entries
//	status [<name> ...] - show status for the named entries (or all)
//	info <name>         - show more detailed entry info
//	log                 - print the supervisor's diagnostic log
//	watch               - print the log, then follow it
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pborman/getopt"
	"golang.org/x/net/context"

	"github.com/gdamore/govinit/govinitctl/util"
	"github.com/gdamore/govinit/rest"
)

var (
	addr    = getopt.StringLong("addr", 'a', "http://127.0.0.1:8321", "govinit status address")
	timeout = getopt.StringLong("timeout", 't', "5s", "request timeout")
)

func usage() {
	log.Fatalf("Usage: %s [-a <address>] <subcommand>", os.Args[0])
}

func showStatus(s *rest.EntryInfo) {
	d := time.Since(s.TimeStamp)
	if s.Spawns == 0 {
		d = 0
	}
	fmt.Printf("%-16s %8s %7d %9s %s\n", s.Name,
		util.State(s), s.Pid, util.FormatDuration(d), s.Status)
}

func showInfo(s *rest.EntryInfo) {
	fmt.Printf("Name:      %s\n", s.Name)
	fmt.Printf("Command:   %s\n", s.Command)
	fmt.Printf("Args:      %s\n", strings.Join(s.Args, " "))
	fmt.Printf("Quiet:     %v\n", s.Quiet)
	fmt.Printf("State:     %s\n", util.State(s))
	fmt.Printf("Pid:       %d\n", s.Pid)
	fmt.Printf("Spawns:    %d\n", s.Spawns)
	fmt.Printf("Reaps:     %d\n", s.Reaps)
	fmt.Printf("Since:     %v\n", time.Since(s.TimeStamp).Truncate(time.Second))
	fmt.Printf("Detail:    %s\n", s.Status)
}

func printLog(recs []rest.LogRecord, after int64) int64 {
	for _, r := range recs {
		if r.Id <= after {
			continue
		}
		fmt.Printf("%s %s\n", r.Time.Format("2006/01/02 15:04:05.000000"), r.Text)
		after = r.Id
	}
	return after
}

func main() {
	getopt.Parse()
	args := getopt.Args()
	if len(args) == 0 {
		args = []string{"status"}
	}
	wait, e := time.ParseDuration(*timeout)
	if e != nil {
		log.Fatalf("Bad timeout: %v", e)
	}

	client := rest.NewClient(nil, *addr)
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	switch args[0] {
	case "entries":
		if len(args) != 1 {
			usage()
		}
		infos, e := client.Entries(ctx)
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		for _, info := range infos {
			fmt.Println(info.Name)
		}
	case "status":
		var infos []*rest.EntryInfo
		if len(args) == 1 {
			if infos, e = client.Entries(ctx); e != nil {
				log.Fatalf("Failed: %v", e)
			}
		}
		for _, n := range args[1:] {
			info, e := client.GetEntry(ctx, n)
			if e == nil {
				infos = append(infos, info)
			} else {
				log.Printf("Failed: %s: %v", n, e)
			}
		}
		util.SortEntries(infos)
		for _, info := range infos {
			showStatus(info)
		}
	case "info":
		if len(args) != 2 {
			usage()
		}
		info, e := client.GetEntry(ctx, args[1])
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		showInfo(info)
	case "log":
		if len(args) != 1 {
			usage()
		}
		l, e := client.GetLog(ctx)
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		printLog(l.Records, 0)
	case "watch":
		if len(args) != 1 {
			usage()
		}
		l, e := client.GetLog(ctx)
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		last := printLog(l.Records, 0)
		for {
			wctx, wcancel := context.WithTimeout(context.Background(),
				rest.MaxPollTime*time.Second+wait)
			l, e = client.WatchLog(wctx, l, rest.MaxPollTime)
			wcancel()
			if e != nil {
				log.Fatalf("Failed: %v", e)
			}
			last = printLog(l.Records, last)
		}
	default:
		usage()
	}
}
