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

// Package util holds formatting helpers for govinitctl.
package util

import (
	"fmt"
	"sort"
	"time"

	"github.com/gdamore/govinit/rest"
)

// State is the one word summary of an entry.
func State(s *rest.EntryInfo) string {
	if s.Running {
		return "running"
	}
	if s.Spawns == 0 {
		return "pending"
	}
	return "exited"
}

func FormatDuration(d time.Duration) string {

	sec := int((d % time.Minute) / time.Second)
	min := int((d % time.Hour) / time.Minute)
	hour := int(d / time.Hour)

	return fmt.Sprintf("%d:%02d:%02d", hour, min, sec)
}

type sorted []*rest.EntryInfo

func (s sorted) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s sorted) Len() int {
	return len(s)
}

func (s sorted) Less(i, j int) bool {
	a := s[i]
	b := s[j]

	if a.Running != b.Running {
		// entries that are down go first
		return b.Running
	}
	if a.Reaps != b.Reaps {
		// then the ones that restart the most
		return a.Reaps > b.Reaps
	}
	return a.Name < b.Name
}

// SortEntries orders entries for display: stopped entries first, then
// by restart count, then by name.
func SortEntries(items []*rest.EntryInfo) {
	sort.Sort(sorted(items))
}
