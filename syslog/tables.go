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

package syslog

// Facility names, indexed by facility number.  The order is the one this
// drain has always printed, which is not quite the one in RFC 5424.
var facilities = [...]string{
	"kern", "user", "mail", "system", "daemon", "syslog", "lpd", "nntp",
	"uucp", "clock", "auth", "ftp", "ntp", "audit", "alert", "clock",
	"local0", "local1", "local2", "local3",
	"local4", "local5", "local6", "local7",
}

var severities = [...]string{
	"emerg", "alert", "crit", "error", "warn", "notice", "info", "debug",
}

var months = [...]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// Facility returns the name of facility n, or "unknown".
func Facility(n int) string {
	if n < 0 || n >= len(facilities) {
		return "unknown"
	}
	return facilities[n]
}

// Severity returns the name of severity n, or "unknown".
func Severity(n int) string {
	if n < 0 || n >= len(severities) {
		return "unknown"
	}
	return severities[n]
}

// month returns 1..12 for a three letter abbreviation in any case, or 0.
func month(b []byte) int {
	if len(b) != 3 {
		return 0
	}
	var lower [3]byte
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	for i, m := range months {
		if string(lower[:]) == m {
			return i + 1
		}
	}
	return 0
}
