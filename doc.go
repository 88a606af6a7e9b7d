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

// Package govinit implements a small process 1 for containers.
//
// A container normally runs a single program as its first process.  When
// more than one long running program is needed, something has to start
// them, restart them when they exit, and collect the exit status of every
// process that ends up parented to pid 1 so that zombies do not pile up.
// That is all govinit does.
//
// Processes are described once, up front, by ProcessSpec values added to
// a Registry.  A Supervisor then polls the registry, (re)spawning anything
// that is not running, with a poll interval that starts short and widens
// over time.  A Relay listens for SIGCHLD, reaping children and clearing
// their pids, and for SIGINT/SIGTERM, which ask the Supervisor to send
// SIGTERM to everything it started and return.  It does not wait for the
// children to go away; the container runtime will take care of that.
//
// The syslog subpackage contains a drain for /dev/log, so that programs
// which insist on syslog still produce visible output.
package govinit
