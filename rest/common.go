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

package rest

import (
	"time"
)

const (
	mimeJson = "application/json; charset=UTF-8"

	// PollEtagHeader and PollTimeHeader ask the server to hold a GET
	// until the resource no longer matches the etag, or the given number
	// of seconds has passed.
	PollEtagHeader = "X-Govinit-Poll-Etag"
	PollTimeHeader = "X-Govinit-Poll-Time"

	// MaxPollTime caps PollTimeHeader.
	MaxPollTime = 300
)

// EntryInfo is the state of one supervised entry.
type EntryInfo struct {
	Name      string    `json:"name"`
	Command   string    `json:"command"`
	Args      []string  `json:"args"`
	Quiet     bool      `json:"quiet"`
	Pid       int       `json:"pid"`
	Running   bool      `json:"running"`
	Spawns    int64     `json:"spawns"`
	Reaps     int64     `json:"reaps"`
	Status    string    `json:"status"`
	TimeStamp time.Time `json:"tstamp"`
}

// LogRecord is one line of the supervisor's diagnostic stream.
type LogRecord struct {
	Id   int64     `json:"id,string"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
