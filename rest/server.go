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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gdamore/govinit"
)

// Handler serves the state of a supervision context over HTTP.  It is
// read only; nothing here can start or stop a process.
type Handler struct {
	v *govinit.Visor
	r *mux.Router
}

func (h *Handler) internalError(w http.ResponseWriter, e error) {
	http.Error(w, e.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJson(w http.ResponseWriter, v interface{}) {
	if b, e := json.Marshal(v); e != nil {
		h.internalError(w, e)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.Write(b)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	if b, err := json.Marshal(e); err != nil {
		h.internalError(w, err)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.WriteHeader(e.Code)
		w.Write(b)
	}
}

func entryInfo(e *govinit.Entry) *EntryInfo {
	info := &EntryInfo{
		Name:      e.Name,
		Command:   e.Command,
		Args:      e.Args,
		Quiet:     e.Quiet,
		Pid:       e.Pid(),
		Running:   e.Running(),
		Spawns:    e.Spawns(),
		Reaps:     e.Reaps(),
		TimeStamp: e.Since(),
	}
	if info.Running {
		info.Status = "running"
	} else if ws, ok := e.LastStatus(); ok {
		info.Status = govinit.DescribeStatus(ws)
	} else {
		info.Status = "not started"
	}
	return info
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.v.Registry.Entries()
	l := make([]*EntryInfo, 0, len(entries))
	for _, e := range entries {
		l = append(l, entryInfo(e))
	}
	h.writeJson(w, l)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if e := h.v.Registry.Find(name); e == nil {
		h.writeError(w, &Error{http.StatusNotFound, "Entry not found"})
	} else {
		h.writeJson(w, entryInfo(e))
	}
}

func formatEtag(id int64) string {
	return fmt.Sprintf("\"%x\"", id)
}

func parseEtag(s string) (int64, bool) {
	s = strings.Trim(s, "\" ")
	if s == "" {
		return 0, false
	}
	id, e := strconv.ParseInt(s, 16, 64)
	return id, e == nil
}

// getLog returns the retained diagnostic lines.  A request carrying
// If-None-Match gets 304 while the log is unchanged; with the poll
// headers as well it waits for a change first.
func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	l := h.v.Diag.Log()
	last, match := parseEtag(r.Header.Get("If-None-Match"))
	if match {
		if ptag, ok := parseEtag(r.Header.Get(PollEtagHeader)); ok && ptag == last {
			secs, _ := strconv.Atoi(r.Header.Get(PollTimeHeader))
			if secs > MaxPollTime {
				secs = MaxPollTime
			}
			if secs > 0 {
				l.Watch(last, time.Duration(secs)*time.Second)
			}
		}
	} else {
		last = 0
	}

	recs, id := l.Records(last)
	w.Header().Set("Etag", formatEtag(id))
	if recs == nil && match {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	out := make([]LogRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, LogRecord{Id: rec.Id, Time: rec.Time, Text: rec.Text})
	}
	h.writeJson(w, out)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.r.ServeHTTP(w, req)
}

// NewHandler returns a Handler for v.  /metrics is only served when v
// carries Metrics.
func NewHandler(v *govinit.Visor) *Handler {
	r := mux.NewRouter()
	h := &Handler{v: v, r: r}
	r.HandleFunc("/entries", h.listEntries).Methods("GET")
	r.HandleFunc("/entries/{name:.+}", h.getEntry).Methods("GET")
	r.HandleFunc("/log", h.getLog).Methods("GET")
	if reg := v.Metrics.Registry(); reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	}
	return h
}
