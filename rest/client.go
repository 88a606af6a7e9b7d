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
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/context"
)

// LogInfo is a fetched copy of the diagnostic log, with the etag the
// server gave it.
type LogInfo struct {
	etag    string
	Records []LogRecord
}

// Client talks to a Handler.
type Client struct {
	base   string // URI to root of tree on server
	client *http.Client
}

func (c *Client) url(name string) string {
	if name == "" {
		return c.base + "/entries"
	}
	// Names such as "sleep/2" keep their slash.
	parts := strings.Split(name, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return c.base + "/entries/" + strings.Join(parts, "/")
}

// poll issues an HTTP GET against the URL, decoding the JSON body into v.
// With an etag the request is conditional, and with wait as well the
// server holds it until the value changes.  The return value is the new
// etag; if the value did not change it is "", with a nil error.
func (c *Client) poll(ctx context.Context, url string, etag string, wait int, v interface{}) (string, error) {

	req, e := http.NewRequest("GET", url, nil)
	if e != nil {
		return "", e
	}
	req = req.WithContext(ctx)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
		if wait > 0 {
			req.Header.Set(PollEtagHeader, etag)
			req.Header.Set(PollTimeHeader, strconv.Itoa(wait))
		}
	}

	res, e := c.client.Do(req)
	if e != nil {
		return "", e
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotModified {
		return "", nil
	}
	body, e := ioutil.ReadAll(res.Body)
	if e != nil {
		return "", e
	}
	if res.StatusCode != http.StatusOK {
		re := &Error{}
		if json.Unmarshal(body, re) != nil || re.Message == "" {
			re = &Error{Code: res.StatusCode, Message: res.Status}
		}
		return "", re
	}
	if e := json.Unmarshal(body, v); e != nil {
		return "", e
	}
	return res.Header.Get("Etag"), nil
}

// Entries returns every entry, in supervision order.
func (c *Client) Entries(ctx context.Context) ([]*EntryInfo, error) {
	var v []*EntryInfo
	if _, e := c.poll(ctx, c.url(""), "", 0, &v); e != nil {
		return nil, e
	}
	return v, nil
}

// GetEntry returns the named entry.
func (c *Client) GetEntry(ctx context.Context, name string) (*EntryInfo, error) {
	v := &EntryInfo{}
	if _, e := c.poll(ctx, c.url(name), "", 0, v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) pollLog(ctx context.Context, secs int, last *LogInfo) (*LogInfo, error) {
	otag := ""
	if last != nil {
		otag = last.etag
	}
	v := &LogInfo{}
	etag, e := c.poll(ctx, c.base+"/log", otag, secs, &v.Records)
	if e != nil {
		return nil, e
	}
	if etag == "" {
		return last, nil
	}
	v.etag = etag
	return v, nil
}

// GetLog returns the retained diagnostic log.
func (c *Client) GetLog(ctx context.Context) (*LogInfo, error) {
	return c.pollLog(ctx, 0, nil)
}

// WatchLog waits up to secs seconds for the log to move past last, and
// returns the new copy, or last itself if nothing changed.
func (c *Client) WatchLog(ctx context.Context, last *LogInfo, secs int) (*LogInfo, error) {
	return c.pollLog(ctx, secs, last)
}

// NewClient returns a Client handle.  The transport maybe nil to use
// a default transport, but it may also be adjusted to support additional
// options such as TLS.  baseURI is the base URL to use.
func NewClient(t *http.Transport, baseURI string) *Client {
	if t == nil {
		t = &http.Transport{}
	}
	return &Client{
		base:   strings.TrimRight(baseURI, "/"),
		client: &http.Client{Transport: t},
	}
}
