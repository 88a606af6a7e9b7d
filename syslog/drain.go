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

import (
	"bytes"
	"encoding/hex"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const (
	// DefaultPath is where local programs expect to find syslog.
	DefaultPath = "/dev/log"

	// MaxDatagram bounds a single read.  Longer datagrams are cut
	// short by the socket layer.
	MaxDatagram = 8192
)

// Drain receives syslog datagrams on a local socket and writes each one,
// normalized, as a line of output.  It never drops a datagram silently:
// anything it cannot parse is reported along with a hex dump.
type Drain struct {
	path    string
	raw     bool
	out     *log.Logger
	diag    *log.Logger
	now     func() time.Time
	conn    *net.UnixConn
	closing atomic.Bool
}

// NewDrain returns a Drain for the socket at path.  Parsed messages go to
// out; everything else, including raw echoes, goes to diag.
func NewDrain(path string, raw bool, out, diag *log.Logger) *Drain {
	return &Drain{
		path: path,
		raw:  raw,
		out:  out,
		diag: diag,
		now:  time.Now,
	}
}

// Listen replaces whatever is at the socket path with a fresh datagram
// socket that anybody may write to.
func (d *Drain) Listen() error {
	if e := os.Remove(d.path); e != nil && !os.IsNotExist(e) {
		return errors.Wrapf(e, "removing %s", d.path)
	}
	conn, e := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: d.path, Net: "unixgram"})
	if e != nil {
		return errors.Wrapf(e, "binding %s", d.path)
	}
	if e = os.Chmod(d.path, 0666); e != nil {
		conn.Close()
		return errors.Wrapf(e, "chmod %s", d.path)
	}
	d.conn = conn
	d.diag.Printf("listening for syslog on %s", d.path)
	return nil
}

// Serve reads datagrams until Close is called, when it returns nil, or
// until the socket fails, when it returns the error.
func (d *Drain) Serve() error {
	buf := make([]byte, MaxDatagram)
	for {
		n, e := d.conn.Read(buf)
		if e != nil {
			if d.closing.Load() {
				return nil
			}
			return errors.Wrapf(e, "receiving on %s", d.path)
		}
		d.handle(buf[:n])
	}
}

// Close stops Serve and removes the socket.
func (d *Drain) Close() error {
	d.closing.Store(true)
	if d.conn == nil {
		return nil
	}
	e := d.conn.Close()
	os.Remove(d.path)
	return e
}

func (d *Drain) handle(dgram []byte) {
	b := bytes.TrimRight(dgram, "\x00")
	if d.raw {
		d.diag.Printf("raw: %s", b)
	}
	m, e := Parse(b, d.now())
	if e != nil {
		d.diag.Printf("%v", e)
		d.diag.Printf("datagram (%d bytes):\n%s", len(dgram), hex.Dump(dgram))
		return
	}
	d.out.Print(m.String())
}

// Run is the body of the drain process: listen, serve, and stop cleanly
// on SIGINT or SIGTERM.
func Run(path string, raw bool, out, diag *log.Logger) error {
	d := NewDrain(path, raw, out, diag)
	if e := d.Listen(); e != nil {
		return e
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if sig, ok := <-sigs; ok {
			diag.Printf("received %v, closing %s", sig, path)
			d.Close()
		}
	}()
	return d.Serve()
}
