/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package pubnub

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nabbar/pncore/internal/sched"
	"github.com/nabbar/pncore/pnconf"
	"github.com/nabbar/pncore/pnerr"
)

// startCannedServer accepts exactly one connection, reads the request
// until the blank line terminating headers, writes resp verbatim, then
// closes. Accept and write errors are ignored; they surface as the
// client-side transaction error the test checks.
func startCannedServer(t *testing.T, resp string) (addr string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil || strings.TrimRight(line, "\r\n") == "" {
				break
			}
		}
		_, _ = conn.Write([]byte(resp))
	}()

	tcpAddr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", tcpAddr.Port
}

func httpResponse(body string) string {
	return fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s", len(body), body)
}

func newTestContext(t *testing.T, host string, port int) *Context {
	t.Helper()

	s := sched.New(8)
	runCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(runCtx)

	cfg := pnconf.New(
		pnconf.WithOrigin(host),
		pnconf.WithKeys("pub", "sub", ""),
		pnconf.WithTimeouts(5*time.Second, 2*time.Second, 5*time.Second),
	)
	c, err := New(cfg, WithPlainHTTP(), WithPort(port), WithScheduler(s))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestContextTimeRoundTrip(t *testing.T) {
	host, port := startCannedServer(t, httpResponse(`[17195000000000000]`))
	c := newTestContext(t, host, port)

	got, err := c.Time(context.Background())
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if got != "17195000000000000" {
		t.Fatalf("expected timetoken, got %q", got)
	}
}

func TestContextPublishRoundTrip(t *testing.T) {
	host, port := startCannedServer(t, httpResponse(`[1,"Sent","17195000000000001"]`))
	c := newTestContext(t, host, port)

	res, err := c.Publish(context.Background(), "chan", []byte(`"hello"`), true)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Timetoken != "17195000000000001" {
		t.Fatalf("expected timetoken, got %q", res.Timetoken)
	}
	if res.Info != "Sent" {
		t.Fatalf("expected info Sent, got %q", res.Info)
	}
}

func TestContextPublishFailureResponse(t *testing.T) {
	host, port := startCannedServer(t, httpResponse(`[0,"Invalid Key","0"]`))
	c := newTestContext(t, host, port)

	_, err := c.Publish(context.Background(), "chan", []byte(`"hello"`), true)
	if err == nil {
		t.Fatal("expected publish failure, got nil error")
	}
}

func TestContextReplyTooBig(t *testing.T) {
	host, port := startCannedServer(t, httpResponse(`[17195000000000000]`))

	s := sched.New(8)
	runCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(runCtx)

	cfg := pnconf.New(
		pnconf.WithOrigin(host),
		pnconf.WithKeys("pub", "sub", ""),
		pnconf.WithTimeouts(5*time.Second, 2*time.Second, 5*time.Second),
	)
	c, err := New(cfg, WithPlainHTTP(), WithPort(port), WithScheduler(s), WithMaxReplyLen(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Time(context.Background())
	if err == nil {
		t.Fatal("expected a reply-too-big error, got nil")
	}
	pe, ok := err.(pnerr.Error)
	if !ok {
		t.Fatalf("expected a pnerr.Error, got %T: %v", err, err)
	}
	if !pe.HasCode(pnerr.OutcomeReplyTooBig) {
		t.Fatalf("expected OutcomeReplyTooBig, got %v", pe.Code())
	}
}

func TestContextTimeoutWhenServerNeverResponds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		// Never reply; let the context's transaction timeout fire.
		time.Sleep(2 * time.Second)
	}()

	tcpAddr := ln.Addr().(*net.TCPAddr)

	cfg := pnconf.New(
		pnconf.WithOrigin("127.0.0.1"),
		pnconf.WithKeys("pub", "sub", ""),
		pnconf.WithTimeouts(50*time.Millisecond, 50*time.Millisecond, 50*time.Millisecond),
	)
	s := sched.New(8)
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(runCtx)

	c, err := New(cfg, WithPlainHTTP(), WithPort(tcpAddr.Port), WithScheduler(s))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Second)
	defer cancelCtx()

	if _, err := c.Time(ctx); err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}
