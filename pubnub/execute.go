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
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/nabbar/pncore/internal/fsm"
	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/internal/pal"
	"github.com/nabbar/pncore/internal/sched"
	"github.com/nabbar/pncore/pnerr"
)

// postOrAbort posts ev to h and reports whether it was accepted. On
// ErrQueueFull it falls back to handle.Cancel() — a separate channel from
// the queue, so it still gets through when the queue itself is saturated —
// forcing the FSM to a terminal outcome instead of leaving runTransaction
// blocked forever on an event that never arrives.
func postOrAbort(h *sched.Handle, ev fsm.Event) bool {
	if err := h.Post(ev); err != nil {
		h.Cancel()
		return false
	}
	return true
}

// transactionResult carries the parsed outcome of one runTransaction call
// out of its driving goroutine, alongside the FSM's own terminal outcome
// code — the "user-thread entry points ... never take the scheduler's
// mutex" split spec.md 4.3 requires: the caller only ever reads res once
// the FSM's OnDone callback has fired.
type transactionResult[T any] struct {
	value T
	err   error
}

// runTransaction drives one context transaction end to end: register an
// FSM with the shared scheduler, post EventStart, spawn the goroutine
// that performs the blocking DNS/connect/write/read steps, and block the
// calling goroutine until the FSM reaches Idle — the "sync mode is a
// blocking receive on a one-shot channel" design note from spec.md 9.
// parse decodes the raw response body into T once the wire read
// completes; its error (if any) is translated to an outcome code and fed
// back into the FSM as EventParsedFailed so parse_response still
// transitions through the normal Step path.
func runTransaction[T any](c *Context, ctx context.Context, kind fsm.TransactionKind, req httpwire.Request, timeout time.Duration, parse func([]byte) (T, error)) (T, error) {
	var zero T

	c.txMu.Lock()
	defer c.txMu.Unlock()

	if c.closed {
		return zero, pnerr.OutcomeAborted.Error()
	}

	c.buf.Reset()

	machine := fsm.New(kind, !c.tls.insecureTransport)
	done := make(chan struct{})
	handle := c.sch.Register(machine, func(fsm.State) { close(done) })

	var res transactionResult[T]

	handle.Arm(int(timeout.Milliseconds()))
	if err := handle.Post(fsm.Event{Kind: fsm.EventStart}); err != nil {
		return zero, pnerr.OutcomeQueueFull.Error(err)
	}

	go drive(c, ctx, handle, req, timeout, &res, parse)

	select {
	case <-done:
	case <-ctx.Done():
		handle.Cancel()
		<-done
	}

	outcome := machine.Outcome()
	if outcome != pnerr.OutcomeOK {
		if res.err != nil {
			return zero, res.err
		}
		return zero, outcome.Error()
	}

	c.thumper.Arm()
	return res.value, nil
}

// drive performs the blocking transport steps for one transaction and
// posts the matching fsm.Event at each step, finishing with
// EventParsedOK/EventParsedFailed once parse has run over the response
// body. It always runs on its own goroutine, reporting back through res
// and the scheduler rather than a return value — the FSM's single-owner
// invariant means only internal/sched's worker goroutine ever calls
// Machine.Step, so every outcome here reaches the FSM by Post, never by
// a direct Finish* call.
//
// drive is a free function rather than a (*Context) method because Go
// does not allow a method to carry its own type parameter distinct from
// its receiver's.
func drive[T any](c *Context, ctx context.Context, h *sched.Handle, req httpwire.Request, timeout time.Duration, res *transactionResult[T], parse func([]byte) (T, error)) {
	if err := h.Acquire(ctx); err != nil {
		// ctx is already done (Acquire only fails that way here); the
		// select in runTransaction will see the same ctx.Done() and call
		// handle.Cancel() itself, so there is nothing to Post from here.
		res.err = err
		return
	}
	defer h.Release()

	body, err := c.performIO(ctx, h, req, timeout)
	if err != nil {
		res.err = err
		return
	}

	value, perr := parse(body)
	if perr != nil {
		res.err = perr
		postOrAbort(h, fsm.Event{Kind: fsm.EventParsedFailed, Outcome: outcomeOf(perr)})
		return
	}

	res.value = value
	if !postOrAbort(h, fsm.Event{Kind: fsm.EventParsedOK}) {
		res.err = pnerr.OutcomeQueueFull.Error()
	}
}

// performIO resolves, dials, writes req and reads the full response body,
// posting one fsm.Event per completed step. A non-nil error means the
// FSM has already reached a terminal outcome on its own (the RcvStatusLine
// informational-status and RcvHeaders no-framing cases finish without
// waiting for EventParsedFailed) or is about to once the posted event is
// processed; either way the caller must not keep reading from conn.
func (c *Context) performIO(ctx context.Context, h *sched.Handle, req httpwire.Request, timeout time.Duration) ([]byte, error) {
	dialHost, dialPort := c.host, c.port
	dopts := c.dialOptions(timeout)

	if proxyURL := c.resolveProxy(); proxyURL != nil {
		dialHost, dialPort = proxyURL.Hostname(), proxyPort(proxyURL)
		dopts.Proxy = proxyURL
		dopts.ProxyTarget = net.JoinHostPort(c.host, strconv.Itoa(c.port))
	}

	addrs, err := pal.Resolve(ctx, dialHost, dialPort)
	if err != nil {
		postOrAbort(h, fsm.Event{Kind: fsm.EventResolveFailed})
		return nil, pnerr.OutcomeAddrResolutionFailed.Error(err)
	}
	if !postOrAbort(h, fsm.Event{Kind: fsm.EventResolved}) {
		return nil, pnerr.OutcomeQueueFull.Error()
	}

	var conn *pal.Conn
	var dialErr error
	for i, addr := range addrs {
		conn, dialErr = pal.Dial(ctx, addr, dopts)
		if dialErr == nil {
			break
		}
		postOrAbort(h, fsm.Event{Kind: fsm.EventConnectFailed, MoreAddresses: i < len(addrs)-1})
	}
	if dialErr != nil {
		return nil, pnerr.OutcomeConnectFailed.Error(dialErr)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, pnerr.OutcomeIOError.Error(err)
	}

	if !postOrAbort(h, fsm.Event{Kind: fsm.EventConnected}) {
		return nil, pnerr.OutcomeQueueFull.Error()
	}
	if conn.TLS {
		if !postOrAbort(h, fsm.Event{Kind: fsm.EventTLSDone}) {
			return nil, pnerr.OutcomeQueueFull.Error()
		}
	}

	if _, err := conn.Write(req.Encode()); err != nil {
		postOrAbort(h, fsm.Event{Kind: fsm.EventIOError})
		return nil, pnerr.OutcomeIOError.Error(err)
	}
	if !postOrAbort(h, fsm.Event{Kind: fsm.EventWriteDone}) {
		return nil, pnerr.OutcomeQueueFull.Error()
	}

	br := bufio.NewReader(conn)

	line, err := br.ReadString('\n')
	if err != nil {
		postOrAbort(h, fsm.Event{Kind: fsm.EventIOError})
		return nil, pnerr.OutcomeIOError.Error(err)
	}
	status, err := httpwire.ParseStatusLine(line)
	if err != nil {
		postOrAbort(h, fsm.Event{Kind: fsm.EventIOError})
		return nil, pnerr.OutcomeFormatError.Error(err)
	}
	if !postOrAbort(h, fsm.Event{Kind: fsm.EventStatusLineRead, StatusCode: status.StatusCode}) {
		return nil, pnerr.OutcomeQueueFull.Error()
	}
	if status.StatusCode == 100 || status.StatusCode == 101 {
		return nil, pnerr.OutcomeHTTPError.Error()
	}

	headers, err := httpwire.ReadHeaders(br)
	if err != nil {
		postOrAbort(h, fsm.Event{Kind: fsm.EventIOError})
		return nil, pnerr.OutcomeIOError.Error(err)
	}
	framing, length := headers.Framing(status)
	gzipped := headers.Gzipped()

	ev := fsm.Event{Kind: fsm.EventHeadersRead, Gzipped: gzipped}
	switch framing {
	case httpwire.FramingNone:
		ev.NoBody = true
	case httpwire.FramingChunked:
		ev.HasChunked = true
	case httpwire.FramingContentLength:
		ev.HasLength = true
	}
	if !postOrAbort(h, ev) {
		return nil, pnerr.OutcomeQueueFull.Error()
	}
	if framing == httpwire.FramingUntilClose {
		return nil, pnerr.OutcomeFormatError.Error()
	}

	body, err := httpwire.ReadBody(br, framing, length, gzipped, c.maxReplyLen)
	if err != nil {
		if errors.Is(err, httpwire.ErrReplyTooBig) {
			postOrAbort(h, fsm.Event{Kind: fsm.EventReplyTooBig})
			return nil, pnerr.OutcomeReplyTooBig.Error(err)
		}
		postOrAbort(h, fsm.Event{Kind: fsm.EventIOError})
		return nil, pnerr.OutcomeIOError.Error(err)
	}

	var posted bool
	switch framing {
	case httpwire.FramingChunked:
		posted = postOrAbort(h, fsm.Event{Kind: fsm.EventBodyChunkLenRead, ChunkLen: 0})
	case httpwire.FramingContentLength:
		posted = postOrAbort(h, fsm.Event{Kind: fsm.EventBodyLengthRead})
	default:
		posted = true
	}
	if !posted {
		return nil, pnerr.OutcomeQueueFull.Error()
	}

	c.buf.SetResponse(body)
	return body, nil
}

// outcomeOf extracts the pnerr code a Parse* function determined, falling
// back to FORMAT_ERROR for a plain error an endpoint parser didn't wrap
// (which should not happen in practice, since every internal/endpoint
// Parse* returns a pnerr.Error, but a zero-value fallback here is cheaper
// than a panic if that contract is ever violated).
func outcomeOf(err error) pnerr.CodeError {
	if pe, ok := err.(pnerr.Error); ok {
		return pe.Code()
	}
	return pnerr.OutcomeFormatError
}
