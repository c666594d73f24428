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

// Package fsm is the per-context transaction state machine: it advances
// one state per Step call in response to an Event, never blocking on I/O
// itself — every blocking operation (DNS, connect, TLS, read, write) is
// performed on a separate goroutine (pubnub's per-transaction drive
// goroutine), which reports back by posting the matching Event through
// internal/sched, whose worker calls Step. This mirrors the
// original's non-blocking poll-driven design (dwarri-gazette/broker's
// single-owner event-driven FSM shape is the closest analogue in the
// retrieval pack) without requiring Go to expose raw socket readiness.
package fsm

import "github.com/nabbar/pncore/pnerr"

// State is one step of a transaction's lifecycle (spec.md 4.1). ResolvStart
// and ConnectStart are kept for parity with spec.md's state list and
// String(); Step never rests in them — it folds straight through to
// ResolvWait/ConnectWait, since this port's pal.Resolve/pal.Dial are single
// blocking calls with no separate "kick off the non-blocking op" phase for
// the original's poll loop to park in.
type State int

const (
	Idle State = iota
	ResolvStart
	ResolvWait
	ConnectStart
	ConnectWait
	TLSHandshakeWaitRead
	TLSHandshakeWaitWrite
	SendRequest
	RcvStatusLine
	RcvHeaders
	RcvBodyChunkLen
	RcvBodyChunkData
	RcvBodyLength
	ParseResponse
	WaitCancel
	Null
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ResolvStart:
		return "resolv_start"
	case ResolvWait:
		return "resolv_wait"
	case ConnectStart:
		return "connect_start"
	case ConnectWait:
		return "connect_wait"
	case TLSHandshakeWaitRead:
		return "tls_handshake_wait_read"
	case TLSHandshakeWaitWrite:
		return "tls_handshake_wait_write"
	case SendRequest:
		return "send_request"
	case RcvStatusLine:
		return "rcv_status_line"
	case RcvHeaders:
		return "rcv_headers"
	case RcvBodyChunkLen:
		return "rcv_body_chunk_len"
	case RcvBodyChunkData:
		return "rcv_body_chunk_data"
	case RcvBodyLength:
		return "rcv_body_length"
	case ParseResponse:
		return "parse_response"
	case WaitCancel:
		return "wait_cancel"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// EventKind discriminates the Event union.
type EventKind int

const (
	EventStart EventKind = iota // user invoked an operation: idle -> resolv_wait (resolv_start is folded through)
	EventResolved
	EventResolveFailed
	EventConnected
	EventConnectFailed
	EventTLSWantRead
	EventTLSWantWrite
	EventTLSDone
	EventTLSFailed
	EventWriteDone
	EventWritePartial
	EventStatusLineRead
	EventHeadersRead
	EventBodyChunkLenRead
	EventBodyChunkDataRead
	EventBodyLengthRead
	EventIOError
	EventTxTooSmall
	EventReplyTooBig
	EventTimeout
	EventCancel

	// EventParsedOK and EventParsedFailed are posted from ParseResponse once
	// the caller (pubnub.Context, driving internal/endpoint's Parse*
	// functions) has decoded the response body — the FSM itself never
	// parses JSON, it only waits to be told the verdict (spec.md 4.1's
	// parse_response state).
	EventParsedOK
	EventParsedFailed
)

// Event is what Step consumes to compute the next transition. Only the
// fields relevant to Kind are read.
type Event struct {
	Kind EventKind

	// MoreAddresses is set on EventConnectFailed/EventResolveFailed to
	// indicate pal still has untried addresses for this host (spec.md
	// 4.1's multi-address failover).
	MoreAddresses bool

	// ChunkLen is set on EventBodyChunkLenRead; zero means the
	// terminating chunk.
	ChunkLen int

	// Gzipped is set on EventHeadersRead.
	Gzipped bool
	// HasLength / HasChunked are set on EventHeadersRead; if neither is
	// true the response carries a body with no recognized framing
	// (spec.md 9, Open Question 1) and the transaction ends in
	// FORMAT_ERROR unless the status line guarantees no body.
	HasLength, HasChunked, NoBody bool

	// StatusCode is set on EventStatusLineRead.
	StatusCode int

	// Outcome is set on EventParsedFailed to the specific outcome code the
	// parser determined (ACCESS_DENIED, GROUP_EMPTY, FORMAT_ERROR, or a
	// transaction-specific code from pnerr's 300-series).
	Outcome pnerr.CodeError
}

// FSM is one context's transaction state machine. It is not safe for
// concurrent use; the scheduler's single-worker, one-fsm-call-at-a-time
// discipline (spec.md 4.3) is what makes that safe in practice.
type FSM struct {
	state   State
	kind    TransactionKind
	outcome pnerr.CodeError

	addressesRemain bool
	tlsEnabled      bool
}

// TransactionKind selects parse_response's dispatch (spec.md 4.1).
type TransactionKind int

const (
	KindGeneric TransactionKind = iota
	KindSubscribeV2
)

// New returns an FSM parked in Idle.
func New(kind TransactionKind, tlsEnabled bool) *FSM {
	return &FSM{state: Idle, kind: kind, tlsEnabled: tlsEnabled}
}

// State returns the current state.
func (f *FSM) State() State { return f.state }

// Outcome returns the terminal outcome once State() == Idle after a run;
// it is meaningless while a transaction is in flight.
func (f *FSM) Outcome() pnerr.CodeError { return f.outcome }

// Step applies ev and returns the resulting state. Timeout and Cancel are
// handled identically from every non-idle state (spec.md 4.1's tie-break:
// "timeout wins over any pending I/O").
func (f *FSM) Step(ev Event) State {
	if f.state != Idle && f.state != Null {
		if ev.Kind == EventTimeout {
			return f.finish(pnerr.OutcomeTimeout)
		}
		if ev.Kind == EventCancel {
			f.state = WaitCancel
			return f.finish(pnerr.OutcomeCancelled)
		}
	}

	switch f.state {
	case Idle:
		if ev.Kind == EventStart {
			// resolv_start has no I/O of its own to wait on — pal.Resolve is
			// one blocking call in this port, so the state the original FSM
			// parks in while *arming* resolution collapses into resolv_wait
			// directly (see DESIGN.md's fsm entry; the same collapse pal.Dial
			// already does for connect+TLS-handshake).
			f.state = ResolvWait
		}
	case ResolvWait:
		switch ev.Kind {
		case EventResolved:
			f.state = ConnectWait
		case EventResolveFailed:
			if ev.MoreAddresses {
				// Another already-resolved address remains; go straight to
				// attempting a connect on it rather than resting in
				// connect_start, for the same reason resolv_start collapsed
				// above.
				f.state = ConnectWait
			} else {
				return f.finish(pnerr.OutcomeAddrResolutionFailed)
			}
		}
	case ConnectWait:
		switch ev.Kind {
		case EventConnected:
			if f.tlsEnabled {
				f.state = TLSHandshakeWaitWrite
			} else {
				f.state = SendRequest
			}
		case EventConnectFailed:
			if ev.MoreAddresses {
				// Retry the next address without leaving connect_wait.
				f.state = ConnectWait
			} else {
				return f.finish(pnerr.OutcomeConnectFailed)
			}
		}
	case TLSHandshakeWaitRead, TLSHandshakeWaitWrite:
		switch ev.Kind {
		case EventTLSWantRead:
			f.state = TLSHandshakeWaitRead
		case EventTLSWantWrite:
			f.state = TLSHandshakeWaitWrite
		case EventTLSDone:
			f.state = SendRequest
		case EventTLSFailed:
			return f.finish(pnerr.OutcomeConnectFailed)
		}
	case SendRequest:
		switch ev.Kind {
		case EventWritePartial:
			// stay in SendRequest; the buffer cursor (owned by the
			// caller) tracks remaining bytes, as spec.md 4.1 requires.
		case EventWriteDone:
			f.state = RcvStatusLine
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case RcvStatusLine:
		switch ev.Kind {
		case EventStatusLineRead:
			if ev.StatusCode == 100 || ev.StatusCode == 101 {
				return f.finish(pnerr.OutcomeHTTPError)
			}
			f.state = RcvHeaders
		case EventTxTooSmall:
			return f.finish(pnerr.OutcomeTxBuffTooSmall)
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case RcvHeaders:
		switch ev.Kind {
		case EventHeadersRead:
			switch {
			case ev.NoBody:
				f.state = ParseResponse
			case ev.HasChunked:
				f.state = RcvBodyChunkLen
			case ev.HasLength:
				f.state = RcvBodyLength
			default:
				return f.finish(pnerr.OutcomeFormatError)
			}
		case EventTxTooSmall:
			return f.finish(pnerr.OutcomeTxBuffTooSmall)
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case RcvBodyChunkLen:
		switch ev.Kind {
		case EventBodyChunkLenRead:
			if ev.ChunkLen == 0 {
				f.state = ParseResponse
			} else {
				f.state = RcvBodyChunkData
			}
		case EventReplyTooBig:
			return f.finish(pnerr.OutcomeReplyTooBig)
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case RcvBodyChunkData:
		switch ev.Kind {
		case EventBodyChunkDataRead:
			f.state = RcvBodyChunkLen
		case EventReplyTooBig:
			return f.finish(pnerr.OutcomeReplyTooBig)
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case RcvBodyLength:
		switch ev.Kind {
		case EventBodyLengthRead:
			f.state = ParseResponse
		case EventReplyTooBig:
			return f.finish(pnerr.OutcomeReplyTooBig)
		case EventIOError:
			return f.finish(pnerr.OutcomeIOError)
		}
	case ParseResponse:
		// The caller drives parsing outside the FSM (subscribev2 or the
		// generic JSON field dispatch) and reports the verdict by posting
		// EventParsedOK/EventParsedFailed through the scheduler, preserving
		// the single-owner invariant instead of calling Finish* directly.
		switch ev.Kind {
		case EventParsedOK:
			return f.finish(pnerr.OutcomeOK)
		case EventParsedFailed:
			return f.finish(ev.Outcome)
		}
	case WaitCancel:
		return f.finish(pnerr.OutcomeCancelled)
	}

	return f.state
}

// FinishOK completes the current transaction successfully from
// ParseResponse.
func (f *FSM) FinishOK() State {
	return f.finish(pnerr.OutcomeOK)
}

// FinishWith completes the current transaction with an explicit outcome,
// used by ParseResponse when the generic/subscribev2 decoder determined
// ACCESS_DENIED, GROUP_EMPTY, FORMAT_ERROR, or a transaction-specific
// code.
func (f *FSM) FinishWith(outcome pnerr.CodeError) State {
	return f.finish(outcome)
}

func (f *FSM) finish(outcome pnerr.CodeError) State {
	f.outcome = outcome
	f.state = Idle
	return f.state
}
