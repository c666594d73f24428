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

package fsm

import (
	"testing"

	"github.com/nabbar/pncore/pnerr"
)

func driveToHeaders(t *testing.T, f *FSM) {
	t.Helper()
	steps := []Event{
		{Kind: EventStart},
		{Kind: EventResolved},
		{Kind: EventConnected},
		{Kind: EventWriteDone},
		{Kind: EventStatusLineRead, StatusCode: 200},
	}
	for _, ev := range steps {
		f.Step(ev)
	}
	if f.State() != RcvHeaders {
		t.Fatalf("expected RcvHeaders, got %s", f.State())
	}
}

func TestSuccessfulPublishRoundTrip(t *testing.T) {
	f := New(KindGeneric, false)
	driveToHeaders(t, f)

	if s := f.Step(Event{Kind: EventHeadersRead, HasLength: true}); s != RcvBodyLength {
		t.Fatalf("expected RcvBodyLength, got %s", s)
	}
	if s := f.Step(Event{Kind: EventBodyLengthRead}); s != ParseResponse {
		t.Fatalf("expected ParseResponse, got %s", s)
	}
	if s := f.FinishOK(); s != Idle {
		t.Fatalf("expected Idle after FinishOK, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %v", f.Outcome())
	}
}

func TestChunkedBodyRoundTrip(t *testing.T) {
	f := New(KindSubscribeV2, false)
	driveToHeaders(t, f)

	if s := f.Step(Event{Kind: EventHeadersRead, HasChunked: true}); s != RcvBodyChunkLen {
		t.Fatalf("expected RcvBodyChunkLen, got %s", s)
	}
	if s := f.Step(Event{Kind: EventBodyChunkLenRead, ChunkLen: 5}); s != RcvBodyChunkData {
		t.Fatalf("expected RcvBodyChunkData, got %s", s)
	}
	if s := f.Step(Event{Kind: EventBodyChunkDataRead}); s != RcvBodyChunkLen {
		t.Fatalf("expected RcvBodyChunkLen again, got %s", s)
	}
	if s := f.Step(Event{Kind: EventBodyChunkLenRead, ChunkLen: 0}); s != ParseResponse {
		t.Fatalf("expected ParseResponse on terminal chunk, got %s", s)
	}
	if s := f.FinishWith(pnerr.OutcomeAccessDenied); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeAccessDenied {
		t.Fatalf("expected OutcomeAccessDenied, got %v", f.Outcome())
	}
}

func TestTimeoutWinsOverPendingIO(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})
	f.Step(Event{Kind: EventConnected})

	// SendRequest is waiting on a write; a timeout must still win.
	if s := f.Step(Event{Kind: EventTimeout}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeTimeout {
		t.Fatalf("expected OutcomeTimeout, got %v", f.Outcome())
	}
}

func TestCancelFromAnyStateYieldsCancelled(t *testing.T) {
	states := []func(f *FSM){
		func(f *FSM) { f.Step(Event{Kind: EventStart}) },
		func(f *FSM) {
			f.Step(Event{Kind: EventStart})
			f.Step(Event{Kind: EventResolved})
		},
		func(f *FSM) {
			driveToHeaders(t, f)
		},
	}
	for i, drive := range states {
		f := New(KindGeneric, false)
		drive(f)
		if s := f.Step(Event{Kind: EventCancel}); s != Idle {
			t.Fatalf("case %d: expected Idle, got %s", i, s)
		}
		if f.Outcome() != pnerr.OutcomeCancelled {
			t.Fatalf("case %d: expected OutcomeCancelled, got %v", i, f.Outcome())
		}
	}
}

func TestTLSHandshakeWantReadWrite(t *testing.T) {
	f := New(KindGeneric, true)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})

	if s := f.Step(Event{Kind: EventConnected}); s != TLSHandshakeWaitWrite {
		t.Fatalf("expected TLSHandshakeWaitWrite, got %s", s)
	}
	if s := f.Step(Event{Kind: EventTLSWantRead}); s != TLSHandshakeWaitRead {
		t.Fatalf("expected TLSHandshakeWaitRead, got %s", s)
	}
	if s := f.Step(Event{Kind: EventTLSWantWrite}); s != TLSHandshakeWaitWrite {
		t.Fatalf("expected TLSHandshakeWaitWrite, got %s", s)
	}
	if s := f.Step(Event{Kind: EventTLSDone}); s != SendRequest {
		t.Fatalf("expected SendRequest, got %s", s)
	}
}

func TestTLSHandshakeFailureYieldsConnectFailed(t *testing.T) {
	f := New(KindGeneric, true)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})
	f.Step(Event{Kind: EventConnected})

	if s := f.Step(Event{Kind: EventTLSFailed}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeConnectFailed {
		t.Fatalf("expected OutcomeConnectFailed, got %v", f.Outcome())
	}
}

func TestResolveFailedWithMoreAddressesRetriesConnect(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})

	if s := f.Step(Event{Kind: EventResolveFailed, MoreAddresses: true}); s != ConnectWait {
		t.Fatalf("expected ConnectWait (retry next address), got %s", s)
	}
}

func TestResolveFailedNoMoreAddresses(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})

	if s := f.Step(Event{Kind: EventResolveFailed}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeAddrResolutionFailed {
		t.Fatalf("expected OutcomeAddrResolutionFailed, got %v", f.Outcome())
	}
}

func TestConnectFailedRetriesThenFails(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})

	if s := f.Step(Event{Kind: EventConnectFailed, MoreAddresses: true}); s != ConnectWait {
		t.Fatalf("expected ConnectWait retry, got %s", s)
	}
	if s := f.Step(Event{Kind: EventConnectFailed}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeConnectFailed {
		t.Fatalf("expected OutcomeConnectFailed, got %v", f.Outcome())
	}
}

func TestMalformedResponseNoFramingIsFormatError(t *testing.T) {
	f := New(KindGeneric, false)
	driveToHeaders(t, f)

	if s := f.Step(Event{Kind: EventHeadersRead}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeFormatError {
		t.Fatalf("expected OutcomeFormatError, got %v", f.Outcome())
	}
}

func TestNoBodyStatusSkipsToParseResponse(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})
	f.Step(Event{Kind: EventConnected})
	f.Step(Event{Kind: EventWriteDone})
	f.Step(Event{Kind: EventStatusLineRead, StatusCode: 204})

	if s := f.Step(Event{Kind: EventHeadersRead, NoBody: true}); s != ParseResponse {
		t.Fatalf("expected ParseResponse, got %s", s)
	}
}

func TestInformationalStatusIsHTTPError(t *testing.T) {
	f := New(KindGeneric, false)
	f.Step(Event{Kind: EventStart})
	f.Step(Event{Kind: EventResolved})
	f.Step(Event{Kind: EventConnected})
	f.Step(Event{Kind: EventWriteDone})

	if s := f.Step(Event{Kind: EventStatusLineRead, StatusCode: 101}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeHTTPError {
		t.Fatalf("expected OutcomeHTTPError, got %v", f.Outcome())
	}
}

func TestEventParsedOKCompletesFromParseResponse(t *testing.T) {
	f := New(KindGeneric, false)
	driveToHeaders(t, f)
	f.Step(Event{Kind: EventHeadersRead, HasLength: true})
	f.Step(Event{Kind: EventBodyLengthRead})

	if s := f.Step(Event{Kind: EventParsedOK}); s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %v", f.Outcome())
	}
}

func TestEventParsedFailedCarriesOutcome(t *testing.T) {
	f := New(KindSubscribeV2, false)
	driveToHeaders(t, f)
	f.Step(Event{Kind: EventHeadersRead, HasChunked: true})
	f.Step(Event{Kind: EventBodyChunkLenRead, ChunkLen: 0})

	s := f.Step(Event{Kind: EventParsedFailed, Outcome: pnerr.OutcomeGroupEmpty})
	if s != Idle {
		t.Fatalf("expected Idle, got %s", s)
	}
	if f.Outcome() != pnerr.OutcomeGroupEmpty {
		t.Fatalf("expected OutcomeGroupEmpty, got %v", f.Outcome())
	}
}
