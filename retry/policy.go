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

// Package retry is an opt-in collaborator sitting outside the core
// transaction pipeline (spec.md 7): pubnub.Context never retries a failed
// transaction on its own, so a caller that wants retry-with-backoff wires
// a Policy around its own call site. Backoff timing reuses
// github.com/hashicorp/go-retryablehttp's jittered-linear formula rather
// than hand-rolling one, the same dependency the teacher pulls in for its
// gitlab artifact client's HTTP retries.
package retry

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nabbar/pncore/pnerr"
)

// Policy decides whether a failed transaction outcome is worth retrying,
// and if so how long to wait first.
type Policy struct {
	// WaitMin/WaitMax bound the jittered backoff window of the first retry,
	// the same knobs retryablehttp.Client exposes as RetryWaitMin/
	// RetryWaitMax; ShouldRetry scales both by the attempt number.
	WaitMin time.Duration
	WaitMax time.Duration

	// MaxRetries caps the number of attempts ShouldRetry allows; tries is
	// 1-based (the value after the first failed attempt).
	MaxRetries int
}

// Default mirrors pnconf.Default()'s 10-attempt cap, with a 1s-30s jittered
// window for the first retry that grows linearly with each attempt.
func Default() Policy {
	return Policy{
		WaitMin:    1 * time.Second,
		WaitMax:    30 * time.Second,
		MaxRetries: 10,
	}
}

// retryableOutcomes are the transport/timeout-shaped failures a retry is
// plausibly able to fix by trying again; everything else (format errors,
// access denied, publish rejected, crypto misconfiguration, ...) is a
// property of the request itself and retrying it changes nothing.
var retryableOutcomes = map[pnerr.CodeError]bool{
	pnerr.OutcomeTimeout:              true,
	pnerr.OutcomeConnectionTimeout:    true,
	pnerr.OutcomeConnectFailed:        true,
	pnerr.OutcomeAddrResolutionFailed: true,
	pnerr.OutcomeIOError:              true,
}

// ShouldRetry reports whether a transaction that finished with outcome on
// attempt number tries (1-based) should be retried, and if so how long to
// wait before the next attempt. A tries value at or beyond MaxRetries
// always refuses, regardless of the outcome.
func (p Policy) ShouldRetry(outcome pnerr.CodeError, tries int) (wait time.Duration, retry bool) {
	if outcome == pnerr.OutcomeOK {
		return 0, false
	}
	if tries >= p.MaxRetries {
		return 0, false
	}
	if !retryableOutcomes[outcome] {
		return 0, false
	}
	// LinearJitterBackoff takes a 0-based attempt number.
	return retryablehttp.LinearJitterBackoff(p.WaitMin, p.WaitMax, tries-1, nil), true
}
