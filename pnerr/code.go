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

// Package pnerr registers the transaction outcome codes used across the SDK
// and provides a small chained-error type for wrapping lower-level causes
// (a transport error wrapped by an IO outcome, say) without losing either.
package pnerr

import (
	"sort"
)

// CodeError is a numeric outcome code, in the same spirit as an HTTP status
// code: a closed, registered space rather than an open string enum.
type CodeError uint16

const (
	// UnknownError is returned for a code that was never registered.
	UnknownError CodeError = 0
)

// Outcome codes, one per terminal state of the context FSM (spec.md 4.1).
const (
	OutcomeOK CodeError = 200 + iota
	OutcomeTimeout
	OutcomeConnectionTimeout
	OutcomeConnectFailed
	OutcomeAddrResolutionFailed
	OutcomeIOError
	OutcomeAborted
	OutcomeHTTPError
	OutcomeFormatError
	OutcomeCancelled
	OutcomeTxBuffTooSmall
	OutcomeRxBuffNotEmpty
	OutcomeInvalidChannel
	OutcomePublishFailed
	OutcomeAccessDenied
	OutcomeReplyTooBig
	OutcomeInternalError
	OutcomeCryptoNotSupported
	OutcomeQueueFull
)

// Transaction-specific outcome codes (subscribe-v2, actions, objects,
// grant/revoke) start at a distinct base so they never collide with the
// generic table above.
const (
	OutcomeSubTTFormatError CodeError = 300 + iota
	OutcomeSubNoTTError
	OutcomeSubNoRegError
	OutcomeGroupEmpty
	OutcomeActionsAPIError
	OutcomeObjectsAPIError
	OutcomeGrantAPIError
	OutcomeRevokeAPIError
	OutcomeInProgress
)

var messages = map[CodeError]string{
	OutcomeOK:                   "ok",
	OutcomeTimeout:              "transaction timed out",
	OutcomeConnectionTimeout:    "connection timed out",
	OutcomeConnectFailed:        "connect failed",
	OutcomeAddrResolutionFailed: "address resolution failed",
	OutcomeIOError:              "io error",
	OutcomeAborted:              "aborted",
	OutcomeHTTPError:            "http error",
	OutcomeFormatError:          "response format error",
	OutcomeCancelled:            "cancelled",
	OutcomeTxBuffTooSmall:       "tx buffer too small",
	OutcomeRxBuffNotEmpty:       "rx buffer not empty",
	OutcomeInvalidChannel:       "invalid channel",
	OutcomePublishFailed:        "publish failed",
	OutcomeAccessDenied:         "access denied",
	OutcomeReplyTooBig:          "reply too big",
	OutcomeInternalError:        "internal error",
	OutcomeCryptoNotSupported:   "crypto not supported",
	OutcomeQueueFull:            "scheduler queue full",
	OutcomeSubTTFormatError:     "subscribe timetoken format error",
	OutcomeSubNoTTError:         "subscribe response missing timetoken",
	OutcomeSubNoRegError:        "subscribe response missing region",
	OutcomeGroupEmpty:           "channel group or groups result in empty subscription set",
	OutcomeActionsAPIError:      "message actions api error",
	OutcomeObjectsAPIError:      "object metadata api error",
	OutcomeGrantAPIError:        "grant token api error",
	OutcomeRevokeAPIError:       "revoke token api error",
	OutcomeInProgress:           "transaction already in progress",
}

// Uint16 returns the underlying numeric value.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// String renders the registered message, or "unknown error" if the code was
// never registered.
func (c CodeError) String() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "unknown error"
}

// Error builds a chained Error value rooted at this code, optionally
// wrapping one or more parent causes.
func (c CodeError) Error(parents ...error) Error {
	return newErr(c, c.String(), parents...)
}

// Terminal reports whether this code represents a terminal transaction
// outcome as opposed to the purely internal OutcomeInProgress sentinel.
func (c CodeError) Terminal() bool {
	return c != OutcomeInProgress
}

// AllOutcomes returns every registered outcome code in ascending order,
// the full enumeration from spec.md 4.1.
func AllOutcomes() []CodeError {
	res := make([]CodeError, 0, len(messages))
	for c := range messages {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
