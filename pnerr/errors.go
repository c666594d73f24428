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

package pnerr

import (
	"fmt"
	"strings"
)

// Error is a chained, code-bearing error. A transport-runtime failure can
// wrap the net.OpError that caused it without losing the outcome code the
// rest of the SDK dispatches on.
type Error interface {
	error

	// Code returns the outcome code at the root of this error.
	Code() CodeError

	// Is reports whether err carries the same code or, failing that, the
	// same message as this error. Satisfies errors.Is via Unwrap below.
	Is(err error) bool

	// Unwrap exposes the parent chain to errors.Is/errors.As.
	Unwrap() []error

	// Add appends additional parent causes to this error.
	Add(parents ...error)

	// HasCode reports whether this error or any of its parents carry code.
	HasCode(code CodeError) bool
}

type pnErr struct {
	code CodeError
	msg  string
	p    []error
}

func newErr(code CodeError, msg string, parents ...error) Error {
	e := &pnErr{code: code, msg: msg}
	e.Add(parents...)
	return e
}

// New builds a plain Error from a code and message, without requiring a
// CodeError constant to already be registered (used by callers composing
// one-off wrapped errors around a formatted message).
func New(code CodeError, msg string, parents ...error) Error {
	if msg == "" {
		msg = code.String()
	}
	return newErr(code, msg, parents...)
}

// Newf is New with fmt.Sprintf-style formatting applied to msg first.
func Newf(code CodeError, format string, args ...interface{}) Error {
	return newErr(code, fmt.Sprintf(format, args...))
}

func (e *pnErr) Error() string {
	if len(e.p) == 0 {
		return e.msg
	}
	parts := make([]string, 0, len(e.p)+1)
	parts = append(parts, e.msg)
	for _, p := range e.p {
		parts = append(parts, p.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *pnErr) Code() CodeError {
	return e.code
}

func (e *pnErr) Add(parents ...error) {
	for _, p := range parents {
		if p != nil {
			e.p = append(e.p, p)
		}
	}
}

func (e *pnErr) Unwrap() []error {
	if len(e.p) == 0 {
		return nil
	}
	return append([]error(nil), e.p...)
}

func (e *pnErr) Is(err error) bool {
	if err == nil {
		return false
	}
	if o, ok := err.(*pnErr); ok {
		return e.code == o.code
	}
	return strings.EqualFold(e.msg, err.Error())
}

func (e *pnErr) HasCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.p {
		if pe, ok := p.(Error); ok && pe.HasCode(code) {
			return true
		}
	}
	return false
}
