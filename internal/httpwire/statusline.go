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

// Package httpwire implements the wire-level HTTP/1.1 codec the context
// FSM drives one state at a time: a status line, then headers, then a
// body whose framing (content-length, chunked, or close-delimited) is
// only known once the headers are in. It is deliberately not
// net/http/httputil.ReadResponse: that call blocks until the full
// response is buffered, which is incompatible with a state machine that
// must hand control back to the scheduler between partial reads.
package httpwire

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusLine is a parsed HTTP/1.1 response status line.
type StatusLine struct {
	Proto      string
	StatusCode int
	Reason     string
}

// ParseStatusLine parses one CRLF-stripped status line, e.g.
// "HTTP/1.1 200 OK".
func ParseStatusLine(line string) (StatusLine, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return StatusLine{}, fmt.Errorf("httpwire: malformed status line %q", line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return StatusLine{}, fmt.Errorf("httpwire: malformed status code in %q: %w", line, err)
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}
	return StatusLine{Proto: parts[0], StatusCode: code, Reason: reason}, nil
}

// HasNoBody reports whether a response with this status line is
// guaranteed by RFC 7230 3.3.3 to carry no body regardless of what
// Content-Length or Transfer-Encoding headers say — the first leg of
// spec.md 9's "missing framing" open question.
func (s StatusLine) HasNoBody() bool {
	if s.StatusCode >= 100 && s.StatusCode < 200 {
		return true
	}
	return s.StatusCode == 204 || s.StatusCode == 304
}
