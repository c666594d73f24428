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

package httpwire

import (
	"bufio"
	"net/textproto"
	"strconv"
	"strings"
)

// BodyFraming describes how to read the body once headers are known,
// the three cases spec.md's rcv_headers -> rcv_body_* transition picks
// between.
type BodyFraming int

const (
	// FramingNone means the response carries no body at all (see
	// StatusLine.HasNoBody).
	FramingNone BodyFraming = iota
	FramingContentLength
	FramingChunked
	// FramingUntilClose is the fallback the original treats as a format
	// error (spec.md 9, Open Question 1): neither Content-Length nor
	// chunked Transfer-Encoding were present.
	FramingUntilClose
)

// Headers wraps textproto.MIMEHeader with the lookups the FSM needs to
// decide body framing and whether the body is gzip-compressed.
type Headers struct {
	textproto.MIMEHeader
}

// ReadHeaders reads CRLF-terminated header lines from r until the
// blank line that ends them, the same grammar net/textproto already
// implements — there is no reason to hand-roll this part since, unlike
// the body, the framing of *headers* is always "read lines until empty
// line" regardless of what the headers say.
func ReadHeaders(r *bufio.Reader) (Headers, error) {
	tp := textproto.NewReader(r)
	h, err := tp.ReadMIMEHeader()
	if err != nil && len(h) == 0 {
		return Headers{}, err
	}
	return Headers{h}, nil
}

// Framing inspects Content-Length / Transfer-Encoding to pick how the
// body must be read.
func (h Headers) Framing(status StatusLine) (BodyFraming, int64) {
	if status.HasNoBody() {
		return FramingNone, 0
	}
	if te := h.Get("Transfer-Encoding"); strings.EqualFold(strings.TrimSpace(lastToken(te)), "chunked") {
		return FramingChunked, 0
	}
	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
			return FramingContentLength, n
		}
	}
	return FramingUntilClose, 0
}

// Gzipped reports whether the body is gzip-compressed per
// Content-Encoding.
func (h Headers) Gzipped() bool {
	return strings.EqualFold(strings.TrimSpace(h.Get("Content-Encoding")), "gzip")
}

func lastToken(commaList string) string {
	parts := strings.Split(commaList, ",")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
