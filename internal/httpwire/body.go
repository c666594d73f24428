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
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxReplyLen is the PUBNUB_REPLY_MAXLEN-equivalent cap ReadBody
// enforces when a caller doesn't supply its own (spec.md 4.4): the
// temporary buffer a response, inflated or not, must fit inside.
const DefaultMaxReplyLen = 32 * 1024

// ErrReplyTooBig is ReadBody's signal that the response body — its
// declared Content-Length, its accumulated chunked size, or its inflated
// gzip size — exceeds maxReplyLen. Callers translate it into
// fsm.EventReplyTooBig / pnerr.OutcomeReplyTooBig rather than the generic
// EventIOError/OutcomeIOError every other body-read failure produces.
var ErrReplyTooBig = errors.New("httpwire: response body exceeds maximum reply length")

// ReadBody drains the response body according to framing, decompressing
// it first if Content-Encoding: gzip was set, and never allocating or
// inflating more than maxReplyLen bytes. framing must not be
// FramingUntilClose — per spec.md 9's Open Question 1, a response with
// neither Content-Length nor chunked Transfer-Encoding is treated as a
// format error by the caller before ReadBody is ever invoked, since a
// client (unlike a server) cannot tell "the peer is done" apart from
// "the connection broke" without that framing.
func ReadBody(r *bufio.Reader, framing BodyFraming, contentLength int64, gzipped bool, maxReplyLen int64) ([]byte, error) {
	var (
		raw []byte
		err error
	)

	switch framing {
	case FramingNone:
		raw = nil
	case FramingContentLength:
		if contentLength > maxReplyLen {
			// Drain and discard so the connection stays parseable for
			// whatever the caller does next (it won't reuse it, but
			// leaving the socket mid-body is needless to add on top of
			// an already-terminal outcome), then report the overflow.
			_, _ = io.CopyN(io.Discard, r, contentLength)
			return nil, ErrReplyTooBig
		}
		raw = make([]byte, contentLength)
		_, err = io.ReadFull(r, raw)
	case FramingChunked:
		raw, err = readChunked(r, maxReplyLen)
	default:
		return nil, fmt.Errorf("httpwire: cannot read a body with unknown framing")
	}
	if err != nil {
		return nil, err
	}
	if !gzipped || len(raw) == 0 {
		return raw, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("httpwire: gzip: %w", err)
	}
	defer zr.Close()

	// Read one byte past the cap: if it's still there after maxReplyLen
	// bytes, the inflated body overflows regardless of what the
	// (compressed) Content-Length claimed.
	out, err := io.ReadAll(io.LimitReader(zr, maxReplyLen+1))
	if err != nil {
		return nil, fmt.Errorf("httpwire: gzip: %w", err)
	}
	if int64(len(out)) > maxReplyLen {
		return nil, ErrReplyTooBig
	}
	return out, nil
}

// readChunked implements RFC 7230 4.1's chunked transfer coding: a
// sequence of "<hex-size>\r\n<data>\r\n" chunks terminated by a
// zero-size chunk and an (here, discarded) trailer section. The running
// total is checked against maxReplyLen before each chunk is allocated, so
// a malicious or broken peer can't force an unbounded accumulation one
// chunk at a time.
func readChunked(r *bufio.Reader, maxReplyLen int64) ([]byte, error) {
	var out []byte
	for {
		sizeLine, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("httpwire: chunked: reading size line: %w", err)
		}
		size, err := parseChunkSize(sizeLine)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			if err := discardTrailer(r); err != nil {
				return nil, err
			}
			return out, nil
		}
		if int64(len(out))+int64(size) > maxReplyLen {
			return nil, ErrReplyTooBig
		}

		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("httpwire: chunked: reading chunk data: %w", err)
		}
		out = append(out, chunk...)

		if _, err := r.Discard(2); err != nil { // trailing CRLF after chunk data
			return nil, fmt.Errorf("httpwire: chunked: reading chunk terminator: %w", err)
		}
	}
}

func parseChunkSize(line string) (int, error) {
	line = trimCRLF(line)
	// a chunk-extension (";name=value") may follow the size; ignore it.
	for i := 0; i < len(line); i++ {
		if line[i] == ';' {
			line = line[:i]
			break
		}
	}
	var size int
	if _, err := fmt.Sscanf(line, "%x", &size); err != nil {
		return 0, fmt.Errorf("httpwire: chunked: malformed chunk size %q: %w", line, err)
	}
	return size, nil
}

func discardTrailer(r *bufio.Reader) error {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("httpwire: chunked: reading trailer: %w", err)
		}
		if trimCRLF(line) == "" {
			return nil
		}
	}
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
