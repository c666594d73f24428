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
	"strings"
	"testing"
)

func TestParseStatusLine(t *testing.T) {
	s, err := ParseStatusLine("HTTP/1.1 200 OK\r\n")
	if err != nil {
		t.Fatalf("ParseStatusLine: %v", err)
	}
	if s.Proto != "HTTP/1.1" || s.StatusCode != 200 || s.Reason != "OK" {
		t.Fatalf("got %+v", s)
	}
}

func TestParseStatusLineMalformed(t *testing.T) {
	if _, err := ParseStatusLine("garbage"); err == nil {
		t.Fatalf("expected error for malformed status line")
	}
}

func TestHasNoBody(t *testing.T) {
	cases := map[int]bool{100: true, 204: true, 304: true, 200: false, 404: false}
	for code, want := range cases {
		s := StatusLine{StatusCode: code}
		if got := s.HasNoBody(); got != want {
			t.Fatalf("HasNoBody(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestFramingContentLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 11\r\n\r\n"))
	h, err := ReadHeaders(r)
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	framing, n := h.Framing(StatusLine{StatusCode: 200})
	if framing != FramingContentLength || n != 11 {
		t.Fatalf("Framing = %v,%d", framing, n)
	}
}

func TestFramingChunked(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Transfer-Encoding: chunked\r\n\r\n"))
	h, err := ReadHeaders(r)
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	framing, _ := h.Framing(StatusLine{StatusCode: 200})
	if framing != FramingChunked {
		t.Fatalf("Framing = %v, want chunked", framing)
	}
}

func TestFramingUntilClose(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("X-Foo: bar\r\n\r\n"))
	h, err := ReadHeaders(r)
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	framing, _ := h.Framing(StatusLine{StatusCode: 200})
	if framing != FramingUntilClose {
		t.Fatalf("Framing = %v, want until-close", framing)
	}
}

func TestReadBodyContentLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("hello world"))
	got, err := ReadBody(r, FramingContentLength, 11, false, DefaultMaxReplyLen)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestReadBodyChunked(t *testing.T) {
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	got, err := ReadBody(r, FramingChunked, 0, false, DefaultMaxReplyLen)
	if err != nil {
		t.Fatalf("ReadBody: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestReadBodyContentLengthOverflowsMaxReplyLen(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("hello world"))
	_, err := ReadBody(r, FramingContentLength, 11, false, 5)
	if !errors.Is(err, ErrReplyTooBig) {
		t.Fatalf("expected ErrReplyTooBig, got %v", err)
	}
}

func TestReadBodyChunkedOverflowsMaxReplyLen(t *testing.T) {
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	_, err := ReadBody(r, FramingChunked, 0, false, 8)
	if !errors.Is(err, ErrReplyTooBig) {
		t.Fatalf("expected ErrReplyTooBig, got %v", err)
	}
}

func TestReadBodyGzipOverflowsMaxReplyLen(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("hello world, this is a longer payload than the cap")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	r := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	_, err := ReadBody(r, FramingContentLength, int64(buf.Len()), true, 10)
	if !errors.Is(err, ErrReplyTooBig) {
		t.Fatalf("expected ErrReplyTooBig, got %v", err)
	}
}

func TestRequestEncodeSortsQueryParams(t *testing.T) {
	req := Request{
		Method: "GET",
		Path:   "/v2/subscribe/sub-c-xxx/demo/0",
		Query:  map[string]string{"tt": "0", "uuid": "abc"},
		Host:   "ps.pndsn.com",
	}
	out := req.Encode()
	if !bytes.Contains(out, []byte("tt=0&uuid=abc")) {
		t.Fatalf("expected sorted query params, got %s", out)
	}
	if !bytes.HasPrefix(out, []byte("GET /v2/subscribe")) {
		t.Fatalf("unexpected request line: %s", out)
	}
}
