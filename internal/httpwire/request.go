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
	"fmt"
	"sort"
	"strings"
)

// Request is the minimal request-line + header set the send_request FSM
// state writes to the socket. The body, when present (grant-token,
// add-action and object create/update requests), is a short JSON document
// so it is held in memory rather than streamed.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Host   string
	Body   []byte

	UserAgent string
	KeepAlive bool
}

// Encode renders the request exactly as it goes on the wire, sorted
// query parameters matching the original's SORT_URL_PARAMETERS macro
// (deterministic ordering used when the request is signed).
func (r Request) Encode() []byte {
	var b strings.Builder

	path := r.Path
	if len(r.Query) > 0 {
		keys := make([]string, 0, len(r.Query))
		for k := range r.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		path += "?"
		for i, k := range keys {
			if i > 0 {
				path += "&"
			}
			path += k + "=" + r.Query[k]
		}
	}

	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", r.Method, path)
	fmt.Fprintf(&b, "Host: %s\r\n", r.Host)
	if r.UserAgent != "" {
		fmt.Fprintf(&b, "User-Agent: %s\r\n", r.UserAgent)
	}
	if r.KeepAlive {
		b.WriteString("Connection: keep-alive\r\n")
	} else {
		b.WriteString("Connection: close\r\n")
	}
	if len(r.Body) > 0 {
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
		b.WriteString("Content-Type: application/json\r\n")
	}
	b.WriteString("\r\n")

	out := []byte(b.String())
	out = append(out, r.Body...)
	return out
}
