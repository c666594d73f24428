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

package endpoint

import (
	"encoding/json"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// BuildTime builds `/time/0` (spec.md 6) — no identity params, matching
// the original's unauthenticated time endpoint.
func BuildTime(host string) httpwire.Request {
	return buildRequest("GET", host, joinPathSegments("time", "0"), nil, nil)
}

// ParseTime parses the single-element array response `[<timetoken>]`,
// where the timetoken is a bare JSON number (17-digit Unix-like value),
// returned as its decimal string form to match how every other endpoint
// in this package represents timetokens.
func ParseTime(body []byte) (string, error) {
	var arr []json.Number
	if err := json.Unmarshal(body, &arr); err != nil || len(arr) != 1 {
		return "", pnerr.OutcomeFormatError.Error()
	}
	return arr[0].String(), nil
}
