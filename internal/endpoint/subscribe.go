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
	"net/url"
	"strconv"
	"strings"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/internal/subscribev2"
)

// BuildSubscribe builds `/v2/subscribe/<sub>/<chans>/0?tt=<tt>&tr=<r>&
// uuid=<u>&…` (spec.md 6). An empty timetoken initializes to "0" and
// region is omitted on the first subscribe, per spec.md 4.1's edge case.
func BuildSubscribe(id Identity, host string, channels []string, channelGroups []string, timetoken string, region int) httpwire.Request {
	path := joinPathSegments("v2", "subscribe", id.SubscribeKey, escapeJoin(channels), "0")

	if timetoken == "" {
		timetoken = "0"
	}
	extra := map[string]string{"tt": timetoken}
	if region > 0 {
		extra["tr"] = strconv.Itoa(region)
	}
	if len(channelGroups) > 0 {
		extra["channel-group"] = strings.Join(channelGroups, ",")
	}

	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

// escapeJoin percent-encodes each segment individually then rejoins with
// a literal comma, so a channel name cannot smuggle in a bare comma and
// be mistaken for an additional channel.
func escapeJoin(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, ",")
}

// ParseSubscribe decodes the subscribe v2 envelope, delegating entirely
// to internal/subscribev2 — the FSM's parse_response state calls this
// directly for KindSubscribeV2 transactions rather than going through the
// generic data/error extractor every other endpoint uses.
func ParseSubscribe(body []byte) (*subscribev2.Envelope, error) {
	return subscribev2.Parse(body)
}
