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
	"fmt"
	"net/url"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// PublishResult is the successful outcome of a publish transaction:
// [1, "Sent", "<timetoken>"].
type PublishResult struct {
	Timetoken string
	Info      string
}

// BuildPublish builds `/publish/<pub>/<sub>/0/<chan>/0/<msg>`
// (spec.md 6), GET-style with the already-JSON-encoded message embedded
// in the path, matching the original's simplest (non-POST) publish mode.
func BuildPublish(id Identity, host, channel string, jsonMessage []byte, storeInHistory bool) httpwire.Request {
	path := joinPathSegments("publish", id.PublishKey, id.SubscribeKey, "0", url.PathEscape(channel), "0", url.PathEscape(string(jsonMessage)))
	params := id.commonParams()
	if !storeInHistory {
		params["store"] = "0"
	}
	return buildRequest("GET", host, path, params, nil)
}

// ParsePublish parses the publish response array [1, "Sent", "timetoken"]
// (first element 1 means success; a non-1 first element is
// PUBLISH_FAILED; a malformed or short array is FORMAT_ERROR).
func ParsePublish(body []byte) (PublishResult, error) {
	if err := errorForStatus(body); err != nil {
		return PublishResult{}, err
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err != nil || len(arr) < 3 {
		return PublishResult{}, pnerr.OutcomeFormatError.Error()
	}

	var code int
	if err := json.Unmarshal(arr[0], &code); err != nil {
		return PublishResult{}, pnerr.OutcomeFormatError.Error()
	}
	if code != 1 {
		var info string
		_ = json.Unmarshal(arr[1], &info)
		return PublishResult{}, pnerr.OutcomePublishFailed.Error(fmt.Errorf("%s", info))
	}

	var info, tt string
	_ = json.Unmarshal(arr[1], &info)
	if err := json.Unmarshal(arr[2], &tt); err != nil {
		return PublishResult{}, pnerr.OutcomeFormatError.Error()
	}

	return PublishResult{Timetoken: tt, Info: info}, nil
}
