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

// History, grounded on pbcc_actions_api.c's pbcc_history_with_actions_prep /
// pbcc_parse_history_with_actions_response (spec.md 6: "History v3 with
// actions"). Plain history shares the same start/end/limit shape one level
// up the path, under /v2/history rather than /v3/history-with-actions.
package endpoint

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// BuildHistory builds `/v2/history/sub-key/<sub>/channel/<chan>`.
func BuildHistory(id Identity, host, channel, start, end string, limit int) httpwire.Request {
	path := joinPathSegments("v2", "history", "sub-key", id.SubscribeKey, "channel", url.PathEscape(channel))
	return buildRequest("GET", host, path, mergeParams(id, historyParams(start, end, limit)), nil)
}

// BuildHistoryWithActions builds `/v3/history-with-actions/sub-key/<sub>/
// channel/<chan>` (spec.md 6).
func BuildHistoryWithActions(id Identity, host, channel, start, end string, limit int) httpwire.Request {
	path := joinPathSegments("v3", "history-with-actions", "sub-key", id.SubscribeKey, "channel", url.PathEscape(channel))
	return buildRequest("GET", host, path, mergeParams(id, historyParams(start, end, limit)), nil)
}

func historyParams(start, end string, limit int) map[string]string {
	extra := map[string]string{}
	if start != "" {
		extra["start"] = start
	}
	if end != "" {
		extra["end"] = end
	}
	if limit > 0 {
		if limit > maxActionsLimit {
			limit = maxActionsLimit
		}
		extra["limit"] = strconv.Itoa(limit)
	}
	return extra
}

// HistoryMessage is one entry of a plain history response's message array.
type HistoryMessage struct {
	Timetoken string
	Message   json.RawMessage
}

// ParseHistory parses the classic `[[messages...], start, end]` array
// shape (spec.md does not name a dedicated outcome for this one: reuses
// OutcomeFormatError like the rest of the package on malformed bodies).
func ParseHistory(body []byte) ([]HistoryMessage, error) {
	if err := errorForStatus(body); err != nil {
		return nil, err
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err != nil || len(arr) < 1 {
		return nil, pnerr.OutcomeFormatError.Error()
	}
	var messages []json.RawMessage
	if err := json.Unmarshal(arr[0], &messages); err != nil {
		return nil, pnerr.OutcomeFormatError.Error()
	}
	out := make([]HistoryMessage, len(messages))
	for i, m := range messages {
		out[i] = HistoryMessage{Message: m}
	}
	return out, nil
}

// HistoryWithActionsResult is the parsed `{"channels":{...}}` shape
// (pbcc_parse_history_with_actions_response's "channels" field).
type HistoryWithActionsResult struct {
	Channels json.RawMessage
}

// ParseHistoryWithActions mirrors pbcc_parse_history_with_actions_response:
// look for top-level "channels", falling back to "error_message".
func ParseHistoryWithActions(body []byte) (HistoryWithActionsResult, error) {
	if len(body) < 2 || body[0] != '{' {
		return HistoryWithActionsResult{}, pnerr.OutcomeFormatError.Error()
	}
	var envelope struct {
		Channels     json.RawMessage `json:"channels"`
		ErrorMessage string          `json:"error_message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return HistoryWithActionsResult{}, pnerr.OutcomeFormatError.Error(err)
	}
	if len(envelope.Channels) > 0 {
		return HistoryWithActionsResult{Channels: envelope.Channels}, nil
	}
	if envelope.ErrorMessage != "" {
		return HistoryWithActionsResult{}, pnerr.OutcomeActionsAPIError.Error(fmt.Errorf("%s", envelope.ErrorMessage))
	}
	return HistoryWithActionsResult{}, pnerr.OutcomeFormatError.Error()
}
