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

// Presence transaction kinds (heartbeat, here-now, where-now, set-state,
// get-state) named in spec.md 3's transaction-kind enumeration but not
// detailed in spec.md 6's representative path table; built here
// following the same `/v2/presence/sub-key/<sub>/channel/<chan>/…` shape
// documented for the rest of the presence family in the wider PubNub
// wire contract, since no original_source file for this endpoint was
// retrieved into the pack (see DESIGN.md).
package endpoint

import (
	"encoding/json"
	"strconv"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// BuildHeartbeat builds the presence heartbeat request (internal/heartbeat's
// Starter ultimately issues this on the context's idle tick).
func BuildHeartbeat(id Identity, host string, channels []string, heartbeatSeconds int) httpwire.Request {
	path := joinPathSegments("v2", "presence", "sub-key", id.SubscribeKey, "channel", escapeJoin(channels), "heartbeat")
	extra := map[string]string{"heartbeat": strconv.Itoa(heartbeatSeconds)}
	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

// ParseHeartbeat checks the heartbeat acknowledgement's status field,
// discarding the body otherwise (pbcc_parse_presence_heartbeat_response
// only ever reports success/failure, never a payload).
func ParseHeartbeat(body []byte) error {
	return errorForStatus(body)
}

// BuildHereNow builds the here-now occupancy request for one or more
// channels (empty channels queries the whole subscribe key).
func BuildHereNow(id Identity, host string, channels []string) httpwire.Request {
	segments := []string{"v2", "presence", "sub-key", id.SubscribeKey}
	if len(channels) > 0 {
		segments = append(segments, "channel", escapeJoin(channels))
	}
	return buildRequest("GET", host, joinPathSegments(segments...), id.commonParams(), nil)
}

// BuildWhereNow builds the where-now request for a given user id.
func BuildWhereNow(id Identity, host, uuid string) httpwire.Request {
	path := joinPathSegments("v2", "presence", "sub-key", id.SubscribeKey, "uuid", uuid)
	return buildRequest("GET", host, path, id.commonParams(), nil)
}

// BuildSetState builds the set-state request; state is the caller's
// already-marshaled JSON object.
func BuildSetState(id Identity, host string, channels []string, state json.RawMessage) httpwire.Request {
	path := joinPathSegments("v2", "presence", "sub-key", id.SubscribeKey, "channel", escapeJoin(channels), "uuid", id.UserID, "data")
	extra := map[string]string{"state": string(state)}
	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

// BuildGetState builds the get-state request for a given user id.
func BuildGetState(id Identity, host string, channels []string, uuid string) httpwire.Request {
	path := joinPathSegments("v2", "presence", "sub-key", id.SubscribeKey, "channel", escapeJoin(channels), "uuid", uuid)
	return buildRequest("GET", host, path, id.commonParams(), nil)
}

// HereNowEntry is one occupant reported by here-now.
type HereNowEntry struct {
	UUID  string          `json:"uuid"`
	State json.RawMessage `json:"state,omitempty"`
}

// HereNowResult is the parsed here-now response for a single channel.
type HereNowResult struct {
	Occupancy int
	Occupants []HereNowEntry
}

// ParseHereNow parses the here-now `{"status":200,"occupancy":N,
// "uuids":[...]}` response shape.
func ParseHereNow(body []byte) (HereNowResult, error) {
	if err := errorForStatus(body); err != nil {
		return HereNowResult{}, err
	}
	var resp struct {
		Occupancy int            `json:"occupancy"`
		UUIDs     []HereNowEntry `json:"uuids"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return HereNowResult{}, pnerr.OutcomeFormatError.Error(err)
	}
	return HereNowResult{Occupancy: resp.Occupancy, Occupants: resp.UUIDs}, nil
}

// ParseWhereNow parses `{"payload":{"channels":[...]}}`.
func ParseWhereNow(body []byte) ([]string, error) {
	if err := errorForStatus(body); err != nil {
		return nil, err
	}
	var resp struct {
		Payload struct {
			Channels []string `json:"channels"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pnerr.OutcomeFormatError.Error(err)
	}
	return resp.Payload.Channels, nil
}

// ParseSetState / ParseGetState share the same `{"status":200,
// "payload":{...}}` envelope.
func ParseSetState(body []byte) (json.RawMessage, error) { return parseStateEnvelope(body) }
func ParseGetState(body []byte) (json.RawMessage, error) { return parseStateEnvelope(body) }

func parseStateEnvelope(body []byte) (json.RawMessage, error) {
	if err := errorForStatus(body); err != nil {
		return nil, err
	}
	var resp struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pnerr.OutcomeFormatError.Error(err)
	}
	return resp.Payload, nil
}
