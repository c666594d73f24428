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

// Package endpoint builds the URL/body for one transaction kind and
// parses its response, one file per operation — the Go equivalent of the
// original's pbcc_*_prep / pbcc_parse_*_response pairs (one per
// pbcc_*_api.c). Every builder returns an internal/httpwire.Request ready
// for the FSM's send_request state; every parser is handed the decrypted,
// ungzipped response body and returns either a typed result or a
// pnerr.Error carrying the matching outcome code.
package endpoint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// Identity carries the per-context fields every request needs, grounded
// on pbcc_context's subscribe_key/publish_key/uuid/auth/secret_key and
// pubnub_uname()'s pnsdk identifier.
type Identity struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UserID       string
	AuthKey      string
	SDKName      string // "pnsdk" query param, e.g. "pncore-go/1.0"
}

// commonParams returns the pnsdk/uuid/auth query parameters every
// endpoint adds (spec.md 6: "Query parameters common to all").
func (id Identity) commonParams() map[string]string {
	p := map[string]string{}
	if id.SDKName != "" {
		p["pnsdk"] = id.SDKName
	}
	if id.UserID != "" {
		p["uuid"] = id.UserID
	}
	if id.AuthKey != "" {
		p["auth"] = id.AuthKey
	}
	return p
}

// mergeParams layers extra over the identity's common params, extra
// winning on key collision.
func mergeParams(id Identity, extra map[string]string) map[string]string {
	out := id.commonParams()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// joinPathSegments URL-path-joins segments without encoding them (each
// endpoint file is responsible for escaping the dynamic segments it
// inserts, mirroring APPEND_URL_ENCODED_M's explicit per-segment
// encoding rather than encoding the whole path at once).
func joinPathSegments(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

// errorForStatus reports the generic 403/format-error short-circuit
// shared by every endpoint's parser (pbjson_value_for_field_found(&elem,
// "status", "403") in every pbcc_parse_*_response), before the
// caller-specific "data"/"error" field extraction.
func errorForStatus(body []byte) error {
	if len(body) < 2 || (body[0] != '{' && body[0] != '[') {
		return pnerr.OutcomeFormatError.Error()
	}
	if containsUnquotedField(body, "status", "403") {
		return pnerr.OutcomeAccessDenied.Error()
	}
	return nil
}

// containsUnquotedField reports whether body contains `"key":value` with
// value matching literally (used for numeric status codes, not quoted
// strings) — a minimal byte-scan sufficient for the fixed field names
// parsers check, avoiding a dependency on encoding/json or
// internal/subscribev2's full lazy iterator for this one-off lookup.
func containsUnquotedField(body []byte, key, value string) bool {
	needle := fmt.Sprintf(`"%s":%s`, key, value)
	return strings.Contains(string(body), needle)
}

// dataOrError extracts either the top-level "data" object/value or,
// failing that, the "error" object, mirroring every
// pbcc_parse_*_api_response's jonmpKeyNotFound fallback. Returns the raw
// bytes of whichever field was found and whether it was "data". Unlike
// internal/subscribev2, these envelopes are small and not iterated
// per-message, so plain encoding/json is the right tool here.
func dataOrError(body []byte) (raw json.RawMessage, isData bool, err error) {
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	if e := json.Unmarshal(body, &envelope); e != nil {
		return nil, false, pnerr.OutcomeFormatError.Error(e)
	}
	if len(envelope.Data) > 0 {
		return envelope.Data, true, nil
	}
	if len(envelope.Error) > 0 {
		return envelope.Error, false, nil
	}
	return nil, false, pnerr.OutcomeFormatError.Error()
}

// buildRequest assembles a GET/POST/DELETE httpwire.Request with sorted
// query params, matching SORT_URL_PARAMETERS' deterministic ordering
// (used when the request is signed, and applied uniformly here for
// determinism in tests).
func buildRequest(method, host, path string, params map[string]string, body []byte) httpwire.Request {
	return httpwire.Request{
		Method: method,
		Path:   path,
		Query:  params,
		Host:   host,
		Body:   body,
	}
}

// sortedKeys is a small helper kept for callers that need deterministic
// iteration over a params map outside of Request.Encode (e.g. request
// signing, which canonicalizes the same parameter set Encode sorts).
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
