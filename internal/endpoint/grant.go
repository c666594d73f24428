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

// Grant-token (PAM v3), grounded on pbcc_grant_token_api.c's
// pbcc_grant_token_prep (path `/v3/pam/<sub>/grant`, POST, signed when a
// secret key is configured) and pbcc_parse_grant_token_api_response
// (403 short-circuit, then data-or-error) and pbcc_get_grant_token's
// "data.token" extraction. parseGrantResponse is shared with revoke.go,
// whose pbcc_parse_revoke_token_response follows the identical shape.
package endpoint

import (
	"encoding/json"
	"fmt"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// BuildGrantToken builds the token-grant POST request, signed via
// signRequest when id.SecretKey is set. permissionObject is the
// caller's already-marshaled PAM v3 permission document.
func BuildGrantToken(id Identity, host string, permissionObject json.RawMessage, now TimeSource) httpwire.Request {
	path := joinPathSegments("v3", "pam", id.SubscribeKey, "grant")
	params := id.commonParams()
	if id.SecretKey != "" {
		for k, v := range signRequest("POST", id.SubscribeKey, path, params, permissionObject, id.SecretKey, now) {
			params[k] = v
		}
	}
	return buildRequest("POST", host, path, params, permissionObject)
}

// ParseGrantToken parses the grant-token response and extracts
// "data.token" (pbcc_get_grant_token).
func ParseGrantToken(body []byte) (string, error) {
	raw, err := parseGrantResponse(body, pnerr.OutcomeGrantAPIError)
	if err != nil {
		return "", err
	}
	var data struct {
		Token string `json:"token"`
	}
	if e := json.Unmarshal(raw, &data); e != nil {
		return "", pnerr.OutcomeFormatError.Error(e)
	}
	return data.Token, nil
}

// parseGrantResponse is pbcc_parse_grant_token_api_response /
// pbcc_parse_revoke_token_response's shared shape: 403 short-circuit,
// then "data" else "error". errOutcome lets callers report
// OutcomeGrantAPIError or OutcomeRevokeAPIError as appropriate.
func parseGrantResponse(body []byte, errOutcome pnerr.CodeError) ([]byte, error) {
	if err := errorForStatus(body); err != nil {
		return nil, err
	}
	raw, isData, err := dataOrError(body)
	if err != nil {
		return nil, err
	}
	if !isData {
		return nil, errOutcome.Error(fmt.Errorf("%s", string(raw)))
	}
	return raw, nil
}
