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

// Revoke-token, grounded on pbcc_revoke_token_api.c's
// pbcc_revoke_token_prep (path `/v3/pam/<sub>/grant/<token>`, DELETE,
// signed when a secret key is configured) and
// pbcc_parse_revoke_token_response (403 short-circuit then data-or-error,
// shared with grant.go).
package endpoint

import (
	"net/url"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// BuildRevokeToken builds the token-revocation DELETE request, signed
// via signRequest when id.SecretKey is set (pbcc_revoke_token_prep's
// "#if PUBNUB_CRYPTO_API" signing branch).
func BuildRevokeToken(id Identity, host, token string, now TimeSource) httpwire.Request {
	path := joinPathSegments("v3", "pam", id.SubscribeKey, "grant", url.PathEscape(token))
	params := id.commonParams()
	if id.SecretKey != "" {
		for k, v := range signRequest("DELETE", id.SubscribeKey, path, params, nil, id.SecretKey, now) {
			params[k] = v
		}
	}
	return buildRequest("DELETE", host, path, params, nil)
}

// ParseRevokeToken parses the revoke-token response, sharing
// parseGrantResponse's 403/data-or-error shape with grant.go.
func ParseRevokeToken(body []byte) ([]byte, error) {
	return parseGrantResponse(body, pnerr.OutcomeRevokeAPIError)
}
