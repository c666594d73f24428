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

// Object metadata (users/spaces, called UUID/channel metadata in later
// PubNub docs), grounded on pbcc_objects_api.c's pbcc_get_users_prep /
// pbcc_create_user_prep / pbcc_get_user_prep / pbcc_update_user_prep /
// pbcc_delete_user_prep and their pbcc_*_space_prep mirrors. Naming kept
// as "users"/"spaces" to match the original's path segments; every
// operation shares the same include/limit/start/end/count query-param
// shape (append_url_param_include / APPEND_URL_PARAM_TRIBOOL_M).
package endpoint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

const maxObjectsLimit = 100

// ObjectListOptions mirrors the shared pbcc_get_users_prep/
// pbcc_get_spaces_prep parameter set.
type ObjectListOptions struct {
	Include []string
	Limit   int
	Start   string
	End     string
	Count   bool
}

func (o ObjectListOptions) params() map[string]string {
	extra := map[string]string{}
	if o.Limit > 0 {
		limit := o.Limit
		if limit > maxObjectsLimit {
			limit = maxObjectsLimit
		}
		extra["limit"] = strconv.Itoa(limit)
	}
	if o.Start != "" {
		extra["start"] = o.Start
	} else if o.End != "" {
		// pbcc_get_users_prep only sends "end" when "start" is absent.
		extra["end"] = o.End
	}
	if o.Count {
		extra["count"] = "true"
	}
	if len(o.Include) > 0 {
		extra["include"] = strings.Join(o.Include, ",")
	}
	return extra
}

// BuildGetUsers builds `/v1/objects/<sub>/users`.
func BuildGetUsers(id Identity, host string, opts ObjectListOptions) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "users")
	return buildRequest("GET", host, path, mergeParams(id, opts.params()), nil)
}

// BuildCreateUser builds the user-creation POST, user object already
// marshaled by the caller.
func BuildCreateUser(id Identity, host string, include []string, userObj json.RawMessage) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "users")
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("POST", host, path, mergeParams(id, extra), userObj)
}

// BuildGetUser builds `/v1/objects/<sub>/users/<id>`.
func BuildGetUser(id Identity, host, userID string, include []string) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "users", userID)
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

// BuildUpdateUser builds the user-update PATCH.
func BuildUpdateUser(id Identity, host, userID string, include []string, userObj json.RawMessage) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "users", userID)
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("PATCH", host, path, mergeParams(id, extra), userObj)
}

// BuildDeleteUser builds the user-removal DELETE.
func BuildDeleteUser(id Identity, host, userID string) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "users", userID)
	return buildRequest("DELETE", host, path, id.commonParams(), nil)
}

// BuildGetSpaces / BuildCreateSpace / BuildGetSpace / BuildUpdateSpace /
// BuildDeleteSpace mirror the user operations one-for-one
// (pbcc_get_spaces_prep / pbcc_create_space_prep / pbcc_get_space_prep).
func BuildGetSpaces(id Identity, host string, opts ObjectListOptions) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "spaces")
	return buildRequest("GET", host, path, mergeParams(id, opts.params()), nil)
}

func BuildCreateSpace(id Identity, host string, include []string, spaceObj json.RawMessage) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "spaces")
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("POST", host, path, mergeParams(id, extra), spaceObj)
}

func BuildGetSpace(id Identity, host, spaceID string, include []string) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "spaces", spaceID)
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

func BuildUpdateSpace(id Identity, host, spaceID string, include []string, spaceObj json.RawMessage) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "spaces", spaceID)
	extra := ObjectListOptions{Include: include}.params()
	return buildRequest("PATCH", host, path, mergeParams(id, extra), spaceObj)
}

func BuildDeleteSpace(id Identity, host, spaceID string) httpwire.Request {
	path := joinPathSegments("v1", "objects", id.SubscribeKey, "spaces", spaceID)
	return buildRequest("DELETE", host, path, id.commonParams(), nil)
}

// ObjectListResult is the decoded `{"data":[...],"totalCount":N,
// "next":"...","prev":"..."}` page.
type ObjectListResult struct {
	Data       json.RawMessage
	TotalCount int
	Next       string
	Prev       string
}

// ParseObjectList parses a users/spaces listing response.
func ParseObjectList(body []byte) (ObjectListResult, error) {
	if err := errorForStatus(body); err != nil {
		return ObjectListResult{}, err
	}
	var resp struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int             `json:"totalCount"`
		Next       string          `json:"next"`
		Prev       string          `json:"prev"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ObjectListResult{}, pnerr.OutcomeFormatError.Error(err)
	}
	return ObjectListResult{Data: resp.Data, TotalCount: resp.TotalCount, Next: resp.Next, Prev: resp.Prev}, nil
}

// ParseObject parses a single-object `{"data":{...}}` response, shared by
// get/create/update for both users and spaces.
func ParseObject(body []byte) (json.RawMessage, error) {
	raw, isData, err := dataOrError(body)
	if err != nil {
		return nil, err
	}
	if !isData {
		return nil, pnerr.OutcomeObjectsAPIError.Error(fmt.Errorf("%s", string(raw)))
	}
	return raw, nil
}

// ParseObjectDelete parses the delete acknowledgement
// `{"status":200,"data":{"message":"Delete Successful"}}`; a non-2xx
// status or missing "status" is a format error.
func ParseObjectDelete(body []byte) error {
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return pnerr.OutcomeFormatError.Error(err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return pnerr.OutcomeFormatError.Error()
	}
	return nil
}
