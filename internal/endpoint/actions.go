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

// Message actions (add/get/remove), grounded on pbcc_actions_api.c's
// pbcc_form_the_action_object / pbcc_add_action_prep /
// pbcc_remove_action_prep / pbcc_get_actions_prep /
// pbcc_get_actions_more_prep / pbcc_parse_actions_api_response.
package endpoint

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/pnerr"
)

// ActionType mirrors pubnub_action_type (pbactypReaction/pbactypReceipt/pbactypCustom).
type ActionType int

const (
	ActionReaction ActionType = iota
	ActionReceipt
	ActionCustom
)

func (t ActionType) literal() string {
	switch t {
	case ActionReaction:
		return "reaction"
	case ActionReceipt:
		return "receipt"
	case ActionCustom:
		return "custom"
	default:
		return ""
	}
}

// Action is one message action, matching the object pbcc_form_the_action_object
// assembles: {"type":"...","value":<raw>,"uuid":"..."}.
type Action struct {
	Type  ActionType
	Value json.RawMessage
	UUID  string
}

// MarshalJSON renders the action object the way pbcc_form_the_action_object
// snprintf's it, with Value embedded unquoted (it is already a JSON value).
func (a Action) MarshalJSON() ([]byte, error) {
	lit := a.Type.literal()
	if lit == "" {
		return nil, pnerr.OutcomeFormatError.Error(fmt.Errorf("unknown action type %d", a.Type))
	}
	return []byte(fmt.Sprintf(`{"type":%q,"value":%s,"uuid":%q}`, lit, string(a.Value), a.UUID)), nil
}

// BuildAddAction builds `/v1/message-actions/<sub>/channel/<chan>/message/<tt>`.
func BuildAddAction(id Identity, host, channel, messageTimetoken string, action Action) (httpwire.Request, error) {
	action.UUID = id.UserID
	body, err := json.Marshal(action)
	if err != nil {
		return httpwire.Request{}, err
	}
	path := joinPathSegments("v1", "message-actions", id.SubscribeKey, "channel", url.PathEscape(channel), "message", url.PathEscape(messageTimetoken))
	return buildRequest("POST", host, path, id.commonParams(), body), nil
}

// BuildRemoveAction builds the action-removal DELETE request.
func BuildRemoveAction(id Identity, host, channel, messageTimetoken, actionTimetoken string) httpwire.Request {
	path := joinPathSegments("v1", "message-actions", id.SubscribeKey, "channel", url.PathEscape(channel),
		"message", url.PathEscape(messageTimetoken), "action", url.PathEscape(actionTimetoken))
	return buildRequest("DELETE", host, path, id.commonParams(), nil)
}

// BuildGetActions builds the action-listing request, start/end/limit all
// optional per pbcc_get_actions_prep (limit capped at maxActionsLimit,
// matching MAX_ACTIONS_LIMIT).
const maxActionsLimit = 100

func BuildGetActions(id Identity, host, channel, start, end string, limit int) httpwire.Request {
	path := joinPathSegments("v1", "message-actions", id.SubscribeKey, "channel", url.PathEscape(channel))
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
	return buildRequest("GET", host, path, mergeParams(id, extra), nil)
}

// AddActionResult carries the fields pbcc_get_message_timetoken /
// pbcc_get_action_timetoken extract from a successful add-action response.
type AddActionResult struct {
	MessageTimetoken string
	ActionTimetoken  string
}

// ParseAddAction parses `{"data":{"messageTimetoken":"...",
// "actionTimetoken":"..."}}`.
func ParseAddAction(body []byte) (AddActionResult, error) {
	raw, isData, err := dataOrError(body)
	if err != nil {
		return AddActionResult{}, err
	}
	if !isData {
		return AddActionResult{}, pnerr.OutcomeActionsAPIError.Error(fmt.Errorf("%s", string(raw)))
	}
	var data struct {
		MessageTimetoken string `json:"messageTimetoken"`
		ActionTimetoken  string `json:"actionTimetoken"`
	}
	if e := json.Unmarshal(raw, &data); e != nil {
		return AddActionResult{}, pnerr.OutcomeFormatError.Error(e)
	}
	return AddActionResult{MessageTimetoken: data.MessageTimetoken, ActionTimetoken: data.ActionTimetoken}, nil
}

// ActionsPage is the decoded `{"data":[...],"more":{"url":"..."}}` envelope;
// More is empty once pbcc_get_actions_more_prep would report PNR_GOT_ALL_ACTIONS.
type ActionsPage struct {
	Data json.RawMessage
	More string
}

// ParseActions parses the get-actions / history-with-actions-style
// `data`-or-`error` envelope plus an optional pagination `more.url`.
func ParseActions(body []byte) (ActionsPage, error) {
	raw, isData, err := dataOrError(body)
	if err != nil {
		return ActionsPage{}, err
	}
	if !isData {
		return ActionsPage{}, pnerr.OutcomeActionsAPIError.Error(fmt.Errorf("%s", string(raw)))
	}
	var envelope struct {
		More struct {
			URL string `json:"url"`
		} `json:"more"`
	}
	_ = json.Unmarshal(body, &envelope)
	return ActionsPage{Data: raw, More: envelope.More.URL}, nil
}
