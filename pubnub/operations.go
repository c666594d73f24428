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

// Operations: one public method per transaction kind, each building an
// internal/endpoint request and handing it to runTransaction with the
// matching parser. Every non-subscribe operation uses
// c.cfg.NonSubscribeTimeout; Subscribe (subscribe.go) uses
// c.cfg.SubscribeTimeout instead, per spec.md 2.1.
package pubnub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nabbar/pncore/internal/endpoint"
	"github.com/nabbar/pncore/internal/fsm"
)

// now is endpoint.TimeSource's production implementation: Unix seconds,
// matching pbcc_sign_request's "time(NULL)" input.
func now() int64 { return time.Now().Unix() }

// Publish sends message (already JSON-encoded by the caller) on channel,
// transparently running it through the configured cipher first (spec.md
// 7's crypto envelope). storeInHistory maps to the "store" query param.
func (c *Context) Publish(ctx context.Context, channel string, message json.RawMessage, storeInHistory bool) (endpoint.PublishResult, error) {
	payload, err := c.encrypt(message)
	if err != nil {
		return endpoint.PublishResult{}, err
	}
	req := endpoint.BuildPublish(c.id, c.host, channel, payload, storeInHistory)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParsePublish)
}

// Time issues the unauthenticated time-token request.
func (c *Context) Time(ctx context.Context) (string, error) {
	req := endpoint.BuildTime(c.host)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseTime)
}

// HereNow reports current occupancy for channels (all subscribed channels
// on this subscribe key when channels is empty).
func (c *Context) HereNow(ctx context.Context, channels []string) (endpoint.HereNowResult, error) {
	req := endpoint.BuildHereNow(c.id, c.host, channels)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseHereNow)
}

// WhereNow reports the channels uuid is currently present on.
func (c *Context) WhereNow(ctx context.Context, uuid string) ([]string, error) {
	req := endpoint.BuildWhereNow(c.id, c.host, uuid)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseWhereNow)
}

// SetState attaches state (already-marshaled JSON) to this context's uuid
// on channels.
func (c *Context) SetState(ctx context.Context, channels []string, state json.RawMessage) (json.RawMessage, error) {
	req := endpoint.BuildSetState(c.id, c.host, channels, state)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseSetState)
}

// GetState reads uuid's state on channels.
func (c *Context) GetState(ctx context.Context, channels []string, uuid string) (json.RawMessage, error) {
	req := endpoint.BuildGetState(c.id, c.host, channels, uuid)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseGetState)
}

// History fetches classic message history for channel.
func (c *Context) History(ctx context.Context, channel, start, end string, limit int) ([]endpoint.HistoryMessage, error) {
	req := endpoint.BuildHistory(c.id, c.host, channel, start, end, limit)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseHistory)
}

// HistoryWithActions fetches history enriched with message actions
// (spec.md 6's "History v3 with actions").
func (c *Context) HistoryWithActions(ctx context.Context, channel, start, end string, limit int) (endpoint.HistoryWithActionsResult, error) {
	req := endpoint.BuildHistoryWithActions(c.id, c.host, channel, start, end, limit)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseHistoryWithActions)
}

// AddAction attaches a message action (reaction/receipt/custom) to the
// message identified by messageTimetoken.
func (c *Context) AddAction(ctx context.Context, channel, messageTimetoken string, action endpoint.Action) (endpoint.AddActionResult, error) {
	req, err := endpoint.BuildAddAction(c.id, c.host, channel, messageTimetoken, action)
	if err != nil {
		return endpoint.AddActionResult{}, err
	}
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseAddAction)
}

// RemoveAction deletes a previously added message action.
func (c *Context) RemoveAction(ctx context.Context, channel, messageTimetoken, actionTimetoken string) error {
	req := endpoint.BuildRemoveAction(c.id, c.host, channel, messageTimetoken, actionTimetoken)
	_, err := runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, func(body []byte) (struct{}, error) {
		_, err := endpoint.ParseAddAction(body)
		return struct{}{}, err
	})
	return err
}

// GetActions lists message actions for channel, optionally paginated.
func (c *Context) GetActions(ctx context.Context, channel, start, end string, limit int) (endpoint.ActionsPage, error) {
	req := endpoint.BuildGetActions(c.id, c.host, channel, start, end, limit)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseActions)
}

// GetUsers lists user (UUID metadata) objects.
func (c *Context) GetUsers(ctx context.Context, opts endpoint.ObjectListOptions) (endpoint.ObjectListResult, error) {
	req := endpoint.BuildGetUsers(c.id, c.host, opts)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObjectList)
}

// CreateUser creates a user object, userObj already marshaled by the caller.
func (c *Context) CreateUser(ctx context.Context, include []string, userObj json.RawMessage) (json.RawMessage, error) {
	req := endpoint.BuildCreateUser(c.id, c.host, include, userObj)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

// GetUser fetches a single user object by id.
func (c *Context) GetUser(ctx context.Context, userID string, include []string) (json.RawMessage, error) {
	req := endpoint.BuildGetUser(c.id, c.host, userID, include)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

// UpdateUser patches a user object.
func (c *Context) UpdateUser(ctx context.Context, userID string, include []string, userObj json.RawMessage) (json.RawMessage, error) {
	req := endpoint.BuildUpdateUser(c.id, c.host, userID, include, userObj)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

// DeleteUser removes a user object.
func (c *Context) DeleteUser(ctx context.Context, userID string) error {
	req := endpoint.BuildDeleteUser(c.id, c.host, userID)
	_, err := runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, func(body []byte) (struct{}, error) {
		return struct{}{}, endpoint.ParseObjectDelete(body)
	})
	return err
}

// GetSpaces / CreateSpace / GetSpace / UpdateSpace / DeleteSpace mirror the
// user operations one-for-one (spec.md 3's object-metadata family, space
// side).
func (c *Context) GetSpaces(ctx context.Context, opts endpoint.ObjectListOptions) (endpoint.ObjectListResult, error) {
	req := endpoint.BuildGetSpaces(c.id, c.host, opts)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObjectList)
}

func (c *Context) CreateSpace(ctx context.Context, include []string, spaceObj json.RawMessage) (json.RawMessage, error) {
	req := endpoint.BuildCreateSpace(c.id, c.host, include, spaceObj)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

func (c *Context) GetSpace(ctx context.Context, spaceID string, include []string) (json.RawMessage, error) {
	req := endpoint.BuildGetSpace(c.id, c.host, spaceID, include)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

func (c *Context) UpdateSpace(ctx context.Context, spaceID string, include []string, spaceObj json.RawMessage) (json.RawMessage, error) {
	req := endpoint.BuildUpdateSpace(c.id, c.host, spaceID, include, spaceObj)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseObject)
}

func (c *Context) DeleteSpace(ctx context.Context, spaceID string) error {
	req := endpoint.BuildDeleteSpace(c.id, c.host, spaceID)
	_, err := runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, func(body []byte) (struct{}, error) {
		return struct{}{}, endpoint.ParseObjectDelete(body)
	})
	return err
}

// GrantToken requests a PAM v3 token scoped by permissionObject (already
// marshaled by the caller).
func (c *Context) GrantToken(ctx context.Context, permissionObject json.RawMessage) (string, error) {
	req := endpoint.BuildGrantToken(c.id, c.host, permissionObject, now)
	return runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseGrantToken)
}

// RevokeToken invalidates a previously granted PAM v3 token.
func (c *Context) RevokeToken(ctx context.Context, token string) error {
	req := endpoint.BuildRevokeToken(c.id, c.host, token, now)
	_, err := runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, endpoint.ParseRevokeToken)
	return err
}
