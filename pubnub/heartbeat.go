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

package pubnub

import (
	"context"

	"github.com/nabbar/pncore/internal/endpoint"
	"github.com/nabbar/pncore/internal/fsm"
)

// defaultPresenceHeartbeatSeconds is the "heartbeat" query parameter value
// sent with every presence heartbeat, matching the original library's
// documented 300s default presence timeout (pnconf carries no dedicated
// knob for this — see DESIGN.md).
const defaultPresenceHeartbeatSeconds = 300

// startAutoHeartbeat is internal/heartbeat.Thumper's Starter callback,
// wired in by New. It fires a heartbeat transaction for whatever channels
// the context is currently subscribed to, returning false (dropping the
// tick per spec.md 4.8/9) when a transaction is already in flight or
// there is nothing to heartbeat for.
func (c *Context) startAutoHeartbeat() bool {
	channels, groups := c.subscribedChannels()
	if len(channels) == 0 && len(groups) == 0 {
		return false
	}

	if !c.txMu.TryLock() {
		return false
	}
	c.txMu.Unlock()

	go func() {
		_ = c.Heartbeat(context.Background(), channels)
	}()
	return true
}

// subscribedChannels returns a snapshot of the channels currently driving
// the subscribe loop (set by Subscribe for its duration, cleared when it
// returns).
func (c *Context) subscribedChannels() ([]string, []string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return append([]string(nil), c.subChannels...), append([]string(nil), c.subGroups...)
}

// Heartbeat issues a presence heartbeat for channels, the public operation
// spec.md 3 lists alongside HereNow/WhereNow/SetState/GetState. It is also
// what the auto-heartbeat thumper calls on every idle tick.
func (c *Context) Heartbeat(ctx context.Context, channels []string) error {
	req := endpoint.BuildHeartbeat(c.id, c.host, channels, defaultPresenceHeartbeatSeconds)
	_, err := runTransaction(c, ctx, fsm.KindGeneric, req, c.cfg.NonSubscribeTimeout, func(body []byte) (struct{}, error) {
		return struct{}{}, endpoint.ParseHeartbeat(body)
	})
	return err
}
