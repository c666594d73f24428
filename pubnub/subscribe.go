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
	"github.com/nabbar/pncore/internal/subscribev2"
)

// Message is one decoded, decrypted subscribe-v2 message delivered to a
// Listener. Fields alias subscribev2.Message's byte slices copied to
// strings/owned slices, safe to retain past the subscribe loop's next
// iteration (subscribev2.Message's own doc comment warns its fields alias
// the response buffer).
type Message struct {
	Channel   string
	Payload   []byte
	Type      subscribev2.MessageType
	Timetoken string
	Publisher string
	Metadata  []byte
}

// Listener receives messages as Subscribe decodes them. It runs
// synchronously on the subscribe loop's own goroutine — a slow Listener
// delays the next subscribe request, matching the original's single-
// threaded callback delivery contract.
type Listener func(Message)

// Subscribe runs the subscribe loop until ctx is cancelled or any
// transaction, decode or decrypt step returns an error (a failed
// transaction is returned, not retried): build the subscribe request
// from the context's current cursor, decode the v2 envelope, decrypt and
// deliver each message to onMessage, then loop with the envelope's
// returned cursor (spec.md 1: "feeding the returned cursor back into the
// next request"). The channel/channel-group set driving this loop is
// also what internal/heartbeat's auto-heartbeat tick targets.
func (c *Context) Subscribe(ctx context.Context, channels []string, channelGroups []string, onMessage Listener) error {
	c.subMu.Lock()
	c.subChannels = channels
	c.subGroups = channelGroups
	c.subMu.Unlock()

	defer func() {
		c.subMu.Lock()
		c.subChannels = nil
		c.subGroups = nil
		c.subMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		envelope, err := c.subscribeOnce(ctx, channels, channelGroups)
		if err != nil {
			return err
		}

		for !envelope.Done() {
			msg, err := envelope.Next()
			if err != nil {
				return err
			}
			if msg == nil {
				break
			}
			if err := c.deliver(onMessage, msg); err != nil {
				return err
			}
		}

		c.cursor = Cursor{Timetoken: envelope.Timetoken, Region: envelope.Region}
	}
}

func (c *Context) subscribeOnce(ctx context.Context, channels, channelGroups []string) (*subscribev2.Envelope, error) {
	req := endpoint.BuildSubscribe(c.id, c.host, channels, channelGroups, c.cursor.Timetoken, c.cursor.Region)
	return runTransaction(c, ctx, fsm.KindSubscribeV2, req, c.cfg.SubscribeTimeout, endpoint.ParseSubscribe)
}

func (c *Context) deliver(onMessage Listener, msg *subscribev2.Message) error {
	payload, err := c.decrypt(msg.Payload)
	if err != nil {
		return err
	}
	onMessage(Message{
		Channel:   string(msg.Channel),
		Payload:   payload,
		Type:      msg.Type,
		Timetoken: string(msg.Timetoken),
		Publisher: string(msg.Publisher),
		Metadata:  append([]byte(nil), msg.Metadata...),
	})
	return nil
}
