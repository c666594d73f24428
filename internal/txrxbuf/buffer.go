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

// Package txrxbuf is the single aliasing buffer a Context reuses across
// its lifetime: one growable []byte holds the outgoing request while it
// is being built, then is overwritten in place by the response once the
// request has been sent, exactly as pubnub_t's http_buf/http_reply
// aliasing works in the original. Reusing one buffer instead of
// allocating per-transaction is what keeps a long-lived Context's steady
// state allocation-free outside of per-message decode spans.
package txrxbuf

// Buffer is not safe for concurrent use; callers serialize access to it
// through the FSM's single-owner discipline (spec.md 4 — one transaction
// owns the context's buffer at a time).
type Buffer struct {
	data []byte
	// rxEnd marks how much of data is the current response; Reset must
	// be called before a new request reuses the buffer, matching the
	// RX_BUFF_NOT_EMPTY outcome the original returns when a caller tries
	// to start a transaction while a previous response is still unread.
	rxEnd int
}

// New returns a Buffer with capacity pre-reserved, grounded on the
// teacher's bufferReadCloser grow-on-demand discipline.
func New(initialCapacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, initialCapacity)}
}

// Reset empties the buffer for a new request/response cycle.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.rxEnd = 0
}

// Empty reports whether the previous response has been fully consumed
// (Reset called, or nothing ever written).
func (b *Buffer) Empty() bool {
	return b.rxEnd == 0
}

// Append grows the buffer and appends p, returning the offset p now
// starts at — used while assembling the outgoing request line, headers,
// and body in sequence.
func (b *Buffer) Append(p []byte) int {
	start := len(b.data)
	b.data = append(b.data, p...)
	return start
}

// SetResponse replaces the buffer's content with a freshly read response
// and marks it non-empty; subsequent decoders (subscribev2, etc.) borrow
// slices out of Bytes() rather than copying.
func (b *Buffer) SetResponse(p []byte) {
	b.data = append(b.data[:0], p...)
	b.rxEnd = len(b.data)
}

// Bytes returns the buffer's current contents. The returned slice is
// aliased, not copied — callers that need to retain data past the next
// Reset must copy it themselves.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the buffer's current capacity, for TxBuffTooSmall checks
// before building a request the teacher knows will not fit.
func (b *Buffer) Cap() int {
	return cap(b.data)
}
