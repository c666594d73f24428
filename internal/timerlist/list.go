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

// Package timerlist is a delta-encoded doubly linked list of pending
// transaction timeouts, one node per in-flight context. It is ported
// field-for-field from pubnub_timer_list.c: each node stores only the
// milliseconds left *after* the node before it expires, so advancing the
// clock is a single subtraction on the head instead of a walk over every
// node — the scheduler calls Advance once per tick no matter how many
// contexts are waiting.
package timerlist

// Node is one scheduled timeout. The zero value is not attached to any
// List. Owner carries whatever the caller needs to identify the context
// the timeout belongs to (the original keeps the pubnub_t* itself in the
// list; here the node and its payload are typically embedded together by
// the caller — Owner is kept generic so callers are not forced into an
// embedding).
type Node struct {
	Owner interface{}

	timeoutLeftMs int
	prev, next    *Node
}

// Next and Previous mirror pubnub_timer_list_next/_previous.
func (n *Node) Next() *Node     { return n.next }
func (n *Node) Previous() *Node { return n.prev }

// List is the delta-encoded chain, held by its head node. A nil *List
// denotes an empty list, matching the C code's NULL-headed list.
type List struct {
	head *Node
}

// Head returns the earliest-expiring node, or nil if the list is empty.
func (l *List) Head() *Node {
	if l == nil {
		return nil
	}
	return l.head
}

// Add inserts n into the list with timeoutMs milliseconds left to expiry,
// preserving the delta encoding: every node's timeoutLeftMs becomes "ms
// after the previous node in the chain expires". timeoutMs must be > 0.
// Ported from pubnub_timer_list_add.
func (l *List) Add(n *Node, timeoutMs int) {
	if timeoutMs <= 0 {
		panic("timerlist: Add requires a positive timeout")
	}

	if l.head == nil {
		n.prev, n.next = nil, nil
		n.timeoutLeftMs = timeoutMs
		l.head = n
		return
	}

	if timeoutMs < l.head.timeoutLeftMs {
		l.head.timeoutLeftMs -= timeoutMs
		n.next = l.head
		n.prev = nil
		l.head.prev = n
		n.timeoutLeftMs = timeoutMs
		l.head = n
		return
	}

	remaining := timeoutMs
	cur := l.head
	for remaining >= cur.timeoutLeftMs {
		remaining -= cur.timeoutLeftMs
		if cur.next == nil {
			cur.next = n
			n.prev = cur
			n.next = nil
			n.timeoutLeftMs = remaining
			return
		}
		cur = cur.next
	}

	cur.timeoutLeftMs -= remaining
	n.next = cur
	n.prev = cur.prev
	cur.prev.next = n
	cur.prev = n
	n.timeoutLeftMs = remaining
}

// Remove detaches n from the list, folding its remaining delta into the
// following node so every other node's total absolute expiry is
// unchanged. n must currently be a member of l. Ported from
// pubnub_timer_list_remove.
func (l *List) Remove(n *Node) {
	if l.head == n {
		l.head = n.next
		if l.head != nil {
			l.head.timeoutLeftMs += n.timeoutLeftMs
			l.head.prev = nil
		}
		n.prev, n.next = nil, nil
		return
	}

	if n.next == nil {
		n.prev.next = nil
		n.prev = nil
		return
	}

	n.next.timeoutLeftMs += n.timeoutLeftMs
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

// Advance folds elapsedMs of wall-clock time into the list and returns, in
// order, every node whose cumulative delta has now expired — detaching
// them from l as it goes. A nil return means nothing expired yet.
// elapsedMs must be > 0. Ported from pubnub_timer_list_as_time_goes_by.
func (l *List) Advance(elapsedMs int) []*Node {
	if elapsedMs <= 0 {
		panic("timerlist: Advance requires a positive duration")
	}

	cur := l.head
	if cur == nil {
		return nil
	}
	if cur.timeoutLeftMs > elapsedMs {
		cur.timeoutLeftMs -= elapsedMs
		return nil
	}

	var expired []*Node
	remaining := elapsedMs
	for cur.timeoutLeftMs <= remaining {
		remaining -= cur.timeoutLeftMs
		expired = append(expired, cur)
		if cur.next == nil {
			l.head = nil
			detachChain(expired)
			return expired
		}
		cur = cur.next
	}

	cur.timeoutLeftMs -= remaining
	cur.prev.next = nil
	cur.prev = nil
	l.head = cur

	detachChain(expired)
	return expired
}

func detachChain(nodes []*Node) {
	for _, n := range nodes {
		n.prev, n.next = nil, nil
	}
}
