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

package timerlist

import "testing"

// Scenarios below port pubnub_timer_list_unit_test.c one-for-one.

func TestEnqueueWhenEmpty(t *testing.T) {
	var l List
	n := &Node{Owner: "a"}
	l.Add(n, 1000)
	if l.Head() != n {
		t.Fatalf("head = %v, want n", l.Head())
	}

	expired := l.Advance(1000)
	if l.Head() != nil {
		t.Fatalf("list should be empty after full expiry")
	}
	if len(expired) != 1 || expired[0] != n {
		t.Fatalf("expired = %v, want [n]", expired)
	}
	if n.Next() != nil || n.Previous() != nil {
		t.Fatalf("expired node must be detached")
	}
}

func TestDequeueWhenOnlyOne(t *testing.T) {
	var l List
	n := &Node{Owner: "a"}
	l.Add(n, 1000)
	l.Remove(n)
	if l.Head() != nil {
		t.Fatalf("head should be nil after removing only node")
	}
	if n.Next() != nil || n.Previous() != nil {
		t.Fatalf("removed node must be detached")
	}
}

func TestEnqueueOneAfterOne(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 2000)
	if l.Head() != a {
		t.Fatalf("head = %v, want a", l.Head())
	}

	expired := l.Advance(2000)
	if len(expired) != 2 || expired[0] != a || expired[1] != b {
		t.Fatalf("expired = %v, want [a b]", expired)
	}
	if l.Head() != nil {
		t.Fatalf("both nodes should have expired")
	}
}

func TestEnqueueOneBeforeOne(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 200)
	if l.Head() != b {
		t.Fatalf("head = %v, want b (shorter timeout)", l.Head())
	}

	expired := l.Advance(1000)
	if len(expired) != 2 || expired[0] != b || expired[1] != a {
		t.Fatalf("expired = %v, want [b a]", expired)
	}
}

func TestEnqueueInTheMiddle(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	c := &Node{Owner: "c"}
	l.Add(a, 1000)
	l.Add(b, 200)
	l.Add(c, 500)
	if l.Head() != b {
		t.Fatalf("head = %v, want b", l.Head())
	}
	if b.Next() != c || c.Next() != a || a.Next() != nil {
		t.Fatalf("chain order wrong: b->c->a expected")
	}
	if c.Previous() != b || a.Previous() != c {
		t.Fatalf("back-links wrong")
	}
}

func TestDequeueLast(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 2000)
	l.Remove(b)
	if l.Head() != a {
		t.Fatalf("head = %v, want a", l.Head())
	}
	if a.Next() != nil || a.Previous() != nil {
		t.Fatalf("a should now be the sole node")
	}
}

func TestDequeueFirst(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 2000)
	l.Remove(a)
	if l.Head() != b {
		t.Fatalf("head = %v, want b", l.Head())
	}
	if b.Next() != nil || b.Previous() != nil {
		t.Fatalf("b should now be the sole node")
	}
}

func TestDequeueFromTheMiddle(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	c := &Node{Owner: "c"}
	l.Add(a, 1000)
	l.Add(b, 200)
	l.Add(c, 500)
	l.Remove(c)
	if l.Head() != b {
		t.Fatalf("head = %v, want b", l.Head())
	}
	if b.Next() != a || a.Previous() != b {
		t.Fatalf("chain should now be b->a")
	}
	if c.Next() != nil || c.Previous() != nil {
		t.Fatalf("removed node must be detached")
	}
}

func TestLittleTimePassed(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 2000)

	if expired := l.Advance(10); expired != nil {
		t.Fatalf("nothing should expire yet, got %v", expired)
	}
	if l.Head() != a {
		t.Fatalf("head = %v, want a", l.Head())
	}
}

func TestExpireFirst(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	l.Add(a, 1000)
	l.Add(b, 2000)

	expired := l.Advance(1100)
	if len(expired) != 1 || expired[0] != a {
		t.Fatalf("expired = %v, want [a]", expired)
	}
	if l.Head() != b {
		t.Fatalf("head = %v, want b", l.Head())
	}
	if b.Next() != nil || b.Previous() != nil {
		t.Fatalf("b should now be the sole node")
	}
}

func TestExpireInTheMiddle(t *testing.T) {
	var l List
	a := &Node{Owner: "a"}
	b := &Node{Owner: "b"}
	c := &Node{Owner: "c"}
	l.Add(a, 1000)
	l.Add(b, 2000)
	l.Add(c, 3000)

	expired := l.Advance(2200)
	if len(expired) != 2 || expired[0] != a || expired[1] != b {
		t.Fatalf("expired = %v, want [a b]", expired)
	}
	if l.Head() != c {
		t.Fatalf("head = %v, want c", l.Head())
	}
	if c.Next() != nil || c.Previous() != nil {
		t.Fatalf("c should now be the sole node")
	}
}

func TestAddPanicsOnNonPositiveTimeout(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on non-positive timeout")
		}
	}()
	var l List
	l.Add(&Node{}, 0)
}
