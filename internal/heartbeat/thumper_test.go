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

package heartbeat

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestArmFiresAfterPeriod(t *testing.T) {
	var fired int32
	th := New(20*time.Millisecond, func() bool {
		atomic.AddInt32(&fired, 1)
		return true
	})
	th.Arm()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&fired) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&fired) == 0 {
		t.Fatal("expected heartbeat to have fired")
	}
}

func TestDisableCancelsPendingFire(t *testing.T) {
	var fired int32
	th := New(20*time.Millisecond, func() bool {
		atomic.AddInt32(&fired, 1)
		return true
	})
	th.Arm()
	th.Disable()

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("expected no fire after Disable, got %d", fired)
	}
}

func TestReArmPushesOutTheDeadline(t *testing.T) {
	var fired int32
	th := New(30*time.Millisecond, func() bool {
		atomic.AddInt32(&fired, 1)
		return true
	})

	th.Arm()
	time.Sleep(15 * time.Millisecond)
	th.Arm() // pushes the fire out another 30ms from here

	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("expected re-arm to have delayed the fire, got %d", fired)
	}

	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&fired) == 0 {
		t.Fatal("expected the re-armed timer to eventually fire")
	}
}

func TestZeroPeriodDisablesHeartbeat(t *testing.T) {
	var fired int32
	th := New(0, func() bool {
		atomic.AddInt32(&fired, 1)
		return true
	})
	th.Arm()

	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("expected zero period to disable heartbeat, got %d", fired)
	}
}

func TestStartReturningFalseIsSilentlyDropped(t *testing.T) {
	var attempts int32
	th := New(15*time.Millisecond, func() bool {
		atomic.AddInt32(&attempts, 1)
		return false
	})
	th.Arm()

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&attempts) == 0 {
		t.Fatal("expected start to have been attempted at least once")
	}
}
