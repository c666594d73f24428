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
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/nabbar/pncore/internal/sched"
)

// maxInFlightDefault bounds concurrent blocking transport steps across
// every Context sharing the default scheduler (spec.md 4.3's fixed-size
// poll set, re-expressed as a semaphore — see internal/sched).
const maxInFlightDefault = 64

var defaultScheduler atomic.Pointer[sched.Scheduler]

var defaultGroup singleflight.Group

// Default returns the process-wide Scheduler, starting its worker loop on
// first use. Concurrent first callers are deduplicated through
// singleflight so only one worker goroutine is ever started, the same
// "lazily-initialized singleton with atomic swap" shape the teacher's
// httpcli DNS mapper uses for its own process-wide state.
func Default() *sched.Scheduler {
	if s := defaultScheduler.Load(); s != nil {
		return s
	}

	v, _, _ := defaultGroup.Do("default-scheduler", func() (interface{}, error) {
		if s := defaultScheduler.Load(); s != nil {
			return s, nil
		}
		s := sched.New(maxInFlightDefault)
		defaultScheduler.Store(s)
		go s.Run(context.Background())
		return s, nil
	})

	return v.(*sched.Scheduler)
}
