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

package endpoint

import (
	"strings"
	"testing"
)

func TestBuildHeartbeatPath(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1"}
	req := BuildHeartbeat(id, "ps.pndsn.com", []string{"a", "b"}, 60)
	if !strings.HasSuffix(req.Path, "/heartbeat") {
		t.Fatalf("unexpected path: %q", req.Path)
	}
	if req.Query["heartbeat"] != "60" {
		t.Fatalf("unexpected heartbeat param: %q", req.Query["heartbeat"])
	}
}

func TestBuildHereNowOmitsChannelSegmentWhenEmpty(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1"}
	req := BuildHereNow(id, "ps.pndsn.com", nil)
	if strings.Contains(req.Path, "channel") {
		t.Fatalf("expected no channel segment, got %q", req.Path)
	}
}

func TestParseHereNowSuccess(t *testing.T) {
	res, err := ParseHereNow([]byte(`{"status":200,"occupancy":2,"uuids":[{"uuid":"u1"},{"uuid":"u2"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Occupancy != 2 || len(res.Occupants) != 2 {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestParseWhereNowSuccess(t *testing.T) {
	chans, err := ParseWhereNow([]byte(`{"payload":{"channels":["a","b"]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chans) != 2 || chans[0] != "a" {
		t.Fatalf("unexpected channels: %#v", chans)
	}
}

func TestParseSetStateAndGetStateShareEnvelope(t *testing.T) {
	payload, err := ParseSetState([]byte(`{"status":200,"payload":{"x":1}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"x":1}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestParseHereNowAccessDenied(t *testing.T) {
	if _, err := ParseHereNow([]byte(`{"status":403,"message":"Forbidden"}`)); err == nil {
		t.Fatal("expected access denied error")
	}
}
