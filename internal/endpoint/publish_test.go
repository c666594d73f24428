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

func TestBuildPublishPathAndParams(t *testing.T) {
	id := Identity{PublishKey: "pub-c-1", SubscribeKey: "sub-c-1"}
	req := BuildPublish(id, "ps.pndsn.com", "chan one", []byte(`"hi"`), true)
	if req.Method != "GET" {
		t.Fatalf("expected GET, got %s", req.Method)
	}
	if !strings.HasPrefix(req.Path, "/publish/pub-c-1/sub-c-1/0/") {
		t.Fatalf("unexpected path: %s", req.Path)
	}
	if _, ok := req.Query["store"]; ok {
		t.Fatalf("expected no store=0 param when storeInHistory=true, got %#v", req.Query)
	}
}

func TestBuildPublishNoStoreSetsStoreZero(t *testing.T) {
	id := Identity{PublishKey: "pub-c-1", SubscribeKey: "sub-c-1"}
	req := BuildPublish(id, "ps.pndsn.com", "chan", []byte(`"hi"`), false)
	if req.Query["store"] != "0" {
		t.Fatalf("expected store=0, got %#v", req.Query)
	}
}

func TestParsePublishSuccess(t *testing.T) {
	res, err := ParsePublish([]byte(`[1,"Sent","17226585191035344"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Timetoken != "17226585191035344" || res.Info != "Sent" {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestParsePublishFailureCode(t *testing.T) {
	if _, err := ParsePublish([]byte(`[0,"Invalid Message","0"]`)); err == nil {
		t.Fatal("expected publish failed error")
	}
}

func TestParsePublishMalformedBody(t *testing.T) {
	if _, err := ParsePublish([]byte(`not json`)); err == nil {
		t.Fatal("expected format error")
	}
}

func TestParsePublishShortArray(t *testing.T) {
	if _, err := ParsePublish([]byte(`[1,"Sent"]`)); err == nil {
		t.Fatal("expected format error for short array")
	}
}
