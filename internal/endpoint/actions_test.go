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
	"encoding/json"
	"strings"
	"testing"
)

func TestActionMarshalJSON(t *testing.T) {
	a := Action{Type: ActionReaction, Value: json.RawMessage(`"smiley"`), UUID: "u1"}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(b), `"type":"reaction"`) || !strings.Contains(string(b), `"value":"smiley"`) {
		t.Fatalf("unexpected marshal output: %s", b)
	}
}

func TestActionMarshalJSONUnknownType(t *testing.T) {
	a := Action{Type: ActionType(99), Value: json.RawMessage(`1`), UUID: "u1"}
	if _, err := json.Marshal(a); err == nil {
		t.Fatal("expected error for unknown action type")
	}
}

func TestBuildAddActionEmbedsUUID(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1", UserID: "u1"}
	req, err := BuildAddAction(id, "ps.pndsn.com", "chan-a", "123", Action{Type: ActionCustom, Value: json.RawMessage(`{"k":1}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(req.Body), `"uuid":"u1"`) {
		t.Fatalf("expected uuid embedded in body, got %s", req.Body)
	}
}

func TestBuildGetActionsClampsLimit(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1"}
	req := BuildGetActions(id, "ps.pndsn.com", "chan-a", "", "", 1000)
	if req.Query["limit"] != "100" {
		t.Fatalf("expected clamp to 100, got %q", req.Query["limit"])
	}
}

func TestParseAddActionSuccess(t *testing.T) {
	res, err := ParseAddAction([]byte(`{"data":{"messageTimetoken":"111","actionTimetoken":"222"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MessageTimetoken != "111" || res.ActionTimetoken != "222" {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestParseActionsPagination(t *testing.T) {
	page, err := ParseActions([]byte(`{"data":[{"a":1}],"more":{"url":"/v1/message-actions/sub/channel/chan-a?start=1"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.More == "" {
		t.Fatal("expected non-empty pagination url")
	}
}

func TestParseActionsErrorField(t *testing.T) {
	if _, err := ParseActions([]byte(`{"error":"channel not found"}`)); err == nil {
		t.Fatal("expected actions api error")
	}
}
