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

func TestBuildRevokeTokenPathAndMethod(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1", UserID: "u1"}
	req := BuildRevokeToken(id, "ps.pndsn.com", "p0F2AkF0Gl", fixedNow)
	if req.Method != "DELETE" {
		t.Fatalf("expected DELETE, got %s", req.Method)
	}
	if !strings.Contains(req.Path, "/v3/pam/sub-c-1/grant/") {
		t.Fatalf("unexpected path: %q", req.Path)
	}
}

func TestBuildRevokeTokenSignsWhenSecretPresent(t *testing.T) {
	id := Identity{SubscribeKey: "sub-c-1", SecretKey: "sec", UserID: "u1"}
	req := BuildRevokeToken(id, "ps.pndsn.com", "p0F2AkF0Gl", fixedNow)
	if _, ok := req.Query["signature"]; !ok {
		t.Fatal("expected signature param when secret key is set")
	}
}

func TestParseRevokeTokenSuccess(t *testing.T) {
	if _, err := ParseRevokeToken([]byte(`{"data":{"message":"Success"}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRevokeTokenErrorField(t *testing.T) {
	if _, err := ParseRevokeToken([]byte(`{"error":{"message":"token not found"}}`)); err == nil {
		t.Fatal("expected revoke api error")
	}
}
