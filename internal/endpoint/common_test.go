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
	"testing"

	"github.com/nabbar/pncore/pnerr"
)

func TestCommonParamsIncludesConfiguredFields(t *testing.T) {
	id := Identity{UserID: "u1", AuthKey: "ak", SDKName: "pncore-go/1.0"}
	p := id.commonParams()
	if p["uuid"] != "u1" || p["auth"] != "ak" || p["pnsdk"] != "pncore-go/1.0" {
		t.Fatalf("unexpected params: %#v", p)
	}
}

func TestCommonParamsOmitsEmptyFields(t *testing.T) {
	p := Identity{}.commonParams()
	if len(p) != 0 {
		t.Fatalf("expected no params, got %#v", p)
	}
}

func TestMergeParamsExtraWins(t *testing.T) {
	id := Identity{UserID: "u1"}
	p := mergeParams(id, map[string]string{"uuid": "override"})
	if p["uuid"] != "override" {
		t.Fatalf("expected extra to win, got %q", p["uuid"])
	}
}

func TestJoinPathSegments(t *testing.T) {
	if got := joinPathSegments("a", "b", "c"); got != "/a/b/c" {
		t.Fatalf("unexpected path: %q", got)
	}
}

func TestErrorForStatusRejectsMalformedBody(t *testing.T) {
	if err := errorForStatus([]byte("x")); err == nil {
		t.Fatal("expected format error")
	}
}

func TestErrorForStatusDetects403(t *testing.T) {
	err := errorForStatus([]byte(`{"status":403,"message":"Forbidden"}`))
	if err == nil {
		t.Fatal("expected access denied error")
	}
	if ce, ok := err.(pnerr.Error); ok && ce.Code() != pnerr.OutcomeAccessDenied {
		t.Fatalf("expected OutcomeAccessDenied, got %v", ce.Code())
	}
}

func TestErrorForStatusAcceptsArrayBody(t *testing.T) {
	if err := errorForStatus([]byte(`[1,"Sent","123"]`)); err != nil {
		t.Fatalf("unexpected error for array body: %v", err)
	}
}

func TestDataOrErrorPrefersData(t *testing.T) {
	raw, isData, err := dataOrError([]byte(`{"data":{"x":1}}`))
	if err != nil || !isData || string(raw) != `{"x":1}` {
		t.Fatalf("unexpected result: raw=%s isData=%v err=%v", raw, isData, err)
	}
}

func TestDataOrErrorFallsBackToError(t *testing.T) {
	raw, isData, err := dataOrError([]byte(`{"error":{"message":"nope"}}`))
	if err != nil || isData {
		t.Fatalf("expected error field, got raw=%s isData=%v err=%v", raw, isData, err)
	}
}

func TestDataOrErrorRejectsEmptyEnvelope(t *testing.T) {
	if _, _, err := dataOrError([]byte(`{}`)); err == nil {
		t.Fatal("expected format error for empty envelope")
	}
}
