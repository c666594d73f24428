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

import "testing"

func TestBuildTimeHasNoIdentityParams(t *testing.T) {
	req := BuildTime("ps.pndsn.com")
	if req.Path != "/time/0" {
		t.Fatalf("unexpected path: %q", req.Path)
	}
	if len(req.Query) != 0 {
		t.Fatalf("expected no query params, got %#v", req.Query)
	}
}

func TestParseTimeBareNumber(t *testing.T) {
	tt, err := ParseTime([]byte(`[17226585191035344]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt != "17226585191035344" {
		t.Fatalf("unexpected timetoken: %q", tt)
	}
}

func TestParseTimeRejectsWrongShape(t *testing.T) {
	if _, err := ParseTime([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected format error for two-element array")
	}
	if _, err := ParseTime([]byte(`{}`)); err == nil {
		t.Fatal("expected format error for object body")
	}
}
