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

package tlsprep

import (
	"crypto/tls"
	"testing"
)

func TestBuildSetsServerNameAndMinVersion(t *testing.T) {
	cfg := Build("ps.pndsn.com", false)
	if cfg.ServerName != "ps.pndsn.com" {
		t.Fatalf("unexpected server name: %q", cfg.ServerName)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Fatalf("unexpected min version: %v", cfg.MinVersion)
	}
	if cfg.InsecureSkipVerify {
		t.Fatal("expected verification enabled by default")
	}
}

func TestBuildHonorsInsecureSkipVerify(t *testing.T) {
	cfg := Build("localhost", true)
	if !cfg.InsecureSkipVerify {
		t.Fatal("expected InsecureSkipVerify true")
	}
}
