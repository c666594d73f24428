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

// Package tlsprep builds the *tls.Config a Context's internal/pal dialer
// hands to tls.Dialer: server name, minimum version, and the
// insecure-skip-verify escape hatch pnconf.Config exposes for talking to a
// local/staging origin behind a self-signed certificate. It deliberately
// does not reach for the teacher's full certificates package (root CA
// bundles, client cert auth, cipher/curve allow-lists): a pub/sub client
// dialing a single well-known origin has none of that package's server-side
// surface to exercise, and pulling it in would mean carrying
// go-playground/validator and a certificate-rotation watcher for a single
// tls.Config{ServerName, MinVersion} call — see DESIGN.md.
package tlsprep

import "crypto/tls"

// Build returns the TLS config a Conn dials with. insecureSkipVerify should
// only ever be true in development against a non-production origin.
func Build(serverName string, insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify,
	}
}
