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

package pncrypto

import "fmt"

// Module dispatches Decrypt across every cryptor it knows, so a single
// subscriber can read history published both before and after a cipher
// key rotation. Encrypt always uses the configured default.
type Module struct {
	byIdentifier map[string]Cryptor
	defaultID    string
}

// NewModule builds a Module whose default (encrypt-with) cryptor is the
// current AES-CBC scheme when useRandomIV is true, with the legacy scheme
// wired in for decrypting old messages; when useRandomIV is false the
// legacy scheme is both the default and the only registered cryptor —
// mirroring pubnub_crypto_module.c's registry
// of cryptors keyed by their 4-byte identifier.
func NewModule(cipherKey string, useRandomIV bool) *Module {
	m := &Module{byIdentifier: map[string]Cryptor{}}
	legacy := NewLegacy(cipherKey)
	m.byIdentifier[legacy.Identifier()] = legacy

	if useRandomIV {
		aesc := NewAESCBC(cipherKey)
		m.byIdentifier[aesc.Identifier()] = aesc
		m.defaultID = aesc.Identifier()
	} else {
		m.defaultID = legacy.Identifier()
	}
	return m
}

// Encrypt runs the default cryptor.
func (m *Module) Encrypt(plaintext []byte) ([]byte, error) {
	c, ok := m.byIdentifier[m.defaultID]
	if !ok {
		return nil, fmt.Errorf("pncrypto: no default cryptor configured")
	}
	return c.Encrypt(plaintext)
}

// Decrypt inspects envelope to find which cryptor wrote it: a "PNED"
// prefix identifies a framed (current) cryptor by its embedded
// identifier; anything else is assumed legacy (no header at all).
func (m *Module) Decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) >= len(sentinel) && string(envelope[:len(sentinel)]) == sentinel {
		hdr, _, err := decodeHeader(envelope)
		if err != nil {
			return nil, err
		}
		c, ok := m.byIdentifier[hdr.identifier]
		if !ok {
			return nil, fmt.Errorf("pncrypto: unknown cryptor identifier %q", hdr.identifier)
		}
		return c.Decrypt(envelope)
	}

	c, ok := m.byIdentifier[legacyIdentifier]
	if !ok {
		return nil, fmt.Errorf("pncrypto: legacy cryptor not configured")
	}
	return c.Decrypt(envelope)
}
