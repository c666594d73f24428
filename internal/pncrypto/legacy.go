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

import "encoding/base64"

// legacyIV is the fixed ASCII initialization vector every legacy-cipher
// message shares, ported verbatim from pubnub_crypto.c's pubnub_encrypt.
// It buys nothing as a real IV (it never varies) but old publishers used
// it, so decrypting their history requires reproducing it.
var legacyIV = []byte("0123456789012345")

type legacyCryptor struct {
	key []byte
}

// NewLegacy builds the cryptor used to decrypt (and, if still required by
// a caller talking to very old consumers, encrypt) messages under the
// pre-crypto-module scheme: AES-CBC with a fixed IV, std-base64 output,
// no envelope header at all.
func NewLegacy(cipherKey string) Cryptor {
	return &legacyCryptor{key: legacyKeyHash(cipherKey)}
}

func (c *legacyCryptor) Identifier() string { return legacyIdentifier }

func (c *legacyCryptor) Encrypt(plaintext []byte) ([]byte, error) {
	ct, err := cbcEncrypt(c.key, legacyIV, plaintext)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(ct)))
	base64.StdEncoding.Encode(out, ct)
	return out, nil
}

func (c *legacyCryptor) Decrypt(envelope []byte) ([]byte, error) {
	ct := make([]byte, base64.StdEncoding.DecodedLen(len(envelope)))
	n, err := base64.StdEncoding.Decode(ct, envelope)
	if err != nil {
		return nil, err
	}
	return cbcDecrypt(c.key, legacyIV, ct[:n])
}
