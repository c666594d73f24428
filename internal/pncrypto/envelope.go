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

// Package pncrypto implements the message payload crypto envelope: the
// legacy cipher (identifier "0000", fixed ASCII IV, base64 output, no wire
// header) kept for backward-compatible decryption of messages published
// by old clients, and the current AES-CBC cryptor (identifier "ACRH",
// random IV per message, binary output framed by a "PNED" header) used
// for anything this SDK itself encrypts. Both derive their AES key from a
// SHA-256 digest of the cipher key, hex-encoded and truncated to the first
// 32 characters; the legacy cryptor upper-cases those hex digits and the
// AES-CBC cryptor keeps them lower-case — a quirk of the original implementation
// preserved here byte-for-byte rather than "fixed", since fixing it would
// make this SDK unable to talk to any other pubnub client.
package pncrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	blockSize = aes.BlockSize // 16
	ivSize    = 16

	legacyIdentifier = "0000"
	aesIdentifier    = "ACRH"
	sentinel         = "PNED"
	headerVersion    = 1
)

// Cryptor encrypts and decrypts message payloads under one cipher key.
type Cryptor interface {
	// Identifier is the 4-byte wire identifier this cryptor writes into
	// envelopes it produces ("0000" or "ACRH").
	Identifier() string
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(envelope []byte) ([]byte, error)
}

// legacyKeyHash mirrors pubnub_crypto.c's cipher_hash: SHA-256 digest,
// first 16 bytes hex-encoded UPPERCASE.
func legacyKeyHash(cipherKey string) []byte {
	sum := sha256.Sum256([]byte(cipherKey))
	h := hex.EncodeToString(sum[:16])
	return []byte(upper(h))
}

// aesKeyHash mirrors pbcc_crypto.c's pbcc_cipher_key_hash: same digest,
// hex-encoded lowercase (the default case of encoding/hex).
func aesKeyHash(cipherKey string) []byte {
	sum := sha256.Sum256([]byte(cipherKey))
	h := hex.EncodeToString(sum[:16])
	return []byte(h)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func pkcs7Pad(data []byte) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("pncrypto: ciphertext is not a multiple of the block size")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("pncrypto: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("pncrypto: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

func cbcEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("pncrypto: ciphertext is not a multiple of the block size")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

func randomIV() ([]byte, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	return iv, nil
}
