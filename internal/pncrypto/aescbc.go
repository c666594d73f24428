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

type aesCryptor struct {
	key []byte
}

// NewAESCBC builds the current cryptor: AES-CBC with a fresh random IV
// per message, carried as envelope metadata rather than a fixed constant.
func NewAESCBC(cipherKey string) Cryptor {
	return &aesCryptor{key: aesKeyHash(cipherKey)}
}

func (c *aesCryptor) Identifier() string { return aesIdentifier }

// Encrypt produces the full framed envelope: header (sentinel, version,
// identifier, metadata length) followed by the IV-prefixed ciphertext,
// ported from pbcc_crypto_aes_cbc.c's aes_encrypt + pbcc_crypto.c's header
// builder (pbcc_prepare_cryptor_header_v1 / pbcc_cryptor_header_v1_to_alloc_block).
func (c *aesCryptor) Encrypt(plaintext []byte) ([]byte, error) {
	iv, err := randomIV()
	if err != nil {
		return nil, err
	}
	ct, err := cbcEncrypt(c.key, iv, plaintext)
	if err != nil {
		return nil, err
	}

	header := encodeHeader(aesIdentifier, ivSize)
	body := make([]byte, 0, len(header)+ivSize+len(ct))
	body = append(body, header...)
	body = append(body, iv...)
	body = append(body, ct...)
	return body, nil
}

// Decrypt parses the framed envelope and recovers the plaintext.
func (c *aesCryptor) Decrypt(envelope []byte) ([]byte, error) {
	hdr, rest, err := decodeHeader(envelope)
	if err != nil {
		return nil, err
	}
	if hdr.identifier != aesIdentifier {
		return nil, fmt.Errorf("pncrypto: envelope identifier %q does not match aes-cbc %q", hdr.identifier, aesIdentifier)
	}
	if len(rest) < ivSize {
		return nil, fmt.Errorf("pncrypto: envelope too short for iv")
	}
	iv := rest[:ivSize]
	ct := rest[ivSize:]
	return cbcDecrypt(c.key, iv, ct)
}

// header is the parsed form of the "PNED" wire header documented in
// pbcc_crypto.c.
type header struct {
	version    uint8
	identifier string
	dataLength int
}

// encodeHeader builds the raw header bytes for a non-legacy identifier:
// "PNED" + version(1) + identifier(4) + length-field. The legacy
// identifier omits the identifier bytes entirely — only NewAESCBC calls
// this, so dataLength here is always the metadata (IV) length.
func encodeHeader(identifier string, dataLength int) []byte {
	out := make([]byte, 0, 4+1+4+3)
	out = append(out, []byte(sentinel)...)
	out = append(out, headerVersion)
	out = append(out, []byte(identifier)...)

	if dataLength < 255 {
		out = append(out, byte(dataLength))
	} else {
		// Two-byte big-endian TOTAL header size, preceded by the 255
		// sentinel byte, matching pbcc_cryptor_header_v1_to_alloc_block.
		headerSize := len(out) + 1 + 2
		out = append(out, 255, byte(headerSize>>8), byte(headerSize&0xFF))
	}
	return out
}

// decodeHeader parses the "PNED" envelope prefix and returns the header
// plus the remaining bytes (metadata + ciphertext).
func decodeHeader(envelope []byte) (header, []byte, error) {
	if len(envelope) < len(sentinel)+1 {
		return header{}, nil, fmt.Errorf("pncrypto: envelope too short")
	}
	if string(envelope[:len(sentinel)]) != sentinel {
		return header{}, nil, fmt.Errorf("pncrypto: missing %q sentinel", sentinel)
	}
	off := len(sentinel)
	version := envelope[off]
	off++

	if len(envelope) < off+4 {
		return header{}, nil, fmt.Errorf("pncrypto: envelope too short for identifier")
	}
	identifier := string(envelope[off : off+4])
	off += 4

	if len(envelope) <= off {
		return header{}, nil, fmt.Errorf("pncrypto: envelope too short for length")
	}
	first := envelope[off]
	off++

	var dataLength int
	if first < 255 {
		dataLength = int(first)
	} else {
		if len(envelope) < off+2 {
			return header{}, nil, fmt.Errorf("pncrypto: envelope too short for extended length")
		}
		headerSize := int(envelope[off])<<8 | int(envelope[off+1])
		off += 2
		dataLength = headerSize - off
	}

	return header{version: version, identifier: identifier, dataLength: dataLength}, envelope[off:], nil
}
