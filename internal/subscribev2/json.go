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

package subscribev2

// This file is a small hand-rolled JSON field scanner, the Go analogue of
// pbjson_get_object_value / pbjson_find_end_complex from
// pbcc_subscribe_v2.c. It intentionally does not decode values: it only
// locates byte spans within the caller-owned buffer, which is what lets
// fieldValue borrow slices instead of copying. A real decoder
// (encoding/json) would force a full unmarshal of every message just to
// read one field, defeating the lazy per-message iteration spec.md
// requires.

// skipWS advances i past ASCII whitespace.
func skipWS(buf []byte, i int) int {
	for i < len(buf) {
		switch buf[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// skipString assumes buf[i] == '"' and returns the index just past the
// closing, unescaped quote.
func skipString(buf []byte, i int) int {
	i++ // opening quote
	for i < len(buf) {
		switch buf[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		}
		i++
	}
	return i
}

// skipValue assumes buf[i] is the start of a JSON value and returns the
// index just past it, honoring nested objects/arrays/strings. This is the
// Go equivalent of pbjson_find_end_complex generalized to any value type.
func skipValue(buf []byte, i int) int {
	if i >= len(buf) {
		return i
	}
	switch buf[i] {
	case '"':
		return skipString(buf, i)
	case '{', '[':
		open := buf[i]
		close := byte('}')
		if open == '[' {
			close = ']'
		}
		depth := 1
		i++
		for i < len(buf) && depth > 0 {
			switch buf[i] {
			case '"':
				i = skipString(buf, i)
				continue
			case open:
				depth++
			case close:
				depth--
			}
			i++
		}
		return i
	default:
		for i < len(buf) {
			switch buf[i] {
			case ',', '}', ']':
				return i
			}
			i++
		}
		return i
	}
}

// fieldValueAt scans the top-level keys of the JSON object spanning
// obj[0:len(obj)] (obj must start with '{' and end with the matching
// '}') and returns the byte offsets, within obj, of key's value
// (including surrounding quotes for strings). ok is false if key is
// absent at the top level. Returning offsets rather than a re-sliced
// value lets callers recover an absolute position in a larger buffer
// when obj itself is that buffer (see Envelope.msgOfs in decode.go).
func fieldValueAt(obj []byte, key string) (start, end int, ok bool) {
	if len(obj) < 2 || obj[0] != '{' {
		return 0, 0, false
	}
	i := 1
	for {
		i = skipWS(obj, i)
		if i >= len(obj) || obj[i] == '}' {
			return 0, 0, false
		}
		if obj[i] != '"' {
			return 0, 0, false
		}
		keyStart := i + 1
		i = skipString(obj, i)
		keyEnd := i - 1

		i = skipWS(obj, i)
		if i >= len(obj) || obj[i] != ':' {
			return 0, 0, false
		}
		i++
		i = skipWS(obj, i)
		valStart := i
		i = skipValue(obj, i)
		valEnd := i

		if string(obj[keyStart:keyEnd]) == key {
			return valStart, valEnd, true
		}

		i = skipWS(obj, i)
		if i < len(obj) && obj[i] == ',' {
			i++
			continue
		}
		return 0, 0, false
	}
}

// fieldValue is fieldValueAt with the span already re-sliced out of obj.
func fieldValue(obj []byte, key string) (val []byte, ok bool) {
	start, end, ok := fieldValueAt(obj, key)
	if !ok {
		return nil, false
	}
	return obj[start:end], true
}

// unquote strips one layer of surrounding double quotes, assuming val is
// exactly a JSON string token (`"..."`, no further unescaping performed —
// values taken from this envelope, timetokens/ids/channel names, never
// carry escape sequences in practice).
func unquote(val []byte) ([]byte, bool) {
	if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
		return nil, false
	}
	return val[1 : len(val)-1], true
}

// containsField reports whether obj (a JSON object span) has key whose raw
// value token equals quotedValue byte-for-byte (a string value must be
// given with its quotes), e.g. containsField(obj, "status", `403`) — used
// for the cheap 403/400 status sniff that does not need a full parse.
func containsField(obj []byte, key, quotedValue string) bool {
	v, ok := fieldValue(obj, key)
	if !ok {
		return false
	}
	return string(v) == quotedValue
}
