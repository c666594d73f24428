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

// Package subscribev2 decodes the subscribe-v2 response envelope
// (`{"t":{"t":...,"r":...},"m":[...]}`) the way pbcc_subscribe_v2.c does:
// a single pass locates the timetoken/region and the byte span of the
// message array, then each message is decoded lazily, one at a time, as
// byte slices borrowed from the original response buffer rather than
// copied into a parsed tree.
package subscribev2

import (
	"fmt"
	"strconv"

	"github.com/nabbar/pncore/pnerr"
)

const minResponseLength = 40

// MessageType mirrors the `e` discriminator field (enum pbsb_message_type
// in the original).
type MessageType int

const (
	Published MessageType = iota
	Signal
	Objects
	Action
	Files
)

// Message is one decoded element of the `m` array. Every []byte field
// aliases the Envelope's underlying buffer — callers that need to retain
// a Message past the buffer's lifetime must copy it themselves.
type Message struct {
	Payload      []byte
	Channel      []byte
	Type         MessageType
	Timetoken    []byte
	MatchOrGroup []byte
	Metadata     []byte
	Publisher    []byte
	Flags        int64
	Region       int
}

// Envelope is a decoded subscribe-v2 response, ready to yield its
// messages one at a time via Next.
type Envelope struct {
	buf []byte

	Timetoken string
	Region    int

	msgOfs, msgEnd int
}

// Parse validates and decodes the envelope header (timetoken, region, and
// the `m` array's byte span) without touching individual messages yet.
// Ported from pbcc_parse_subscribe_v2_response.
func Parse(buf []byte) (*Envelope, error) {
	if len(buf) < minResponseLength {
		return nil, pnerr.OutcomeFormatError.Error()
	}
	if containsField(buf, "status", `403`) {
		return nil, pnerr.OutcomeAccessDenied.Error()
	}
	if containsField(buf, "status", `400`) {
		if msg, ok := fieldValue(buf, "message"); ok &&
			string(msg) == `"Channel group or groups result in empty subscription set"` {
			return nil, pnerr.OutcomeGroupEmpty.Error()
		}
		return nil, pnerr.OutcomeFormatError.Error()
	}
	if buf[0] != '{' || buf[len(buf)-1] != '}' {
		return nil, pnerr.OutcomeFormatError.Error()
	}

	tObj, ok := fieldValue(buf, "t")
	if !ok {
		return nil, pnerr.OutcomeSubNoTTError.Error()
	}

	ttRaw, ok := fieldValue(tObj, "t")
	if !ok {
		return nil, pnerr.OutcomeSubNoTTError.Error()
	}
	tt, ok := unquote(ttRaw)
	if !ok {
		return nil, pnerr.OutcomeSubTTFormatError.Error()
	}

	rRaw, ok := fieldValue(tObj, "r")
	if !ok {
		return nil, pnerr.OutcomeSubNoRegError.Error()
	}
	region, err := strconv.Atoi(string(rRaw))
	if err != nil {
		return nil, pnerr.OutcomeSubNoRegError.Error(err)
	}

	mStart, mEnd, ok := fieldValueAt(buf, "m")
	if !ok {
		return nil, pnerr.OutcomeFormatError.Error()
	}
	if mEnd-mStart < 2 || buf[mStart] != '[' || buf[mEnd-1] != ']' {
		return nil, pnerr.OutcomeFormatError.Error()
	}

	return &Envelope{
		buf:       buf,
		Timetoken: string(tt),
		Region:    region,
		msgOfs:    mStart + 1,
		msgEnd:    mEnd - 1,
	}, nil
}

// Done reports whether every message in the `m` array has been consumed.
func (e *Envelope) Done() bool {
	return e.msgOfs >= e.msgEnd
}

// Next decodes and returns the next message in the array, advancing the
// internal cursor past it. It returns (nil, nil) once Done(). Ported from
// pbcc_get_msg_v2.
func (e *Envelope) Next() (*Message, error) {
	if e.Done() {
		return nil, nil
	}

	start := e.msgOfs
	if e.buf[start] != '{' {
		return nil, fmt.Errorf("subscribev2: message element is not a JSON object")
	}
	end := skipValue(e.buf, start)
	if end > e.msgEnd {
		end = e.msgEnd
	}
	obj := e.buf[start:end]

	e.msgOfs = end + 1 // skip the separating comma

	msg := &Message{Region: e.Region}

	payload, ok := fieldValue(obj, "d")
	if !ok {
		return nil, fmt.Errorf("subscribev2: message missing payload field")
	}
	msg.Payload = payload

	channel, ok := fieldValue(obj, "c")
	if !ok {
		return nil, fmt.Errorf("subscribev2: message missing channel field")
	}
	if unq, ok := unquote(channel); ok {
		msg.Channel = unq
	}

	msg.Type = Published
	if eType, ok := fieldValue(obj, "e"); ok {
		switch string(eType) {
		case `"1"`:
			msg.Type = Signal
		case `"2"`:
			msg.Type = Objects
		case `"3"`:
			msg.Type = Action
		case `"4"`:
			msg.Type = Files
		}
	}

	p, ok := fieldValue(obj, "p")
	if !ok {
		return nil, fmt.Errorf("subscribev2: message missing publish-metadata field")
	}
	ttRaw, ok := fieldValue(p, "t")
	if !ok {
		return nil, fmt.Errorf("subscribev2: message missing publish timetoken")
	}
	tt, ok := unquote(ttRaw)
	if !ok {
		return nil, fmt.Errorf("subscribev2: publish timetoken is not a string")
	}
	msg.Timetoken = tt

	if b, ok := fieldValue(obj, "b"); ok {
		msg.MatchOrGroup = b
	}
	if u, ok := fieldValue(obj, "u"); ok {
		msg.Metadata = u
	}
	if i, ok := fieldValue(obj, "i"); ok {
		if unq, ok := unquote(i); ok {
			msg.Publisher = unq
		}
	}
	if f, ok := fieldValue(obj, "f"); ok {
		if n, err := strconv.ParseInt(string(f), 10, 64); err == nil {
			msg.Flags = n
		}
	}

	return msg, nil
}
