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
 *
 *
 */

package protocol

import (
	"encoding/binary"

	"github.com/sabouaram/goice/rpcerr"
)

// EncapsHeaderSize is the size of an encapsulation's own header: a
// 4-byte size (encapsulation header included) plus 2 encoding-version
// bytes.
const EncapsHeaderSize = 6

// EncodeEncaps wraps body as an encapsulation: size prefix (including
// this header) followed by the encoding version and the body itself.
func EncodeEncaps(body []byte) []byte {
	out := make([]byte, EncapsHeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(out)))
	out[4] = EncodingMajor
	out[5] = EncodingMinor
	copy(out[6:], body)
	return out
}

// DecodeEncaps validates and strips an encapsulation header, returning
// the body bytes.
func DecodeEncaps(b []byte) (body []byte, encMajor, encMinor byte, err rpcerr.Error) {
	if len(b) < EncapsHeaderSize {
		return nil, 0, 0, rpcerr.ProtocolFraming.Errorf("encapsulation shorter than its header")
	}

	size := binary.LittleEndian.Uint32(b[0:4])
	if int(size) > len(b) || size < EncapsHeaderSize {
		return nil, 0, 0, rpcerr.ProtocolFraming.Errorf("illegal encapsulation size %d", size)
	}

	encMajor, encMinor = b[4], b[5]
	if encMajor > EncodingMajor {
		return nil, 0, 0, rpcerr.ProtocolFraming.Errorf("unsupported encapsulation encoding %d.%d", encMajor, encMinor)
	}

	return b[EncapsHeaderSize:size], encMajor, encMinor, nil
}

// ReplyStatus is the first byte of a Reply frame's body.
type ReplyStatus uint8

const (
	ReplyOK ReplyStatus = iota
	ReplyUserException
	ReplyObjectNotExist
	ReplyOperationNotExist
	ReplyUnknownException
)

func (s ReplyStatus) String() string {
	switch s {
	case ReplyOK:
		return "OK"
	case ReplyUserException:
		return "UserException"
	case ReplyObjectNotExist:
		return "ObjectNotExist"
	case ReplyOperationNotExist:
		return "OperationNotExist"
	default:
		return "UnknownException"
	}
}

// OperationMode is the mutability contract declared by an operation and
// carried on the wire with every request targeting it.
type OperationMode uint8

const (
	ModeNormal OperationMode = iota
	ModeNonmutating
	ModeIdempotent
)

// wire maps Nonmutating onto Idempotent: both relax the same ordering
// guarantee and share a single wire value so peers agree on one encoding.
func (m OperationMode) wire() OperationMode {
	if m == ModeNonmutating {
		return ModeIdempotent
	}
	return m
}

// Satisfies reports whether a request sent with mode `sent` may be
// dispatched against an operation declared with mode `declared`: the
// sent mode must not be weaker than the declared one.
func (declared OperationMode) Satisfies(sent OperationMode) bool {
	if declared == ModeNormal {
		return true
	}
	return sent.wire() == ModeIdempotent
}
