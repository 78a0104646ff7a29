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

// Package protocol implements the wire codec: the 14-byte message header,
// message type enumeration, and the compression wrapper applied to a
// message body before it is framed onto the wire.
package protocol

import (
	"encoding/binary"

	"github.com/sabouaram/goice/rpcerr"
)

// HeaderSize is the fixed size of every framed message header.
const HeaderSize = 14

var magic = [4]byte{'I', 'c', 'e', 'P'}

const (
	ProtocolMajor = 1
	ProtocolMinor = 0
	EncodingMajor = 1
	EncodingMinor = 1
)

// CompressionStatus is the header's single compression byte.
type CompressionStatus uint8

const (
	CompressionNone       CompressionStatus = 0
	CompressionSupported  CompressionStatus = 1
	CompressionCompressed CompressionStatus = 2
)

// MessageType identifies the payload that follows the header.
type MessageType uint8

const (
	MessageRequest            MessageType = 0
	MessageBatchRequest       MessageType = 1
	MessageReply              MessageType = 2
	MessageValidateConnection MessageType = 3
	MessageCloseConnection    MessageType = 4
)

func (m MessageType) Valid() bool {
	return m <= MessageCloseConnection
}

func (m MessageType) String() string {
	switch m {
	case MessageRequest:
		return "Request"
	case MessageBatchRequest:
		return "BatchRequest"
	case MessageReply:
		return "Reply"
	case MessageValidateConnection:
		return "ValidateConnection"
	case MessageCloseConnection:
		return "CloseConnection"
	default:
		return "Unknown"
	}
}

// Header is the 14-byte frame header common to every message.
type Header struct {
	Type        MessageType
	Compression CompressionStatus
	Size        uint32 // total size, header included
}

// Encode renders h as the 14-byte wire header.
func (h Header) Encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	copy(b[0:4], magic[:])
	b[4] = ProtocolMajor
	b[5] = ProtocolMinor
	b[6] = EncodingMajor
	b[7] = EncodingMinor
	b[8] = byte(h.Type)
	b[9] = byte(h.Compression)
	binary.LittleEndian.PutUint32(b[10:14], h.Size)
	return b
}

// DecodeHeader parses a 14-byte buffer into a Header, validating magic,
// the protocol/encoding version bytes, the message type, and the declared
// size against sizeMax.
func DecodeHeader(b []byte, sizeMax uint32) (Header, rpcerr.Error) {
	var h Header

	if len(b) != HeaderSize {
		return h, rpcerr.ProtocolFraming.Errorf("short header: got %d bytes, want %d", len(b), HeaderSize)
	}

	if b[0] != magic[0] || b[1] != magic[1] || b[2] != magic[2] || b[3] != magic[3] {
		return h, rpcerr.ProtocolFraming.Errorf("bad magic: % x", b[0:4])
	}

	if b[4] != ProtocolMajor {
		return h, rpcerr.ProtocolFraming.Errorf("unsupported protocol major version %d", b[4])
	}

	if b[6] > EncodingMajor {
		return h, rpcerr.ProtocolFraming.Errorf("unsupported encoding major version %d", b[6])
	}

	mt := MessageType(b[8])
	if !mt.Valid() {
		return h, rpcerr.ProtocolFraming.Errorf("unknown message type %d", b[8])
	}

	size := binary.LittleEndian.Uint32(b[10:14])
	if size < HeaderSize {
		return h, rpcerr.ProtocolFraming.Errorf("declared size %d below header size", size)
	}
	if sizeMax > 0 && size > sizeMax {
		return h, rpcerr.ProtocolFraming.Errorf("declared size %d exceeds configured maximum %d", size, sizeMax)
	}

	h.Type = mt
	h.Compression = CompressionStatus(b[9])
	h.Size = size

	return h, nil
}
