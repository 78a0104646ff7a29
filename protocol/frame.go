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

// EncodeRequest builds a full Request frame: header, request id (0 for
// one-way), and the encapsulated parameter body.
func EncodeRequest(requestID uint32, params []byte) []byte {
	encaps := EncodeEncaps(params)
	body := make([]byte, 4+len(encaps))
	binary.LittleEndian.PutUint32(body[0:4], requestID)
	copy(body[4:], encaps)

	return frame(MessageRequest, body)
}

// EncodeBatchRequest coalesces n one-way request bodies (each already
// built by the same convention as EncodeRequest's body, minus the frame
// header) into one BatchRequest message.
func EncodeBatchRequest(requests [][]byte) []byte {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body[0:4], uint32(len(requests)))
	for _, r := range requests {
		body = append(body, r...)
	}
	return frame(MessageBatchRequest, body)
}

// EncodeReply builds a full Reply frame.
func EncodeReply(requestID uint32, status ReplyStatus, params []byte) []byte {
	encaps := EncodeEncaps(params)
	body := make([]byte, 5+len(encaps))
	binary.LittleEndian.PutUint32(body[0:4], requestID)
	body[4] = byte(status)
	copy(body[5:], encaps)

	return frame(MessageReply, body)
}

// EncodeValidateConnection builds a bare ValidateConnection message: a
// header with no payload.
func EncodeValidateConnection() []byte {
	return frame(MessageValidateConnection, nil)
}

// EncodeCloseConnection builds a bare CloseConnection message.
func EncodeCloseConnection() []byte {
	return frame(MessageCloseConnection, nil)
}

func frame(t MessageType, body []byte) []byte {
	h := Header{Type: t, Compression: CompressionNone, Size: uint32(HeaderSize + len(body))}
	enc := h.Encode()
	out := make([]byte, 0, len(enc)+len(body))
	out = append(out, enc[:]...)
	out = append(out, body...)
	return out
}

// DecodeRequestBody splits a Request message's body (post-header) into
// its request id and raw encapsulation bytes.
func DecodeRequestBody(body []byte) (requestID uint32, encaps []byte, err rpcerr.Error) {
	if len(body) < 4 {
		return 0, nil, rpcerr.ProtocolFraming.Errorf("request body shorter than its id field")
	}
	return binary.LittleEndian.Uint32(body[0:4]), body[4:], nil
}

// DecodeBatchRequestBody splits a BatchRequest message's body into its
// count and the remaining bytes containing the inlined one-way requests.
func DecodeBatchRequestBody(body []byte) (count uint32, rest []byte, err rpcerr.Error) {
	if len(body) < 4 {
		return 0, nil, rpcerr.ProtocolFraming.Errorf("batch request body shorter than its count field")
	}
	return binary.LittleEndian.Uint32(body[0:4]), body[4:], nil
}

// DecodeReplyBody splits a Reply message's body into its request id,
// status byte, and raw encapsulation bytes.
func DecodeReplyBody(body []byte) (requestID uint32, status ReplyStatus, encaps []byte, err rpcerr.Error) {
	if len(body) < 5 {
		return 0, 0, nil, rpcerr.ProtocolFraming.Errorf("reply body shorter than its id/status fields")
	}
	return binary.LittleEndian.Uint32(body[0:4]), ReplyStatus(body[4]), body[5:], nil
}

// RequestEntry is one decoded member of a BatchRequest message.
type RequestEntry struct {
	RequestID uint32
	Encaps    []byte
}

// DecodeBatchEntries splits a BatchRequest's post-count bytes (as
// returned by DecodeBatchRequestBody) into count individually framed
// entries, each shaped like EncodeRequest's body: a 4-byte request id
// followed by a self-describing encapsulation whose own size field
// marks where the next entry begins.
func DecodeBatchEntries(count uint32, rest []byte) ([]RequestEntry, rpcerr.Error) {
	entries := make([]RequestEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(rest) < 4+EncapsHeaderSize {
			return nil, rpcerr.ProtocolFraming.Errorf("batch request truncated before entry %d", i)
		}
		requestID := binary.LittleEndian.Uint32(rest[0:4])
		size := binary.LittleEndian.Uint32(rest[4:8])
		if size < EncapsHeaderSize || int(size) > len(rest)-4 {
			return nil, rpcerr.ProtocolFraming.Errorf("illegal batch entry encapsulation size %d", size)
		}
		entries = append(entries, RequestEntry{RequestID: requestID, Encaps: rest[4 : 4+size]})
		rest = rest[4+size:]
	}
	if len(rest) != 0 {
		return nil, rpcerr.ProtocolFraming.Errorf("batch request has %d trailing bytes", len(rest))
	}
	return entries, nil
}
