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

package connection

import (
	"encoding/binary"

	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
)

// SendStatus is returned by Enqueue, distinguishing a synchronously
// flushed message from one left for the I/O loop to drain.
type SendStatus uint8

const (
	StatusQueued SendStatus = iota
	StatusSent
	StatusSentAndInvokeSentCallback
)

// OutgoingMessage is one framed message waiting to be written, or
// already partially written. Stream holds the complete header+body
// bytes; Cursor tracks how much of it has reached the transceiver.
type OutgoingMessage struct {
	Stream       []byte
	Cursor       int
	RequestID    uint32
	SentCallback func()

	// AdoptStream is set by Cancel when the message is already the head
	// and partially on the wire: the bytes in flight are allowed to
	// finish so the peer never sees a truncated frame, but no
	// sent-callback fires and RequestTable treats it as canceled.
	AdoptStream bool
	canceled    bool
}

func (m *OutgoingMessage) Remaining() []byte { return m.Stream[m.Cursor:] }
func (m *OutgoingMessage) Advance(n int)     { m.Cursor += n }
func (m *OutgoingMessage) Done() bool        { return m.Cursor >= len(m.Stream) }
func (m *OutgoingMessage) Started() bool     { return m.Cursor > 0 }

// NewOutgoingMessage builds an OutgoingMessage from a complete frame,
// applying per-connection compression when the body is eligible. level
// is the connection's compression level (0 disables compression).
func NewOutgoingMessage(frame []byte, requestID uint32, level int, alg protocol.Algorithm, sentCB func()) (*OutgoingMessage, rpcerr.Error) {
	body := frame[protocol.HeaderSize:]

	if !protocol.Eligible(level, len(body)) {
		return &OutgoingMessage{Stream: frame, RequestID: requestID, SentCallback: sentCB}, nil
	}

	compressed, err := protocol.Compress(alg, level, body)
	if err != nil {
		return nil, err
	}
	if len(compressed) >= len(body) {
		return &OutgoingMessage{Stream: frame, RequestID: requestID, SentCallback: sentCB}, nil
	}

	wrapped := protocol.EncodeCompressedBody(uint32(len(body)), compressed)

	out := make([]byte, protocol.HeaderSize+len(wrapped))
	copy(out, frame[:protocol.HeaderSize])
	out[9] = byte(protocol.CompressionCompressed)
	binary.LittleEndian.PutUint32(out[10:14], uint32(len(out)))
	copy(out[protocol.HeaderSize:], wrapped)

	return &OutgoingMessage{Stream: out, RequestID: requestID, SentCallback: sentCB}, nil
}

// SendQueue is an append-only FIFO of OutgoingMessage; the head is the
// message currently being transmitted. All methods assume the caller
// holds ConnectionCore's lock.
type SendQueue struct {
	messages []*OutgoingMessage
}

func (q *SendQueue) Empty() bool { return len(q.messages) == 0 }

func (q *SendQueue) Front() *OutgoingMessage {
	if q.Empty() {
		return nil
	}
	return q.messages[0]
}

func (q *SendQueue) PushBack(m *OutgoingMessage) {
	q.messages = append(q.messages, m)
}

// AdvanceHead pops the completed front message for the caller to invoke
// its sent hook, returning the new front (nil if the queue is now
// empty).
func (q *SendQueue) AdvanceHead() (completed *OutgoingMessage, next *OutgoingMessage) {
	if q.Empty() {
		return nil, nil
	}
	completed = q.messages[0]
	q.messages = q.messages[1:]
	return completed, q.Front()
}

// Cancel removes msg from the queue. If msg is the head and already
// partially written, it is left in place with AdoptStream set so its
// in-flight bytes can finish without truncating the frame; Cancel
// reports false in that case since the message was not actually
// removed from the wire.
func (q *SendQueue) Cancel(msg *OutgoingMessage) bool {
	if len(q.messages) > 0 && q.messages[0] == msg {
		if msg.Started() {
			msg.AdoptStream = true
			msg.canceled = true
			return false
		}
		q.messages = q.messages[1:]
		msg.canceled = true
		return true
	}
	for idx, m := range q.messages {
		if m == msg {
			q.messages = append(q.messages[:idx], q.messages[idx+1:]...)
			msg.canceled = true
			return true
		}
	}
	return false
}

func (m *OutgoingMessage) Canceled() bool { return m.canceled }

// DrainQueued removes every message that has not yet started
// transmission, leaving only a partially-written front message (if any)
// in place so its in-flight bytes still reach the peer intact. It
// returns the removed messages so the caller can fail their correlated
// pending requests.
func (q *SendQueue) DrainQueued() []*OutgoingMessage {
	if q.Empty() {
		return nil
	}
	start := 0
	if q.messages[0].Started() {
		start = 1
	}
	drained := append([]*OutgoingMessage(nil), q.messages[start:]...)
	q.messages = q.messages[:start]
	return drained
}
