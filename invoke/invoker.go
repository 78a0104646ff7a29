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

package invoke

import (
	"context"
	"sync"

	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/marshal"
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
)

// OpMetadata names the target of an invocation: the servant identity,
// its facet, the operation, and the mode this invocation declares it is
// sending at (checked by the Dispatcher against the operation's
// declared mode).
type OpMetadata struct {
	Identity  marshal.Identity
	Facet     string
	Operation string
	Mode      protocol.OperationMode
}

// Reply is what a two-way Future resolves with: the status byte and raw
// encapsulation bytes from the Reply message, left for the caller to
// unmarshal with the same operation metadata used to send the request.
type Reply struct {
	Status protocol.ReplyStatus
	Encaps []byte
}

// Sent is the (empty) value a one-way or batch-flush Future resolves
// with once its message has reached the wire.
type Sent struct{}

// BatchCompression selects how FlushBatch decides whether to compress
// the coalesced BatchRequest frame.
type BatchCompression uint8

const (
	// BatchCompressionNever never compresses a batch, regardless of the
	// connection's configured level.
	BatchCompressionNever BatchCompression = iota
	// BatchCompressionIfLarge compresses only when the batch's combined
	// body is large enough to clear protocol.Eligible's floor at the
	// connection's configured level.
	BatchCompressionIfLarge
	// BatchCompressionAlways compresses at the connection's configured
	// level regardless of size (still a no-op below the floor).
	BatchCompressionAlways
)

// Invoker is the client-side handle bound to one ConnectionCore.
type Invoker struct {
	conn *connection.ConnectionCore

	mu    sync.Mutex
	batch [][]byte
}

func NewInvoker(conn *connection.ConnectionCore) *Invoker {
	return &Invoker{conn: conn}
}

// preSendCheck implements the shared pre-send rule: a connection that
// already recorded a failure is surfaced as a retry signal rather than
// a synchronous send attempt, and an oversize message fails synchronously
// before ever reaching the send queue.
func (inv *Invoker) preSendCheck(bodySize int) rpcerr.Error {
	if err := inv.conn.ExceptionIfFailed(); err != nil {
		return err
	}
	if err := inv.conn.CheckSendSize(bodySize); err != nil {
		if re, ok := err.(rpcerr.Error); ok {
			return re
		}
		return rpcerr.ProtocolFraming.Error(err)
	}
	return nil
}

func requestParams(op OpMetadata, ctxArgs map[string]string, args []byte) []byte {
	o := marshal.NewOutputStream(64 + len(args))
	marshal.EncodeRequestHeader(o, marshal.RequestHeader{
		Identity:  op.Identity,
		Facet:     op.Facet,
		Operation: op.Operation,
		Mode:      op.Mode,
		Context:   ctxArgs,
	})
	return append(o.Bytes(), args...)
}

// InvokeTwoway marshals args behind a RequestHeader, assigns a fresh
// request id, submits the frame, and registers the id in the
// connection's RequestTable. The returned future is completed either by
// the reply path (success or a user exception encoded in the reply) or
// by a local failure (ConnectionLost, InvocationTimeout, ...).
func (inv *Invoker) InvokeTwoway(ctx context.Context, op OpMetadata, args []byte, ctxArgs map[string]string) (*Future[Reply], rpcerr.Error) {
	params := requestParams(op, ctxArgs, args)
	if err := inv.preSendCheck(len(params)); err != nil {
		return nil, err
	}

	id := inv.conn.Requests().NextID()
	frame := protocol.EncodeRequest(id, params)
	level, alg := inv.conn.CompressionParams()

	future := NewFuture[Reply]()
	msg, err := connection.NewOutgoingMessage(frame, id, level, alg, nil)
	if err != nil {
		return nil, err
	}

	pending := &connection.PendingRequest{
		RequestID: id,
		Resolve:   func(status uint8, encaps []byte) { future.Resolve(Reply{Status: protocol.ReplyStatus(status), Encaps: encaps}) },
		Fail:      func(err rpcerr.Error) { future.Fail(err) },
	}
	inv.conn.SubmitRequest(msg, pending)

	go func() {
		<-ctx.Done()
		inv.conn.Requests().Cancel(id, rpcerr.Canceled.Errorf("invocation canceled: %v", ctx.Err()))
	}()

	return future, nil
}

// InvokeOneway is identical to InvokeTwoway except the request id is 0,
// no RequestTable entry is registered, and the returned future completes
// as soon as the message is fully on the wire rather than on reply.
func (inv *Invoker) InvokeOneway(ctx context.Context, op OpMetadata, args []byte, ctxArgs map[string]string) (*Future[Sent], rpcerr.Error) {
	params := requestParams(op, ctxArgs, args)
	if err := inv.preSendCheck(len(params)); err != nil {
		return nil, err
	}

	frame := protocol.EncodeRequest(0, params)
	level, alg := inv.conn.CompressionParams()

	future := NewFuture[Sent]()
	msg, err := connection.NewOutgoingMessage(frame, 0, level, alg, func() { future.Resolve(Sent{}) })
	if err != nil {
		return nil, err
	}

	inv.conn.SubmitRequest(msg, nil)

	return future, nil
}

// QueueOneway appends a one-way request's body (identical shape to
// InvokeOneway's frame body, minus the message header) to this
// Invoker's batch, to be coalesced by a subsequent FlushBatch.
func (inv *Invoker) QueueOneway(op OpMetadata, args []byte, ctxArgs map[string]string) {
	params := requestParams(op, ctxArgs, args)
	encaps := protocol.EncodeEncaps(params)
	body := make([]byte, 4+len(encaps))
	copy(body[4:], encaps)

	inv.mu.Lock()
	inv.batch = append(inv.batch, body)
	inv.mu.Unlock()
}

// FlushBatch coalesces every one-way queued since the last flush into a
// single BatchRequest message and submits it, choosing compression per
// policy. The returned future completes once the combined message is
// fully on the wire.
func (inv *Invoker) FlushBatch(ctx context.Context, policy BatchCompression) (*Future[Sent], rpcerr.Error) {
	inv.mu.Lock()
	batch := inv.batch
	inv.batch = nil
	inv.mu.Unlock()

	frame := protocol.EncodeBatchRequest(batch)

	level, alg := inv.conn.CompressionParams()
	if policy == BatchCompressionNever {
		level = 0
	}
	// IfLarge and Always both fall through to the connection's configured
	// level: protocol.Eligible already refuses anything under
	// CompressionFloor, so IfLarge needs no extra branch here.

	if err := inv.preSendCheck(len(frame)); err != nil {
		return nil, err
	}

	future := NewFuture[Sent]()
	msg, err := connection.NewOutgoingMessage(frame, 0, level, alg, func() { future.Resolve(Sent{}) })
	if err != nil {
		return nil, err
	}

	inv.conn.SubmitRequest(msg, nil)

	return future, nil
}

// Cancel detaches a still-outstanding two-way invocation identified by
// requestID, notifying its future with reason. A request already
// resolved by a reply is unaffected.
func (inv *Invoker) Cancel(requestID uint32, reason rpcerr.Error) bool {
	return inv.conn.Requests().Cancel(requestID, reason)
}
