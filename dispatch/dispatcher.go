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

package dispatch

import (
	"context"

	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/marshal"
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpclog"
)

// Dispatcher implements connection.RequestHandler: the server-side
// handoff ConnectionCore calls, outside its own lock, for every decoded
// Request or BatchRequest entry.
type Dispatcher struct {
	manager ServantManager
	logger  rpclog.Logger
	ctx     context.Context
}

func NewDispatcher(manager ServantManager, logger rpclog.Logger) *Dispatcher {
	return &Dispatcher{
		manager: manager,
		logger:  rpclog.Resolve(func() rpclog.Logger { return logger }),
		ctx:     context.Background(),
	}
}

// WithContext returns a copy of d whose Invoke calls are rooted at ctx
// instead of context.Background(), letting a caller wire in a
// server-wide shutdown signal.
func (d *Dispatcher) WithContext(ctx context.Context) *Dispatcher {
	cp := *d
	cp.ctx = ctx
	return &cp
}

// Dispatch runs the seven-step server pipeline for one decoded request:
// decode header, resolve servant, resolve operation, validate mode,
// unmarshal and invoke, marshal the reply (or drop it for a one-way),
// and finally signal completion back to the connection.
func (d *Dispatcher) Dispatch(conn *connection.ConnectionCore, requestID uint32, encaps []byte) {
	defer conn.DispatchComplete()

	body, _, _, err := protocol.DecodeEncaps(encaps)
	if err != nil {
		d.replyUnknown(conn, requestID, "malformed request encapsulation: "+err.Error())
		return
	}

	in := marshal.NewInputStream(body)
	header, err := marshal.DecodeRequestHeader(in)
	if err != nil {
		d.replyUnknown(conn, requestID, "malformed request header: "+err.Error())
		return
	}

	servant, ok := d.manager.Find(header.Identity, header.Facet)
	if !ok {
		d.replyIdentityError(conn, requestID, protocol.ReplyObjectNotExist, header)
		return
	}

	op, ok := servant.Operation(header.Operation)
	if !ok {
		d.replyIdentityError(conn, requestID, protocol.ReplyOperationNotExist, header)
		return
	}

	if !op.Mode.Satisfies(header.Mode) {
		d.replyUnknown(conn, requestID, "operation "+header.Operation+" declared a stronger mode than the request was sent with")
		return
	}

	outArgs, userErr, ierr := op.Invoke(d.ctx, in.Rest(), header.Context)
	if ierr != nil {
		d.logger.WithFields(rpclog.Fields{"operation": header.Operation, "error": ierr.Error()}).Warn("dispatch failed")
		d.replyUnknown(conn, requestID, ierr.Error())
		return
	}
	if userErr != nil {
		o := marshal.NewOutputStream(32 + len(userErr.Body))
		marshal.EncodeUserException(o, *userErr)
		d.sendReply(conn, requestID, protocol.ReplyUserException, o.Bytes())
		return
	}

	d.sendReply(conn, requestID, protocol.ReplyOK, outArgs)
}

func (d *Dispatcher) replyIdentityError(conn *connection.ConnectionCore, requestID uint32, status protocol.ReplyStatus, header marshal.RequestHeader) {
	o := marshal.NewOutputStream(64)
	o.WriteString(header.Identity.Name)
	o.WriteString(header.Identity.Category)
	o.WriteString(header.Facet)
	o.WriteString(header.Operation)
	d.sendReply(conn, requestID, status, o.Bytes())
}

func (d *Dispatcher) replyUnknown(conn *connection.ConnectionCore, requestID uint32, message string) {
	o := marshal.NewOutputStream(len(message) + 4)
	o.WriteString(message)
	d.sendReply(conn, requestID, protocol.ReplyUnknownException, o.Bytes())
}

// sendReply frames and enqueues a Reply, unless requestID is 0: a
// one-way request never gets a reply message, regardless of status.
func (d *Dispatcher) sendReply(conn *connection.ConnectionCore, requestID uint32, status protocol.ReplyStatus, body []byte) {
	if requestID == 0 {
		return
	}
	frame := protocol.EncodeReply(requestID, status, body)
	level, alg := conn.CompressionParams()
	msg, err := connection.NewOutgoingMessage(frame, requestID, level, alg, nil)
	if err != nil {
		d.logger.WithFields(rpclog.Fields{"error": err.Error()}).Warn("failed to build reply message")
		return
	}
	conn.Enqueue(msg)
}
