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
	"sync"

	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
	"github.com/sabouaram/goice/rpclog"
	"github.com/sabouaram/goice/transport"
)

// RequestHandler is the server-side hand-off point: ConnectionCore
// extracts a Request/BatchRequest's bytes and request id then calls
// Dispatch, outside its own lock. The dispatch package's Dispatcher
// implements this.
type RequestHandler interface {
	Dispatch(conn *ConnectionCore, requestID uint32, encaps []byte)
}

// Replies are correlated by request id against RequestTable: the invoke
// package's Invoker registers a PendingRequest per outstanding call, and
// handleReplyLocked takes and resolves it when the Reply arrives.

// Config bundles the tunables ConnectionCore needs at construction. It
// intentionally repeats a subset of rpccfg.Connection's fields rather
// than importing rpccfg, keeping this package free of a dependency on
// configuration/validation concerns.
type Config struct {
	MessageSizeMax    uint32
	CompressionLevel  int
	CompressionAlgo   protocol.Algorithm
	IsServer          bool
	OnHeartbeat       func()
}

// ConnectionCore is the per-connection state machine described by this
// runtime's protocol engine: it owns the send queue, request table and
// activity monitor, and drives the transceiver through on_ready.
type ConnectionCore struct {
	mu sync.Mutex

	state  State
	err    rpcerr.Error
	cfg    Config
	logger rpclog.Logger

	transceiver transport.Transceiver
	pool        transport.ThreadPool
	timer       transport.Timer

	sendQueue SendQueue
	requests  *RequestTable
	acm       *ActivityMonitor
	dispatch  RequestHandler

	dispatchCount int

	readHeader    [protocol.HeaderSize]byte
	readHeaderPos int
	readingBody   bool
	readBody      []byte
	readBodyPos   int
	curHeader     protocol.Header

	holding  sync.Cond
	finished sync.Cond
}

// New builds a ConnectionCore in NotInitialized state.
func New(cfg Config, tc transport.Transceiver, pool transport.ThreadPool, timer transport.Timer, logger rpclog.Logger) *ConnectionCore {
	c := &ConnectionCore{
		cfg:         cfg,
		transceiver: tc,
		pool:        pool,
		timer:       timer,
		logger:      rpclog.Resolve(func() rpclog.Logger { return logger }),
		requests:    NewRequestTable(),
		state:       StateNotInitialized,
	}
	c.holding.L = &c.mu
	c.finished.L = &c.mu
	return c
}

// SetDispatcher wires the server-side handoff used for Request and
// BatchRequest messages. Client-only connections may leave this unset.
func (c *ConnectionCore) SetDispatcher(d RequestHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch = d
}

// SetActivityMonitor installs the heartbeat/idle-close policy.
func (c *ConnectionCore) SetActivityMonitor(m *ActivityMonitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acm = m
}

func (c *ConnectionCore) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ConnectionCore) Requests() *RequestTable { return c.requests }

// ExceptionIfFailed returns the recorded failure exception, or nil if
// the connection has not failed.
func (c *ConnectionCore) ExceptionIfFailed() rpcerr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// WaitUntilHolding blocks until the connection reaches Holding or later.
func (c *ConnectionCore) WaitUntilHolding() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state < StateHolding {
		c.holding.Wait()
	}
}

// WaitUntilFinished blocks until the connection reaches Finished.
func (c *ConnectionCore) WaitUntilFinished() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state < StateFinished {
		c.finished.Wait()
	}
}

// Activate enables the read path (Holding -> Active).
func (c *ConnectionCore) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateHolding {
		c.state = StateActive
		c.pool.Register(c, transport.InterestRead)
	}
}

// Hold disables the read path (Active -> Holding); in-flight dispatches
// still complete.
func (c *ConnectionCore) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.state = StateHolding
		c.pool.Unregister(c, transport.InterestRead)
	}
}

// OnReady is ConnectionCore's ThreadPool.Handle entry point.
func (c *ConnectionCore) OnReady(op transport.Interest) {
	c.mu.Lock()

	var callbacks []func()

	if op&transport.InterestWrite != 0 {
		callbacks = append(callbacks, c.onWriteReadyLocked()...)
	}
	if op&transport.InterestRead != 0 {
		callbacks = append(callbacks, c.onReadReadyLocked()...)
	}

	c.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// enqueue appends msg to the send queue, attempting an immediate
// non-blocking write when the queue was empty. Returns the resulting
// status and any sent-callback to invoke once the caller releases the
// lock this was called under.
func (c *ConnectionCore) enqueue(msg *OutgoingMessage) (SendStatus, func()) {
	wasEmpty := c.sendQueue.Empty()
	c.sendQueue.PushBack(msg)

	if !wasEmpty {
		return StatusQueued, nil
	}

	n, op, err := c.transceiver.Write(msg.Remaining())
	if err != nil {
		c.failLocked(rpcerr.ConnectionLost.Error(err))
		return StatusQueued, nil
	}
	msg.Advance(n)

	if op == transport.OpNeedWrite || !msg.Done() {
		c.pool.Register(c, transport.InterestWrite)
		return StatusQueued, nil
	}

	completed, next := c.sendQueue.AdvanceHead()
	if next == nil {
		c.pool.Unregister(c, transport.InterestWrite)
	}
	if completed != nil && completed.SentCallback != nil {
		return StatusSentAndInvokeSentCallback, completed.SentCallback
	}
	return StatusSent, nil
}

// Enqueue is the public, lock-acquiring wrapper Invoker and Dispatcher
// call to hand a framed message to the send path.
func (c *ConnectionCore) Enqueue(msg *OutgoingMessage) SendStatus {
	c.mu.Lock()
	status, cb := c.enqueue(msg)
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	return status
}

// Cancel removes a not-yet-sent (or adopts an in-flight) message from
// the send queue.
func (c *ConnectionCore) Cancel(msg *OutgoingMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendQueue.Cancel(msg)
}

// SubmitRequest inserts pending into RequestTable (when non-nil, i.e. a
// two-way call) and enqueues msg, both under the same lock acquisition
// so a reply can never race the table insert. Invoker uses this instead
// of Enqueue directly for anything that expects correlation.
func (c *ConnectionCore) SubmitRequest(msg *OutgoingMessage, pending *PendingRequest) SendStatus {
	c.mu.Lock()
	if pending != nil {
		c.requests.Insert(pending)
	}
	status, cb := c.enqueue(msg)
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	return status
}

// CheckSendSize delegates to the transceiver's max-send-size check,
// letting Invoker fail an oversize request synchronously before it ever
// reaches the send queue.
func (c *ConnectionCore) CheckSendSize(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transceiver.CheckSendSize(n)
}

// CompressionParams returns the configured compression level and
// algorithm, used by Invoker to build OutgoingMessage values consistent
// with this connection's configuration.
func (c *ConnectionCore) CompressionParams() (level int, alg protocol.Algorithm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.CompressionLevel, c.cfg.CompressionAlgo
}
