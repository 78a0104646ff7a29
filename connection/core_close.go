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
	"time"

	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
	"github.com/sabouaram/goice/rpclog"
	"github.com/sabouaram/goice/transport"
)

// Validate drives the transceiver handshake and the ValidateConnection
// exchange: NotInitialized -> NotValidated -> Holding. The server side
// writes the bare-header ValidateConnection frame once the handshake
// completes; the client side waits for handleMessageLocked to observe
// one (see core_io.go).
func (c *ConnectionCore) Validate() rpcerr.Error {
	c.mu.Lock()

	op, err := c.transceiver.Init()
	if err != nil {
		e := rpcerr.ConnectTimeout.Error(err)
		c.failLocked(e)
		c.mu.Unlock()
		return e
	}
	if op != transport.OpNone {
		c.mu.Unlock()
		return nil
	}

	c.state = StateNotValidated
	c.pool.Register(c, transport.InterestRead)

	if !c.cfg.IsServer {
		c.mu.Unlock()
		return nil
	}

	msg := &OutgoingMessage{Stream: protocol.EncodeValidateConnection()}
	_, cb := c.enqueue(msg)
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Close tears the connection down per mode. CloseGracefullyWithWait
// blocks the caller until the request table drains.
func (c *ConnectionCore) Close(mode CloseMode) {
	c.mu.Lock()

	if mode == CloseGracefullyWithWait {
		for c.requests.Len() > 0 && c.state < StateClosing {
			c.mu.Unlock()
			time.Sleep(time.Millisecond)
			c.mu.Lock()
		}
	}

	if c.state >= StateClosing {
		c.mu.Unlock()
		return
	}

	graceful := mode != CloseForcefully
	reason := rpcerr.ManuallyClosed.Errorf("connection closed locally").WithGraceful(graceful)

	if !graceful {
		c.closeLocked(reason)
		c.mu.Unlock()
		return
	}

	c.state = StateClosing
	c.err = reason
	c.failQueuedLocked(reason)
	var callbacks []func()
	c.maybeInitiateShutdownLocked(&callbacks)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// failQueuedLocked fails every send-queue entry that has not yet
// started transmission: a graceful close still lets already-sent
// two-way requests await their replies, but a request that never made
// it onto the wire is rejected immediately rather than flushed, per the
// close handshake's "no new work accepted" contract.
func (c *ConnectionCore) failQueuedLocked(reason rpcerr.Error) {
	for _, msg := range c.sendQueue.DrainQueued() {
		if msg.RequestID != 0 {
			c.requests.Cancel(msg.RequestID, reason)
		}
	}
}

// failLocked records err as the connection's terminal exception and
// transitions to Closed, unless already beyond that point.
func (c *ConnectionCore) failLocked(err rpcerr.Error) {
	c.closeLocked(err)
}

func (c *ConnectionCore) closeLocked(err rpcerr.Error) {
	if c.state >= StateClosed {
		return
	}
	if c.err == nil {
		c.err = err
	}
	wasValidated := c.state >= StateHolding
	c.state = StateClosed

	c.pool.Unregister(c, transport.InterestRead)
	c.pool.Unregister(c, transport.InterestWrite)

	c.requests.FailAll(c.err)

	if wasValidated && !rpcerr.IsExpectedSilent(c.err) {
		c.logger.WithFields(rpclog.Fields{"error": c.err.Error()}).Warn("connection closed with error")
	}

	if c.dispatchCount == 0 {
		c.reapLocked()
	}
}

func (c *ConnectionCore) reapLocked() {
	if c.state != StateClosed {
		return
	}
	if c.pool.Finish(c, true) {
		_ = c.transceiver.Close()
	}
	c.state = StateFinished
	c.finished.Broadcast()
}

// Tick is called periodically (by an external scheduler, typically once
// per ActivityMonitor.Timeout/2) to evaluate the heartbeat and idle
// close policy against the current time.
func (c *ConnectionCore) Tick(now time.Time) {
	c.mu.Lock()
	if c.acm == nil || c.state != StateActive {
		c.mu.Unlock()
		return
	}

	action := c.acm.Check(now, c.dispatchCount > 0, c.readingBody, c.requests.Len() > 0, false)

	var callbacks []func()
	switch action {
	case ActionHeartbeat:
		msg := &OutgoingMessage{Stream: protocol.EncodeValidateConnection()}
		_, cb := c.enqueue(msg)
		if cb != nil {
			callbacks = append(callbacks, cb)
		}
	case ActionCloseForceful:
		c.closeLocked(rpcerr.ManuallyClosed.Errorf("idle timeout").WithGraceful(false))
	case ActionCloseGraceful:
		c.state = StateClosing
		c.err = rpcerr.ManuallyClosed.Errorf("idle timeout").WithGraceful(true)
		c.failQueuedLocked(c.err)
		c.maybeInitiateShutdownLocked(&callbacks)
	}
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}
