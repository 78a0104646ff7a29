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

// Package transport names the collaborator interfaces ConnectionCore
// consumes (Transceiver, ThreadPool, Timer) and ships one concrete pair
// of implementations: a TCP/TLS Transceiver and a goroutine-pool
// ThreadPool.
package transport

import (
	"context"
	"time"
)

// Op is the outcome of a non-blocking Transceiver call: what the caller
// should wait for before retrying.
type Op uint8

const (
	OpNone Op = iota
	OpNeedRead
	OpNeedWrite
	OpConnect
)

// Interest is a readiness registration: which of read/write a connection
// currently wants the ThreadPool to notify it about.
type Interest uint8

const (
	InterestNone Interest = 0
	InterestRead Interest = 1 << iota
	InterestWrite
)

// Info describes an established transceiver, surfaced through
// ConnectionCore for diagnostics and metrics labeling.
type Info struct {
	LocalAddr  string
	RemoteAddr string
	Datagram   bool
}

// Transceiver is the non-blocking byte-I/O collaborator ConnectionCore
// drives. Every method must return promptly: Read/Write never block on
// the network, they report OpNeedRead/OpNeedWrite when the call would.
type Transceiver interface {
	// Init performs any handshake needed before the connection can be
	// considered NotValidated (e.g. a TLS handshake). May be called
	// more than once; returns OpConnect/OpNeedRead/OpNeedWrite while
	// incomplete and OpNone once done.
	Init() (Op, error)
	// Read fills buf as far as it can without blocking, returning the
	// number of bytes read. OpNeedRead signals the caller to retry once
	// the ThreadPool reports read-readiness again.
	Read(buf []byte) (n int, op Op, err error)
	// Write writes as much of buf as it can without blocking.
	Write(buf []byte) (n int, op Op, err error)
	// CheckSendSize reports whether a buffer of the given size is within
	// this transport's maximum message size, failing the send
	// synchronously instead of attempting a doomed write.
	CheckSendSize(n int) error
	// Closing begins a graceful shutdown handshake; initiator is true
	// when this side originated the close. Returns OpNeedRead while the
	// peer's FIN is still pending.
	Closing(initiator bool, cause error) (Op, error)
	// Close releases the underlying transport exactly once.
	Close() error
	// GetInfo returns addressing/shape information about the transport.
	GetInfo() Info
	// IsDatagram reports whether this transceiver has no connection
	// handshake and no graceful-close drain (e.g. UDP): ConnectionCore
	// skips Closing/ClosingPending for these and jumps directly to Closed.
	IsDatagram() bool
}

// ThreadPool is the readiness-driven scheduler collaborator.
// ConnectionCore registers interest and is later invoked on its
// `OnReady` entry point by the pool when that interest is satisfied.
type ThreadPool interface {
	// Register associates handle with interest; handle's OnReady(op) is
	// invoked when the registered interest becomes ready.
	Register(handle Handle, interest Interest)
	// Unregister removes handle's registration for interest.
	Unregister(handle Handle, interest Interest)
	// Update replaces handle's registered interest in one call.
	Update(handle Handle, old, new Interest)
	// Finish notifies the pool that handle is being torn down; the
	// returned bool reports whether the pool itself should now close it.
	Finish(handle Handle, closeNow bool) bool
	// DispatchFromThisThread hands work to the pool's executor instead
	// of running it inline on the calling goroutine, keeping dispatch
	// from starving the I/O readiness loop.
	DispatchFromThisThread(work func())
}

// Handle is the minimal surface a ThreadPool needs to invoke a
// registered connection back.
type Handle interface {
	OnReady(op Interest)
}

// Timer schedules a one-shot callback after a duration, cancelable
// before it fires.
type Timer interface {
	Schedule(ctx context.Context, delay time.Duration, task func()) TaskID
	Cancel(id TaskID)
}

// TaskID identifies a scheduled Timer task for cancellation.
type TaskID uint64
