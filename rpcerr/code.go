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

// Package rpcerr classifies the error kinds a connection can raise
// as numeric codes, the way an HTTP status code classifies a response,
// and keeps a parent chain so a surfaced error can still reference the
// lower-level cause (a read/write syscall error, a decode failure) that
// triggered it.
package rpcerr

import (
	"strconv"
	"sync"
)

// Code is a numeric classification of an error kind, analogous to an
// HTTP status code.
type Code uint16

const (
	// Unknown is the fallback code for an error with no specific classification.
	Unknown Code = 0

	// ProtocolFraming covers bad magic, unknown message type, undersized or
	// oversized messages, truncated datagrams, and illegal encapsulation sizes.
	ProtocolFraming Code = 100

	// ConnectionLost covers a peer reset or a clean FIN seen outside a
	// graceful close. Kept distinct from ManuallyClosed so a logger can
	// suppress the warning it would otherwise emit for a local close.
	ConnectionLost Code = 101

	// CompressionUnsupported is raised for a compressed message arriving on
	// a build without the matching decompressor; treated as a framing error.
	CompressionUnsupported Code = 102

	// ConnectTimeout fires while establishing a connection (state < NotValidated).
	ConnectTimeout Code = 110
	// InvocationTimeout fires for a single request while the connection is Active.
	InvocationTimeout Code = 111
	// CloseTimeout fires while waiting for the peer's FIN after ClosingPending.
	CloseTimeout Code = 112

	// ManuallyClosed covers both close(Forcefully) and close(Gracefully);
	// Error.Graceful distinguishes the two.
	ManuallyClosed Code = 120

	// DispatchFatal covers an unrecoverable error raised while invoking user
	// code on the server side (e.g. stream corruption).
	DispatchFatal Code = 130

	// Canceled is returned to an invocation whose cancel handle fired before
	// a reply or send completion resolved it.
	Canceled Code = 140

	// ObjectNotExist and OperationNotExist are carried in a Reply's status
	// byte, not raised as a Go error on the connection itself; they are
	// registered here so Dispatcher can format consistent messages.
	ObjectNotExist    Code = 404
	OperationNotExist Code = 405

	// TLSConfiguration covers malformed certificate/key material supplied to
	// a transceiver's TLS setup (empty PEM, unreadable file, unparsable
	// key pair) — raised before a connection is ever established.
	TLSConfiguration Code = 150

	// Configuration covers a Connection or ACM struct that failed
	// validator.v10 struct-tag validation before any connection attempt.
	Configuration Code = 160
)

// Message renders a human-readable description for a Code. Codes without a
// registered message fall back to their numeric form.
type Message func(c Code) string

var (
	mu  sync.RWMutex
	reg = map[Code]string{
		Unknown:                 "unknown error",
		ProtocolFraming:         "protocol framing error",
		ConnectionLost:          "connection lost",
		CompressionUnsupported: "compressed message received without a matching codec",
		ConnectTimeout:          "connect timeout",
		InvocationTimeout:       "invocation timeout",
		CloseTimeout:            "close timeout",
		ManuallyClosed:          "connection closed",
		DispatchFatal:           "fatal dispatch error",
		Canceled:                "invocation canceled",
		ObjectNotExist:          "object does not exist",
		OperationNotExist:       "operation does not exist",
		TLSConfiguration:        "invalid TLS configuration",
		Configuration:           "invalid configuration",
	}
)

// Register associates a message with a code, overriding any previous
// registration. Intended for callers that want localized or richer text.
func Register(c Code, message string) {
	mu.Lock()
	defer mu.Unlock()
	reg[c] = message
}

func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Message returns the registered description for c, or its numeric string
// if nothing is registered.
func (c Code) Message() string {
	mu.RLock()
	defer mu.RUnlock()
	if m, ok := reg[c]; ok {
		return m
	}
	return c.String()
}

// Error builds an Error of this kind wrapping the given parents.
func (c Code) Error(parent ...error) Error {
	return newError(c, c.Message(), parent...)
}

// Errorf builds an Error of this kind with a message formatted via fmt.Sprintf,
// wrapping the given parents.
func (c Code) Errorf(format string, args ...interface{}) Error {
	return newErrorf(c, format, args...)
}
