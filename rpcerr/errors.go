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

package rpcerr

import (
	"errors"
	"fmt"
)

// Error is the error type surfaced by the connection core. It carries a
// Code (an error kind), a message, an optional parent chain, and a
// Graceful flag meaningful only for ManuallyClosed.
type Error interface {
	error

	// Code returns the classification of this error.
	Code() Code
	// Is reports whether err carries the same code as this error, following
	// standard library errors.Is semantics (also checks the parent chain).
	Is(err error) bool
	// Graceful is meaningful only when Code() == ManuallyClosed: true for
	// close(Gracefully)/close(GracefullyWithWait), false for close(Forcefully).
	Graceful() bool
	// WithGraceful returns a copy of the error with Graceful set.
	WithGraceful(graceful bool) Error
	// Parent returns the wrapped parent errors, if any.
	Parent() []error
	// Add appends non-nil parents to the error's parent chain.
	Add(parent ...error)
	// Unwrap exposes the first parent for errors.Is/errors.As chains.
	Unwrap() error
}

type ers struct {
	code     Code
	message  string
	graceful bool
	parent   []error
}

func newError(c Code, message string, parent ...error) Error {
	e := &ers{code: c, message: message}
	e.Add(parent...)
	return e
}

func newErrorf(c Code, format string, args ...interface{}) Error {
	return newError(c, fmt.Sprintf(format, args...))
}

func (e *ers) Error() string {
	if e.message == "" {
		return e.code.Message()
	}
	return e.message
}

func (e *ers) Code() Code {
	return e.code
}

func (e *ers) Graceful() bool {
	return e.graceful
}

func (e *ers) WithGraceful(graceful bool) Error {
	return &ers{code: e.code, message: e.message, graceful: graceful, parent: e.parent}
}

func (e *ers) Parent() []error {
	return e.parent
}

func (e *ers) Add(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
}

func (e *ers) Unwrap() error {
	if len(e.parent) == 0 {
		return nil
	}
	return e.parent[0]
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if o, ok := err.(*ers); ok {
		return e.code == o.code
	}
	for _, p := range e.parent {
		if errors.Is(p, err) {
			return true
		}
	}
	return false
}

// New wraps message under Unknown, recording parent errors. Mirrors the
// standard library's errors.New for call sites that have no specific code.
func New(message string, parent ...error) Error {
	return newError(Unknown, message, parent...)
}

// IsCode reports whether err (or one of its Is-chained ancestors) carries
// code c.
func IsCode(err error, c Code) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		if e.Code() == c {
			return true
		}
		for _, p := range e.Parent() {
			if IsCode(p, c) {
				return true
			}
		}
		return false
	}
	return IsCode(errors.Unwrap(err), c)
}

// expectedSilent is the set of codes that must not produce a logged warning
// even on a previously-validated connection.
var expectedSilent = map[Code]struct{}{
	ManuallyClosed: {},
	ConnectTimeout: {},
}

// IsExpectedSilent reports whether err belongs to the expected-silent set.
// The set holds ManuallyClosed and ConnectTimeout; this package defines
// no codes for CloseConnection, CommunicatorDestroyed or
// ObjectAdapterDeactivated. A nil err counts as silent.
func IsExpectedSilent(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(Error); ok {
		_, silent := expectedSilent[e.Code()]
		return silent
	}
	return false
}

// IsRetryable reports whether a higher-level proxy may reasonably retry the
// invocation on a different connection before it is sent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	e, ok := err.(Error)
	if !ok {
		return false
	}
	switch e.Code() {
	case ConnectionLost, ManuallyClosed:
		return true
	default:
		return false
	}
}
