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

// Package connection implements ConnectionCore: the per-connection state
// machine, its on_ready I/O loop, the outgoing send queue, the
// request/reply correlation table, and the activity monitor driving
// heartbeats and idle close.
package connection

// State is one point in ConnectionCore's lifecycle. States are ordered:
// once a value >= Closing is reached the connection never returns to
// Active or Holding.
type State int32

const (
	StateNotInitialized State = iota
	StateNotValidated
	StateHolding
	StateActive
	StateClosing
	StateClosingPending
	StateClosed
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotInitialized:
		return "NotInitialized"
	case StateNotValidated:
		return "NotValidated"
	case StateHolding:
		return "Holding"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	case StateClosingPending:
		return "ClosingPending"
	case StateClosed:
		return "Closed"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// AtLeast reports whether s has progressed to other or further along the
// monotonic close sequence.
func (s State) AtLeast(other State) bool { return s >= other }

// CloseMode selects how close() tears a connection down.
type CloseMode uint8

const (
	CloseForcefully CloseMode = iota
	CloseGracefully
	CloseGracefullyWithWait
)
