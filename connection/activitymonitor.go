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
	"sync/atomic"
	"time"
)

// HeartbeatPolicy selects when ActivityMonitor emits a ValidateConnection
// frame to keep an idle connection's liveness observable to the peer.
type HeartbeatPolicy uint8

const (
	HeartbeatOff HeartbeatPolicy = iota
	HeartbeatOnDispatch
	HeartbeatOnIdle
	HeartbeatAlways
)

// ClosePolicy selects how ActivityMonitor reacts to an idle connection.
type ClosePolicy uint8

const (
	CloseOnIdleOff ClosePolicy = iota
	CloseOnIdle
	CloseOnIdleForceful
	CloseOnInvocation
)

// ActivityMonitor tracks the last-activity timestamp for one connection
// and decides, each time Check is called, whether a heartbeat or an
// idle-close action is due. The timestamp is a plain atomic.Int64 of
// UnixNano rather than atomic.Value[time.Time]: a zero time.Time is a
// meaningful "never" value Value[T]'s default-on-empty-load semantics
// would silently paper over.
type ActivityMonitor struct {
	Timeout   time.Duration
	Close     ClosePolicy
	Heartbeat HeartbeatPolicy

	lastActivity atomic.Int64
}

func NewActivityMonitor(timeout time.Duration, close ClosePolicy, heartbeat HeartbeatPolicy) *ActivityMonitor {
	m := &ActivityMonitor{Timeout: timeout, Close: close, Heartbeat: heartbeat}
	m.Touch(time.Now())
	return m
}

func (m *ActivityMonitor) Touch(now time.Time) {
	m.lastActivity.Store(now.UnixNano())
}

func (m *ActivityMonitor) LastActivity() time.Time {
	return time.Unix(0, m.lastActivity.Load())
}

// Action is what Check decided should happen to the connection it was
// evaluating.
type Action uint8

const (
	ActionNone Action = iota
	ActionHeartbeat
	ActionCloseGraceful
	ActionCloseForceful
)

// Check evaluates the heartbeat and idle-close policies against now.
// dispatching reports whether the connection currently has at least one
// in-flight dispatch (for HeartbeatOnDispatch); partialIO reports
// whether a read or write is mid-frame (idle close never fires while
// true); requestsPending and batchPending report whether the request
// table or batch queue still hold work (CloseOnIdle waits for both to
// drain; CloseOnInvocation refuses to close at all while true).
func (m *ActivityMonitor) Check(now time.Time, dispatching, partialIO, requestsPending, batchPending bool) Action {
	idle := now.Sub(m.LastActivity())

	switch m.Heartbeat {
	case HeartbeatAlways:
		return ActionHeartbeat
	case HeartbeatOnIdle:
		if idle >= m.Timeout/4 {
			return ActionHeartbeat
		}
	case HeartbeatOnDispatch:
		if dispatching && idle >= m.Timeout/4 {
			return ActionHeartbeat
		}
	}

	if idle < m.Timeout || partialIO {
		return ActionNone
	}

	switch m.Close {
	case CloseOnIdleForceful:
		return ActionCloseForceful
	case CloseOnIdle:
		if !requestsPending && !batchPending {
			return ActionCloseGraceful
		}
	case CloseOnInvocation:
		if !requestsPending {
			return ActionCloseGraceful
		}
	}

	return ActionNone
}
