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

package rpccfg

import (
	"strings"

	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/protocol"
)

// ACMHeartbeatPolicy is the wire-facing, string-parseable twin of
// connection.HeartbeatPolicy: configuration files name policies, code
// compares enums.
type ACMHeartbeatPolicy uint8

const (
	ACMHeartbeatOff ACMHeartbeatPolicy = iota
	ACMHeartbeatOnDispatch
	ACMHeartbeatOnIdle
	ACMHeartbeatAlways
)

// ParseACMHeartbeatPolicy parses a policy name case-insensitively, falling
// back to ACMHeartbeatOff for anything unrecognized.
func ParseACMHeartbeatPolicy(s string) ACMHeartbeatPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ondispatch":
		return ACMHeartbeatOnDispatch
	case "onidle":
		return ACMHeartbeatOnIdle
	case "always":
		return ACMHeartbeatAlways
	default:
		return ACMHeartbeatOff
	}
}

func (p ACMHeartbeatPolicy) String() string {
	switch p {
	case ACMHeartbeatOnDispatch:
		return "ondispatch"
	case ACMHeartbeatOnIdle:
		return "onidle"
	case ACMHeartbeatAlways:
		return "always"
	default:
		return "off"
	}
}

// ToConnection maps this config-layer policy onto the connection
// package's runtime enum.
func (p ACMHeartbeatPolicy) ToConnection() connection.HeartbeatPolicy {
	switch p {
	case ACMHeartbeatOnDispatch:
		return connection.HeartbeatOnDispatch
	case ACMHeartbeatOnIdle:
		return connection.HeartbeatOnIdle
	case ACMHeartbeatAlways:
		return connection.HeartbeatAlways
	default:
		return connection.HeartbeatOff
	}
}

// ACMClosePolicy is the wire-facing, string-parseable twin of
// connection.ClosePolicy.
type ACMClosePolicy uint8

const (
	ACMCloseOnIdleOff ACMClosePolicy = iota
	ACMCloseOnIdle
	ACMCloseOnIdleForceful
	ACMCloseOnInvocation
)

func ParseACMClosePolicy(s string) ACMClosePolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onidle":
		return ACMCloseOnIdle
	case "onidleforceful":
		return ACMCloseOnIdleForceful
	case "oninvocation":
		return ACMCloseOnInvocation
	default:
		return ACMCloseOnIdleOff
	}
}

func (p ACMClosePolicy) String() string {
	switch p {
	case ACMCloseOnIdle:
		return "onidle"
	case ACMCloseOnIdleForceful:
		return "onidleforceful"
	case ACMCloseOnInvocation:
		return "oninvocation"
	default:
		return "off"
	}
}

func (p ACMClosePolicy) ToConnection() connection.ClosePolicy {
	switch p {
	case ACMCloseOnIdle:
		return connection.CloseOnIdle
	case ACMCloseOnIdleForceful:
		return connection.CloseOnIdleForceful
	case ACMCloseOnInvocation:
		return connection.CloseOnInvocation
	default:
		return connection.CloseOnIdleOff
	}
}

// CompressionAlgorithm selects the codec WireCodec uses for outgoing
// messages; bzip2 matches the wire format's specified default, flate is
// offered as a cheaper alternative for transports that prefer it.
type CompressionAlgorithm uint8

const (
	CompressionBzip2 CompressionAlgorithm = iota
	CompressionFlate
)

func ParseCompressionAlgorithm(s string) CompressionAlgorithm {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flate":
		return CompressionFlate
	default:
		return CompressionBzip2
	}
}

func (a CompressionAlgorithm) String() string {
	switch a {
	case CompressionFlate:
		return "flate"
	default:
		return "bzip2"
	}
}

func (a CompressionAlgorithm) ToProtocol() protocol.Algorithm {
	switch a {
	case CompressionFlate:
		return protocol.AlgorithmFlate
	default:
		return protocol.AlgorithmBzip2
	}
}
