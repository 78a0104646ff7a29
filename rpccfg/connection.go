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

// Package rpccfg holds the connection and activity-monitor tunables a
// caller assembles before constructing a connection.ConnectionCore: a
// validator.v10-tagged struct pair, loadable through viper, kept
// deliberately free of any import cycle back into connection — it
// depends on connection, never the reverse.
package rpccfg

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/duration"
	"github.com/sabouaram/goice/rpcerr"
)

// ACM mirrors connection.ActivityMonitor's constructor arguments in a
// loadable, validated shape. Timeout uses duration.Duration rather than
// a bare time.Duration so a loaded config's value both parses and
// formats with a day-aware spelling ("1d2h" and Go's native "26h" both
// parse to 26 hours, which formats back as "1d2h0m0s").
type ACM struct {
	Timeout   duration.Duration  `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`
	Close     ACMClosePolicy     `mapstructure:"close" json:"close" yaml:"close" toml:"close"`
	Heartbeat ACMHeartbeatPolicy `mapstructure:"heartbeat" json:"heartbeat" yaml:"heartbeat" toml:"heartbeat"`
}

// NewActivityMonitor builds a connection.ActivityMonitor from this ACM's
// settings.
func (a ACM) NewActivityMonitor() *connection.ActivityMonitor {
	return connection.NewActivityMonitor(a.Timeout.Time(), a.Close.ToConnection(), a.Heartbeat.ToConnection())
}

// Connection bundles the tunables a caller assembles before building a
// connection.ConnectionCore, mirroring the Client/Server split of the
// teacher's socket configuration and its validator struct-tag style.
type Connection struct {
	MessageSizeMax       int                  `mapstructure:"message_size_max" json:"message_size_max" yaml:"message_size_max" toml:"message_size_max" validate:"min=14"`
	CompressionLevel     int                  `mapstructure:"compression_level" json:"compression_level" yaml:"compression_level" toml:"compression_level" validate:"min=0,max=9"`
	CompressionAlgorithm CompressionAlgorithm `mapstructure:"compression_algorithm" json:"compression_algorithm" yaml:"compression_algorithm" toml:"compression_algorithm"`
	ConnectTimeout       duration.Duration    `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout" validate:"min=0"`
	CloseTimeout         duration.Duration    `mapstructure:"close_timeout" json:"close_timeout" yaml:"close_timeout" toml:"close_timeout" validate:"min=0"`
	ACM                  ACM                  `mapstructure:"acm" json:"acm" yaml:"acm" toml:"acm"`
}

// Default returns a Connection with the wire format's own floor for
// MessageSizeMax (the 14-byte header) and every other field left at its
// permissive zero value.
func Default() Connection {
	return Connection{MessageSizeMax: 14}
}

// Validate runs validator.v10 struct-tag validation, wrapping any
// failure as an rpcerr.Error of code Configuration.
func (c Connection) Validate() rpcerr.Error {
	if err := validator.New().Struct(c); err != nil {
		if e, ok := err.(*validator.InvalidValidationError); ok {
			return rpcerr.Configuration.Errorf("invalid configuration value: %s", e.Error())
		}

		out := rpcerr.Configuration.Error(nil)
		for _, e := range err.(validator.ValidationErrors) {
			out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Namespace(), e.ActualTag()))
		}

		return out
	}

	return nil
}

// ToCoreConfig builds a connection.Config from this Connection, wiring
// the caller's isServer flag and heartbeat callback through without
// connection ever needing to know about rpccfg.
func (c Connection) ToCoreConfig(isServer bool, onHeartbeat func()) connection.Config {
	return connection.Config{
		MessageSizeMax:   uint32(c.MessageSizeMax),
		CompressionLevel: c.CompressionLevel,
		CompressionAlgo:  c.CompressionAlgorithm.ToProtocol(),
		IsServer:         isServer,
		OnHeartbeat:      onHeartbeat,
	}
}
