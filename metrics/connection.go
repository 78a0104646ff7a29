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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionMetrics is the process-wide set of collectors labeled per
// connection id. All methods are nil-safe: calls on a nil
// *ConnectionMetrics are no-ops, so a caller that never wires metrics in
// pays nothing beyond a nil check.
type ConnectionMetrics struct {
	// DispatchTotal counts requests handed to a Dispatcher, per connection.
	DispatchTotal *prometheus.CounterVec

	// BytesSent and BytesReceived count raw transceiver I/O, per connection.
	BytesSent     *prometheus.CounterVec
	BytesReceived *prometheus.CounterVec

	// RequestsInFlight tracks dispatches that have not yet completed.
	RequestsInFlight *prometheus.GaugeVec

	// HeartbeatTotal counts ValidateConnection frames sent by ActivityMonitor.
	HeartbeatTotal *prometheus.CounterVec
}

// NewConnectionMetrics creates and registers connection metrics with
// reg. If reg is nil, collectors are created but never registered,
// which is useful for tests that only want the counting behavior.
func NewConnectionMetrics(reg prometheus.Registerer) *ConnectionMetrics {
	m := &ConnectionMetrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goice",
			Subsystem: "connection",
			Name:      "dispatch_total",
			Help:      "Total number of requests handed to a Dispatcher.",
		}, []string{"connection_id"}),
		BytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goice",
			Subsystem: "connection",
			Name:      "bytes_sent_total",
			Help:      "Total bytes written to the transceiver.",
		}, []string{"connection_id"}),
		BytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goice",
			Subsystem: "connection",
			Name:      "bytes_received_total",
			Help:      "Total bytes read from the transceiver.",
		}, []string{"connection_id"}),
		RequestsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "goice",
			Subsystem: "connection",
			Name:      "requests_in_flight",
			Help:      "Dispatches that have been handed to user code but have not completed.",
		}, []string{"connection_id"}),
		HeartbeatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goice",
			Subsystem: "connection",
			Name:      "heartbeat_total",
			Help:      "Total ValidateConnection frames sent by an idle connection's ActivityMonitor.",
		}, []string{"connection_id"}),
	}

	if reg != nil {
		m.DispatchTotal = registerOrReuse(reg, m.DispatchTotal).(*prometheus.CounterVec)
		m.BytesSent = registerOrReuse(reg, m.BytesSent).(*prometheus.CounterVec)
		m.BytesReceived = registerOrReuse(reg, m.BytesReceived).(*prometheus.CounterVec)
		m.RequestsInFlight = registerOrReuse(reg, m.RequestsInFlight).(*prometheus.GaugeVec)
		m.HeartbeatTotal = registerOrReuse(reg, m.HeartbeatTotal).(*prometheus.CounterVec)
	}

	return m
}

func (m *ConnectionMetrics) dispatch(connID string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(connID).Inc()
	m.RequestsInFlight.WithLabelValues(connID).Inc()
}

func (m *ConnectionMetrics) dispatchComplete(connID string) {
	if m == nil {
		return
	}
	m.RequestsInFlight.WithLabelValues(connID).Dec()
}

func (m *ConnectionMetrics) bytesSent(connID string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesSent.WithLabelValues(connID).Add(float64(n))
}

func (m *ConnectionMetrics) bytesReceived(connID string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesReceived.WithLabelValues(connID).Add(float64(n))
}

func (m *ConnectionMetrics) heartbeat(connID string) {
	if m == nil {
		return
	}
	m.HeartbeatTotal.WithLabelValues(connID).Inc()
}

// Forget removes every label value associated with connID, called once
// a connection reaches Closed so its series stop being exported.
func (m *ConnectionMetrics) Forget(connID string) {
	if m == nil {
		return
	}
	m.DispatchTotal.DeleteLabelValues(connID)
	m.BytesSent.DeleteLabelValues(connID)
	m.BytesReceived.DeleteLabelValues(connID)
	m.RequestsInFlight.DeleteLabelValues(connID)
	m.HeartbeatTotal.DeleteLabelValues(connID)
}
