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
	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/transport"
)

// Recorder binds a ConnectionMetrics to one connection id, so call
// sites don't have to thread the label through every call. It never
// replaces a component's own logic, it only wraps it: WrapTransceiver
// and WrapDispatcher return decorators satisfying the same collaborator
// interfaces ConnectionCore already consumes.
type Recorder struct {
	m      *ConnectionMetrics
	connID string
}

// NewRecorder builds a Recorder for connID. m may be nil, in which case
// every method and every decorator this Recorder produces is a no-op
// pass-through.
func NewRecorder(m *ConnectionMetrics, connID string) *Recorder {
	return &Recorder{m: m, connID: connID}
}

// Close removes this connection's label values from every collector,
// meant to be called once the connection reaches Closed.
func (r *Recorder) Close() {
	r.m.Forget(r.connID)
}

// OnHeartbeat returns a func() suitable for connection.Config.OnHeartbeat,
// counting every heartbeat this connection's ActivityMonitor sends.
func (r *Recorder) OnHeartbeat() func() {
	return func() { r.m.heartbeat(r.connID) }
}

// WrapDispatcher returns a connection.RequestHandler that records a
// dispatch and increments the in-flight gauge before delegating to next,
// decrementing it again once next's Dispatch call returns (Dispatch
// itself runs conn.DispatchComplete before returning, so by the time
// control reaches back here the request truly is finished).
func (r *Recorder) WrapDispatcher(next connection.RequestHandler) connection.RequestHandler {
	return &recordingHandler{r: r, next: next}
}

type recordingHandler struct {
	r    *Recorder
	next connection.RequestHandler
}

func (h *recordingHandler) Dispatch(conn *connection.ConnectionCore, requestID uint32, encaps []byte) {
	h.r.m.dispatch(h.r.connID)
	defer h.r.m.dispatchComplete(h.r.connID)
	h.next.Dispatch(conn, requestID, encaps)
}

// WrapTransceiver returns a transport.Transceiver that counts bytes
// moved through Read/Write before delegating to next.
func (r *Recorder) WrapTransceiver(next transport.Transceiver) transport.Transceiver {
	return &recordingTransceiver{r: r, Transceiver: next}
}

type recordingTransceiver struct {
	transport.Transceiver
	r *Recorder
}

func (t *recordingTransceiver) Read(buf []byte) (int, transport.Op, error) {
	n, op, err := t.Transceiver.Read(buf)
	t.r.m.bytesReceived(t.r.connID, n)
	return n, op, err
}

func (t *recordingTransceiver) Write(buf []byte) (int, transport.Op, error) {
	n, op, err := t.Transceiver.Write(buf)
	t.r.m.bytesSent(t.r.connID, n)
	return n, op, err
}
