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

package transport

import (
	"net"
	"sync"
	"time"

	"github.com/sabouaram/goice/certificates"
)

// TCPTransceiver is a Transceiver over a net.Conn, optionally upgraded
// to TLS via a certificates.TLSConfig. Reads/writes are driven with
// near-non-blocking semantics: a short per-call read or write deadline
// (now plus pollDeadline) turns a would-block socket into a timeout error the
// caller maps to OpNeedRead/OpNeedWrite rather than actually blocking
// the calling goroutine.
type TCPTransceiver struct {
	conn     net.Conn
	tls      certificates.TLSConfig
	server   bool
	datagram bool

	mu          sync.Mutex
	closingOnce sync.Once
	handshaken  bool
}

// NewTCPTransceiver wraps an already-dialed/accepted net.Conn. When tls
// is non-nil the connection is upgraded on the first Init call; server
// selects which side performs the TLS handshake role.
func NewTCPTransceiver(conn net.Conn, tls certificates.TLSConfig, server bool) *TCPTransceiver {
	return &TCPTransceiver{conn: conn, tls: tls, server: server}
}

// pollDeadline bounds a single non-blocking probe of the socket; long
// enough to absorb local scheduling jitter, short enough that the I/O
// loop never meaningfully blocks on one Read/Write call.
const pollDeadline = 5 * time.Millisecond

func (t *TCPTransceiver) Init() (Op, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handshaken || t.tls == nil {
		t.handshaken = true
		return OpNone, nil
	}

	host := ""
	if a, ok := t.conn.RemoteAddr().(*net.TCPAddr); ok {
		host = a.IP.String()
	}

	var tconn *tlsConn
	if t.server {
		tconn = newServerTLSConn(t.conn, t.tls, host)
	} else {
		tconn = newClientTLSConn(t.conn, t.tls, host)
	}

	if err := tconn.handshake(); err != nil {
		return OpNone, err
	}

	t.conn = tconn.Conn
	t.handshaken = true
	return OpNone, nil
}

func (t *TCPTransceiver) Read(buf []byte) (int, Op, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(pollDeadline))
	n, err := t.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return n, OpNeedRead, nil
		}
		return n, OpNone, err
	}
	return n, OpNone, nil
}

func (t *TCPTransceiver) Write(buf []byte) (int, Op, error) {
	_ = t.conn.SetWriteDeadline(time.Now().Add(pollDeadline))
	n, err := t.conn.Write(buf)
	if err != nil {
		if isTimeout(err) {
			return n, OpNeedWrite, nil
		}
		return n, OpNone, err
	}
	return n, OpNone, nil
}

func (t *TCPTransceiver) CheckSendSize(n int) error {
	return nil
}

func (t *TCPTransceiver) Closing(initiator bool, cause error) (Op, error) {
	if !initiator {
		return OpNone, nil
	}
	if tc, ok := t.conn.(interface{ CloseWrite() error }); ok {
		return OpNone, tc.CloseWrite()
	}
	return OpNone, nil
}

func (t *TCPTransceiver) Close() error {
	var err error
	t.closingOnce.Do(func() { err = t.conn.Close() })
	return err
}

func (t *TCPTransceiver) GetInfo() Info {
	info := Info{Datagram: t.datagram}
	if t.conn.LocalAddr() != nil {
		info.LocalAddr = t.conn.LocalAddr().String()
	}
	if t.conn.RemoteAddr() != nil {
		info.RemoteAddr = t.conn.RemoteAddr().String()
	}
	return info
}

func (t *TCPTransceiver) IsDatagram() bool { return t.datagram }

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
