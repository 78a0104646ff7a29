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
	"crypto/tls"
	"net"

	"github.com/sabouaram/goice/certificates"
)

// tlsConn wraps the handshake step so TCPTransceiver.Init can treat a
// plain net.Conn and a *tls.Conn identically afterward.
type tlsConn struct {
	net.Conn
	server bool
}

func newClientTLSConn(conn net.Conn, cfg certificates.TLSConfig, serverName string) *tlsConn {
	return &tlsConn{Conn: tls.Client(conn, cfg.TLS(serverName))}
}

func newServerTLSConn(conn net.Conn, cfg certificates.TLSConfig, serverName string) *tlsConn {
	return &tlsConn{Conn: tls.Server(conn, cfg.TLS(serverName)), server: true}
}

func (t *tlsConn) handshake() error {
	if c, ok := t.Conn.(*tls.Conn); ok {
		return c.Handshake()
	}
	return nil
}
