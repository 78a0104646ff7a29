/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package certificates

import (
	"crypto/tls"
	"io"

	tlsaut "github.com/sabouaram/goice/certificates/auth"
	tlscas "github.com/sabouaram/goice/certificates/ca"
	tlscpr "github.com/sabouaram/goice/certificates/cipher"
	tlscrt "github.com/sabouaram/goice/certificates/certs"
	tlscrv "github.com/sabouaram/goice/certificates/curves"
	tlsvrs "github.com/sabouaram/goice/certificates/tlsversion"
)

type config struct {
	rand                  io.Reader
	cert                  []tlscrt.Cert
	cipherList            []tlscpr.Cipher
	curveList             []tlscrv.Curves
	caRoot                []tlscas.Cert
	clientAuth            tlsaut.ClientAuth
	clientCA              []tlscas.Cert
	tlsMinVersion         tlsvrs.Version
	tlsMaxVersion         tlsvrs.Version
	dynSizingDisabled     bool
	ticketSessionDisabled bool
}

func (o *config) RegisterRand(rand io.Reader) {
	o.rand = rand
}

func (o *config) SetVersionMin(v tlsvrs.Version) {
	o.tlsMinVersion = v
}

func (o *config) GetVersionMin() tlsvrs.Version {
	return o.tlsMinVersion
}

func (o *config) SetVersionMax(v tlsvrs.Version) {
	o.tlsMaxVersion = v
}

func (o *config) GetVersionMax() tlsvrs.Version {
	return o.tlsMaxVersion
}

func (o *config) SetCipherList(c []tlscpr.Cipher) {
	o.cipherList = make([]tlscpr.Cipher, 0)
	o.AddCiphers(c...)
}

func (o *config) AddCiphers(c ...tlscpr.Cipher) {
	o.cipherList = append(o.cipherList, c...)
}

func (o *config) GetCiphers() []tlscpr.Cipher {
	var res = make([]tlscpr.Cipher, 0)

	for _, i := range o.cipherList {
		if tlscpr.Check(i.Uint16()) {
			res = append(res, i)
		}
	}

	return res
}

func (o *config) SetDynamicSizingDisabled(flag bool) {
	o.dynSizingDisabled = flag
}

func (o *config) SetSessionTicketDisabled(flag bool) {
	o.ticketSessionDisabled = flag
}

func (o *config) TlsConfig(serverName string) *tls.Config {
	return o.TLS(serverName)
}

func (o *config) TLS(serverName string) *tls.Config {
	/* #nosec */
	cnf := &tls.Config{
		InsecureSkipVerify: false,
		Rand:               o.rand,
	}

	if serverName != "" {
		cnf.ServerName = serverName
	}

	if o.ticketSessionDisabled {
		cnf.SessionTicketsDisabled = true
	}

	if o.dynSizingDisabled {
		cnf.DynamicRecordSizingDisabled = true
	}

	if o.tlsMinVersion != tlsvrs.VersionUnknown {
		cnf.MinVersion = o.tlsMinVersion.Uint16()
	}

	if o.tlsMaxVersion != tlsvrs.VersionUnknown {
		cnf.MaxVersion = o.tlsMaxVersion.Uint16()
	}

	if len(o.cipherList) > 0 {
		cnf.PreferServerCipherSuites = true
		for _, c := range o.cipherList {
			cnf.CipherSuites = append(cnf.CipherSuites, c.Uint16())
		}
	}

	if len(o.curveList) > 0 {
		for _, c := range o.curveList {
			cnf.CurvePreferences = append(cnf.CurvePreferences, c.TLS())
		}
	}

	if len(o.caRoot) > 0 {
		cnf.RootCAs = o.GetRootCAPool()
	}

	if len(o.cert) > 0 {
		cnf.Certificates = o.GetCertificatePair()
	}

	if o.clientAuth != tlsaut.NoClientCert {
		cnf.ClientAuth = tls.ClientAuthType(o.clientAuth)
		if len(o.clientCA) > 0 {
			cnf.ClientCAs = o.GetClientCAPool()
		}
	}

	return cnf
}

func (o *config) Clone() TLSConfig {
	return &config{
		rand:                  o.rand,
		cert:                  append(make([]tlscrt.Cert, 0), o.cert...),
		cipherList:            append(make([]tlscpr.Cipher, 0), o.cipherList...),
		curveList:             append(make([]tlscrv.Curves, 0), o.curveList...),
		caRoot:                append(make([]tlscas.Cert, 0), o.caRoot...),
		clientAuth:            o.clientAuth,
		clientCA:              append(make([]tlscas.Cert, 0), o.clientCA...),
		tlsMinVersion:         o.tlsMinVersion,
		tlsMaxVersion:         o.tlsMaxVersion,
		dynSizingDisabled:     o.dynSizingDisabled,
		ticketSessionDisabled: o.ticketSessionDisabled,
	}
}

func asStruct(cfg TLSConfig) *config {
	if c, ok := cfg.(*config); ok {
		return c
	}

	return nil
}

func (o *config) Config() *Config {
	c := &Config{
		VersionMin:           o.tlsMinVersion,
		VersionMax:           o.tlsMaxVersion,
		AuthClient:           o.clientAuth,
		DynamicSizingDisable: o.dynSizingDisabled,
		SessionTicketDisable: o.ticketSessionDisabled,
		CipherList:           append(make([]tlscpr.Cipher, 0), o.cipherList...),
		CurveList:            append(make([]tlscrv.Curves, 0), o.curveList...),
		RootCA:               append(make([]tlscas.Cert, 0), o.caRoot...),
		ClientCA:             append(make([]tlscas.Cert, 0), o.clientCA...),
		Certs:                append(make([]tlscrt.Cert, 0), o.cert...),
	}

	return c
}
