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
	libval "github.com/go-playground/validator/v10"

	tlsaut "github.com/sabouaram/goice/certificates/auth"
	tlscas "github.com/sabouaram/goice/certificates/ca"
	tlscpr "github.com/sabouaram/goice/certificates/cipher"
	tlscrt "github.com/sabouaram/goice/certificates/certs"
	tlscrv "github.com/sabouaram/goice/certificates/curves"
	tlsvrs "github.com/sabouaram/goice/certificates/tlsversion"
	"github.com/sabouaram/goice/rpcerr"
)

// Config is the serializable form of a TLSConfig, loaded via viper/mapstructure
// into rpccfg.Connection.TLS.
type Config struct {
	CurveList            []tlscrv.Curves   `mapstructure:"curveList" json:"curveList" yaml:"curveList" toml:"curveList"`
	CipherList           []tlscpr.Cipher   `mapstructure:"cipherList" json:"cipherList" yaml:"cipherList" toml:"cipherList"`
	RootCA               []tlscas.Cert     `mapstructure:"rootCA" json:"rootCA" yaml:"rootCA" toml:"rootCA"`
	ClientCA             []tlscas.Cert     `mapstructure:"clientCA" json:"clientCA" yaml:"clientCA" toml:"clientCA"`
	Certs                []tlscrt.Cert     `mapstructure:"certs" json:"certs" yaml:"certs" toml:"certs"`
	VersionMin           tlsvrs.Version    `mapstructure:"versionMin" json:"versionMin" yaml:"versionMin" toml:"versionMin"`
	VersionMax           tlsvrs.Version    `mapstructure:"versionMax" json:"versionMax" yaml:"versionMax" toml:"versionMax"`
	AuthClient           tlsaut.ClientAuth `mapstructure:"authClient" json:"authClient" yaml:"authClient" toml:"authClient"`
	InheritDefault       bool              `mapstructure:"inheritDefault" json:"inheritDefault" yaml:"inheritDefault" toml:"inheritDefault"`
	DynamicSizingDisable bool              `mapstructure:"dynamicSizingDisable" json:"dynamicSizingDisable" yaml:"dynamicSizingDisable" toml:"dynamicSizingDisable"`
	SessionTicketDisable bool              `mapstructure:"sessionTicketDisable" json:"sessionTicketDisable" yaml:"sessionTicketDisable" toml:"sessionTicketDisable"`
}

// Validate runs struct-tag validation over Config, wrapping every field
// violation into a single rpcerr.Error chain.
func (c *Config) Validate() rpcerr.Error {
	var err rpcerr.Error

	if er := libval.New().Struct(c); er != nil {
		if e, ok := er.(*libval.InvalidValidationError); ok {
			err = rpcerr.TLSConfiguration.Error(e)
		}

		for _, e := range er.(libval.ValidationErrors) {
			fieldErr := rpcerr.TLSConfiguration.Errorf(
				"config field '%s' is not validated by constraint '%s'", e.StructNamespace(), e.ActualTag())
			if err == nil {
				err = fieldErr
			} else {
				err.Add(fieldErr)
			}
		}
	}

	return err
}

// New builds a TLSConfig from this Config, starting from Default when
// InheritDefault is set.
func (c *Config) New() TLSConfig {
	if c.InheritDefault {
		return c.NewFrom(Default)
	}
	return c.NewFrom(nil)
}

// NewFrom merges this Config over cfg (or a zero Config when cfg is nil)
// and returns the resulting runtime TLSConfig.
func (c *Config) NewFrom(cfg TLSConfig) TLSConfig {
	var t *Config

	if cfg != nil {
		t = cfg.Config()
	}

	if t == nil {
		t = &Config{}
	}

	if c.VersionMin != tlsvrs.VersionUnknown {
		t.VersionMin = c.VersionMin
	}

	if c.VersionMax != tlsvrs.VersionUnknown {
		t.VersionMax = c.VersionMax
	}

	if c.DynamicSizingDisable {
		t.DynamicSizingDisable = true
	}

	if c.SessionTicketDisable {
		t.SessionTicketDisable = true
	}

	if c.AuthClient != tlsaut.NoClientCert {
		t.AuthClient = c.AuthClient
	}

	if len(c.CipherList) > 0 {
		for _, a := range c.CipherList {
			if tlscpr.Check(a.Uint16()) {
				t.CipherList = append(t.CipherList, a)
			}
		}
	}

	if len(c.CurveList) > 0 {
		for _, a := range c.CurveList {
			if tlscrv.Check(a.Uint16()) {
				t.CurveList = append(t.CurveList, a)
			}
		}
	}

	if len(c.RootCA) > 0 {
		t.RootCA = append(t.RootCA, c.RootCA...)
	}

	if len(c.ClientCA) > 0 {
		t.ClientCA = append(t.ClientCA, c.ClientCA...)
	}

	if len(c.Certs) > 0 {
		t.Certs = append(t.Certs, c.Certs...)
	}

	res := &config{
		rand:                  nil,
		cert:                  append(make([]tlscrt.Cert, 0), t.Certs...),
		cipherList:            append(make([]tlscpr.Cipher, 0), t.CipherList...),
		curveList:             append(make([]tlscrv.Curves, 0), t.CurveList...),
		caRoot:                append(make([]tlscas.Cert, 0), t.RootCA...),
		clientAuth:            t.AuthClient,
		clientCA:              append(make([]tlscas.Cert, 0), t.ClientCA...),
		tlsMinVersion:         t.VersionMin,
		tlsMaxVersion:         t.VersionMax,
		dynSizingDisabled:     t.DynamicSizingDisable,
		ticketSessionDisabled: t.SessionTicketDisable,
	}

	return res
}
