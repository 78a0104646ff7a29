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

// Command gooice-echo is a minimal worked example of the runtime: a
// "serve" side registering one echo servant, and a "call" side sending
// it a single two-way request and printing the reply.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sabouaram/goice/certificates"
	tlsaut "github.com/sabouaram/goice/certificates/auth"
	tlscpr "github.com/sabouaram/goice/certificates/cipher"
	tlsvrs "github.com/sabouaram/goice/certificates/tlsversion"
	"github.com/sabouaram/goice/connection"
	"github.com/sabouaram/goice/dispatch"
	"github.com/sabouaram/goice/invoke"
	"github.com/sabouaram/goice/marshal"
	"github.com/sabouaram/goice/metrics"
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpccfg"
	"github.com/sabouaram/goice/rpclog"
	"github.com/sabouaram/goice/transport"
)

// tlsFlags collects the --tls-* flags shared by serve and call.
type tlsFlags struct {
	cert       string
	key        string
	ca         string
	ciphers    string
	minVersion string
	mutual     bool
}

func (f *tlsFlags) register(cmd *cobra.Command, mutual bool) {
	cmd.Flags().StringVar(&f.cert, "tls-cert", "", "PEM certificate file; enables TLS when set with --tls-key")
	cmd.Flags().StringVar(&f.key, "tls-key", "", "PEM private key file")
	cmd.Flags().StringVar(&f.ca, "tls-ca", "", "PEM root CA file used to verify the peer's certificate")
	cmd.Flags().StringVar(&f.ciphers, "tls-ciphers", "", "comma-separated cipher suite names, e.g. TLS_AES_256_GCM_SHA384")
	cmd.Flags().StringVar(&f.minVersion, "tls-min-version", "TLS1.2", "minimum TLS version (TLS1.0, TLS1.1, TLS1.2, TLS1.3)")
	if mutual {
		cmd.Flags().BoolVar(&f.mutual, "tls-require-client-cert", false, "require and verify a client certificate (server side only)")
	}
}

// build turns the parsed flags into a certificates.TLSConfig. It returns
// a nil TLSConfig (not an error) when none of --tls-cert, --tls-key and
// --tls-ca were set, so the caller falls back to plaintext.
func (f *tlsFlags) build(server bool) (certificates.TLSConfig, error) {
	if f.cert == "" && f.key == "" && f.ca == "" {
		return nil, nil
	}

	cfg := certificates.New()

	if f.cert != "" || f.key != "" {
		if err := cfg.AddCertificatePairFile(f.key, f.cert); err != nil {
			return nil, fmt.Errorf("loading tls certificate pair: %w", err)
		}
	}

	if f.ca != "" {
		if server {
			if err := cfg.AddClientCAFile(f.ca); err != nil {
				return nil, fmt.Errorf("loading tls client ca: %w", err)
			}
		} else {
			if err := cfg.AddRootCAFile(f.ca); err != nil {
				return nil, fmt.Errorf("loading tls root ca: %w", err)
			}
		}
	}

	if f.ciphers != "" {
		var list []tlscpr.Cipher
		for _, name := range strings.Split(f.ciphers, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			list = append(list, tlscpr.Parse(name))
		}
		if len(list) > 0 {
			cfg.SetCipherList(list)
		}
	}

	minVersion := parseTLSVersion(f.minVersion)
	cfg.SetVersionMin(minVersion)
	cfg.SetVersionMax(tlsvrs.VersionTLS13)

	if server && f.mutual {
		cfg.SetClientAuth(tlsaut.RequireAndVerifyClientCert)
	}

	return cfg, nil
}

func parseTLSVersion(s string) tlsvrs.Version {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TLS1.0", "TLS10":
		return tlsvrs.VersionTLS10
	case "TLS1.1", "TLS11":
		return tlsvrs.VersionTLS11
	case "TLS1.3", "TLS13":
		return tlsvrs.VersionTLS13
	default:
		return tlsvrs.VersionTLS12
	}
}

func main() {
	root := &cobra.Command{
		Use:   "gooice-echo",
		Short: "Serve or call a one-operation echo object over the wire protocol",
	}
	root.AddCommand(newServeCmd(), newCallCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() rpclog.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return rpclog.New(l)
}

func newServeCmd() *cobra.Command {
	var addr string
	var tf tlsFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept connections and dispatch requests to the echo servant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tlsCfg, err := tf.build(true)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, tlsCfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9099", "address to listen on")
	tf.register(cmd, true)
	return cmd
}

func newCallCmd() *cobra.Command {
	var addr, message string
	var tf tlsFlags

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Send one echo request and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			tlsCfg, err := tf.build(false)
			if err != nil {
				return err
			}
			return call(cmd.Context(), addr, message, tlsCfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9099", "address to dial")
	cmd.Flags().StringVar(&message, "message", "hi", "message to echo")
	tf.register(cmd, false)
	return cmd
}

func serve(ctx context.Context, addr string, tlsCfg certificates.TLSConfig) error {
	logger := newLogger()
	cfg := rpccfg.Default()
	if verr := cfg.Validate(); verr != nil {
		return verr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	registry := dispatch.NewRegistry()
	registry.Add(echoIdentity, "", echoServant{})
	disp := dispatch.NewDispatcher(registry, logger).WithContext(ctx)

	if tlsCfg != nil {
		logger.Info(fmt.Sprintf("listening on %s (tls)", addr))
	} else {
		logger.Info(fmt.Sprintf("listening on %s", addr))
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go serveConn(ctx, conn, cfg, disp, logger, tlsCfg)
	}
}

func serveConn(ctx context.Context, nc net.Conn, cfg rpccfg.Connection, disp connection.RequestHandler, logger rpclog.Logger, tlsCfg certificates.TLSConfig) {
	defer nc.Close()

	pool := transport.NewGoroutinePool(8, time.Millisecond)
	go pool.Run(ctx)
	defer pool.Stop()

	rec := metrics.NewRecorder(metrics.NewConnectionMetrics(nil), nc.RemoteAddr().String())
	defer rec.Close()

	core := connection.New(cfg.ToCoreConfig(true, rec.OnHeartbeat()),
		rec.WrapTransceiver(transport.NewTCPTransceiver(nc, tlsCfg, true)),
		pool, transport.NewWheelTimer(), logger)
	core.SetDispatcher(rec.WrapDispatcher(disp))
	core.SetActivityMonitor(cfg.ACM.NewActivityMonitor())

	if verr := core.Validate(); verr != nil {
		logger.WithFields(rpclog.Fields{"error": verr.Error()}).Warn("connection validation failed")
		return
	}
	core.WaitUntilHolding()
	core.Activate()
	core.WaitUntilFinished()
}

func call(ctx context.Context, addr, message string, tlsCfg certificates.TLSConfig) error {
	logger := newLogger()
	cfg := rpccfg.Default()
	if verr := cfg.Validate(); verr != nil {
		return verr
	}

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer nc.Close()

	pool := transport.NewGoroutinePool(4, time.Millisecond)
	go pool.Run(ctx)
	defer pool.Stop()

	core := connection.New(cfg.ToCoreConfig(false, nil),
		transport.NewTCPTransceiver(nc, tlsCfg, false),
		pool, transport.NewWheelTimer(), logger)
	core.SetActivityMonitor(cfg.ACM.NewActivityMonitor())

	if verr := core.Validate(); verr != nil {
		return verr
	}
	core.WaitUntilHolding()
	core.Activate()

	inv := invoke.NewInvoker(core)

	body := marshal.NewOutputStream(len(message) + 4)
	body.WriteString(message)

	future, verr := inv.InvokeTwoway(ctx, invoke.OpMetadata{
		Identity:  echoIdentity,
		Operation: "echo",
		Mode:      protocol.ModeNormal,
	}, body.Bytes(), nil)
	if verr != nil {
		return verr
	}

	reply, err := future.Wait(ctx)
	if err != nil {
		return err
	}
	if reply.Status != protocol.ReplyOK {
		return fmt.Errorf("echo failed with status %d", reply.Status)
	}

	out, _, _, derr := protocol.DecodeEncaps(reply.Encaps)
	if derr != nil {
		return derr
	}
	echoed, derr := marshal.NewInputStream(out).ReadString()
	if derr != nil {
		return derr
	}

	fmt.Println(echoed)

	core.Close(connection.CloseGracefully)
	return nil
}
