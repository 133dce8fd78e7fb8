// Package chassis serves the API over TLS on one port with two listeners:
//
//   - TCP: HTTP/1.1 and HTTP/2
//   - UDP: QUIC, demuxed by ALPN. "h3" goes to HTTP/3 with the same
//     handler, "tagnorm-mcp-v1" to MCP JSON-RPC over a QUIC stream.
//
// HTTP responses advertise HTTP/3 through Alt-Svc. Without cert and key
// files a self-signed certificate is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/hazyhaar/tagnorm/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Config configures the chassis.
type Config struct {
	Addr      string      // shared TCP and UDP address, e.g. ":8420"
	TLS       *tls.Config // overrides CertFile/KeyFile
	CertFile  string
	KeyFile   string
	Handler   http.Handler
	MCPServer *server.MCPServer // nil disables MCP over QUIC
	Logger    *slog.Logger
}

// Server is the TLS+QUIC chassis.
type Server struct {
	addr    string
	logger  *slog.Logger
	tlsCfg  *tls.Config
	handler http.Handler
	mcp     *mcpquic.Handler

	mu     sync.Mutex
	tcp    *http.Server
	h3     *http3.Server
	quicLn *quic.Listener
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}

	tlsCfg := cfg.TLS
	if tlsCfg == nil {
		var err error
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			tlsCfg, err = FileTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
		} else {
			tlsCfg, err = SelfSignedTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Warn("TLS: using a self-signed certificate")
		}
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: securityHeaders(altSvc(cfg.Addr, cfg.Handler)),
	}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func altSvc(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "443"
	}
	value := fmt.Sprintf(`h3=":%s"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}

// Serve runs both listeners until ctx is done or one of them fails.
// Callers stop the server with Shutdown.
func (s *Server) Serve(ctx context.Context) error {
	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	quicTLS := s.tlsCfg.Clone()
	quicTLS.NextProtos = []string{http3.NextProtoH3}
	if s.mcp != nil {
		quicTLS.NextProtos = append(quicTLS.NextProtos, mcpquic.ALPNProtocolMCP)
	}

	tcpLn, err := tls.Listen("tcp", s.addr, tcpTLS)
	if err != nil {
		return fmt.Errorf("TCP listen: %w", err)
	}
	quicLn, err := quic.ListenAddr(s.addr, quicTLS, mcpquic.QUICConfig())
	if err != nil {
		tcpLn.Close()
		return fmt.Errorf("QUIC listen: %w", err)
	}

	s.mu.Lock()
	s.tcp = &http.Server{Handler: s.handler, ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug)}
	s.h3 = &http3.Server{Handler: s.handler}
	s.quicLn = quicLn
	s.mu.Unlock()

	s.logger.Info("chassis listening", "addr", s.addr, "mcp_quic", s.mcp != nil)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcp.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	go func() {
		if err := s.acceptQUIC(ctx, quicLn); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("QUIC accept: %w", err)
		}

		switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
		case http3.NextProtoH3:
			go func() {
				if err := s.h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 connection closed", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPNProtocolMCP:
			if s.mcp == nil {
				conn.CloseWithError(mcpquic.ConnErrorMCPDisabled, "MCP not enabled")
				continue
			}
			go s.mcp.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unsupported ALPN", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN")
		}
	}
}

// Shutdown stops accepting connections and drains HTTP requests until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tcp != nil {
		errs = append(errs, s.tcp.Shutdown(ctx))
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}
