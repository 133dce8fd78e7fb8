package mcpquic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hazyhaar/tagnorm/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
)

// Handler serves MCP sessions on QUIC connections accepted elsewhere (the
// chassis demuxes by ALPN on a shared UDP socket).
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// ServeConn runs one MCP session on the first stream the peer opens. It
// returns when the stream ends or ctx is done.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp: accept stream", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "no stream")
		return
	}
	if err := ReadMagic(stream); err != nil {
		h.logger.Warn("mcp: bad preamble", "remote", remote, "error", err)
		stream.CancelRead(StreamErrorProtocolConfusion)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &session{id: "quic_" + uuid.NewString(), w: stream, notifications: make(chan mcp.JSONRPCNotification, 64)}
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp: register session", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)
	h.logger.Info("mcp session started", "session", sess.id, "remote", remote)

	ctx = kit.WithTransport(ctx, "mcp_quic")
	ctx = h.mcpServer.WithContext(ctx, sess)
	go sess.forwardNotifications(ctx)

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if resp == nil {
			continue
		}
		if err := sess.send(resp); err != nil {
			h.logger.Warn("mcp: write", "session", sess.id, "error", err)
			break
		}
	}
	switch err := scanner.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		h.logger.Warn("mcp: message too large", "session", sess.id, "limit", MaxMessageSize)
		stream.CancelRead(StreamErrorMessageTooLarge)
	case err != nil && ctx.Err() == nil:
		h.logger.Warn("mcp: read", "session", sess.id, "error", err)
	}
	stream.Close()
	h.logger.Info("mcp session ended", "session", sess.id)
}

// session implements server.ClientSession. Responses and notifications
// share the stream, so writes are serialized.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(data, '\n'))
	return err
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			if err := s.send(n); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
