// Package mcpquic carries MCP JSON-RPC over a single bidirectional QUIC
// stream. The client opens the stream, writes the TAG1 magic bytes, then
// both sides exchange newline-delimited JSON messages.
package mcpquic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	ALPNProtocolMCP  = "tagnorm-mcp-v1"
	MagicBytesMCP    = "TAG1"
	MaxMessageSize   = 1 << 20
	HandshakeTimeout = 10 * time.Second
	IdleTimeout      = 5 * time.Minute
	KeepAlivePeriod  = 30 * time.Second
)

// QUICConfig is shared by the chassis listener and the client.
func QUICConfig() *quic.Config {
	return &quic.Config{
		HandshakeIdleTimeout:       HandshakeTimeout,
		MaxStreamReceiveWindow:     4 * MaxMessageSize,
		MaxConnectionReceiveWindow: 16 * MaxMessageSize,
		MaxIdleTimeout:             IdleTimeout,
		KeepAlivePeriod:            KeepAlivePeriod,
	}
}

// ClientTLSConfig offers only the MCP ALPN. insecure skips certificate
// verification, for self-signed development servers.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPNProtocolMCP},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
