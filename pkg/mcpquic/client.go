package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quic-go/quic-go"
)

// Client is an initialized MCP client session over QUIC.
type Client struct {
	conn   *quic.Conn
	stream *quic.Stream
	mcp    *client.Client
}

// Dial connects to addr, opens the session stream and performs the MCP
// initialize handshake. A nil tlsCfg accepts self-signed certificates.
func Dial(ctx context.Context, addr string, tlsCfg *tls.Config, version string) (*Client, error) {
	if tlsCfg == nil {
		tlsCfg = ClientTLSConfig(true)
	}
	conn, err := quic.DialAddr(ctx, addr, tlsCfg, QUICConfig())
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", addr, err)
	}
	if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
		conn.CloseWithError(ConnErrorUnsupportedALPN, "bad ALPN")
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedALPN, alpn)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(ConnErrorProtocolViolation, "open stream")
		return nil, fmt.Errorf("open stream: %w", err)
	}
	c := &Client{conn: conn, stream: stream}
	if err := WriteMagic(stream); err != nil {
		c.closeTransport()
		return nil, err
	}

	c.mcp = client.NewClient(transport.NewIO(stream, streamWriter{stream}, io.NopCloser(eofReader{})))
	if err := c.mcp.Start(ctx); err != nil {
		c.closeTransport()
		return nil, fmt.Errorf("mcp start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "tagnorm-cli", Version: version}

	initCtx, cancel := context.WithTimeout(ctx, HandshakeTimeout)
	defer cancel()
	if _, err := c.mcp.Initialize(initCtx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp initialize: %w", err)
	}
	return c, nil
}

func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.mcp == nil {
		return nil, ErrNotConnected
	}
	return c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
}

func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if c.mcp == nil {
		return nil, ErrNotConnected
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.mcp.CallTool(ctx, req)
}

func (c *Client) Close() error {
	if c.mcp != nil {
		c.mcp.Close()
	}
	return c.closeTransport()
}

func (c *Client) closeTransport() error {
	if c.stream != nil {
		c.stream.Close()
	}
	return c.conn.CloseWithError(ConnErrorNoError, "client closing")
}

type streamWriter struct{ s *quic.Stream }

func (w streamWriter) Write(p []byte) (int, error) { return w.s.Write(p) }
func (w streamWriter) Close() error                { return w.s.Close() }

// eofReader stands in for the stderr pipe the IO transport expects.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
