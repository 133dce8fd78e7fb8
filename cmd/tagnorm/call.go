package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

func newCallCmd(a *app) *cobra.Command {
	var (
		addr     string
		insecure bool
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <tool> [key=value]...",
		Short: "Call an MCP tool on a server over QUIC",
		Long: "Call an MCP tool on a running 'tagnorm serve' with quic enabled.\n" +
			"Values that parse as JSON are sent as JSON, anything else as a string:\n" +
			"  tagnorm call normalize_tag tag=React.js\n" +
			"  tagnorm call prepare_tags 'tags=[\"JS\",\"golang\"]'\n" +
			"With tool 'list', prints the server's tools.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}
			if addr == "" {
				addr = dialAddr(a.cfg.Addr)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			tlsCfg := mcpquic.ClientTLSConfig(insecure || a.cfg.CertFile == "")
			c, err := mcpquic.Dial(ctx, addr, tlsCfg, version)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if args[0] == "list" {
				res, err := c.ListTools(ctx)
				if err != nil {
					return err
				}
				for _, t := range res.Tools {
					fmt.Fprintf(out, "%s\t%s\n", t.Name, t.Description)
				}
				return nil
			}

			res, err := c.CallTool(ctx, args[0], toolArgs)
			if err != nil {
				return err
			}
			for _, content := range res.Content {
				if text, ok := mcp.AsTextContent(content); ok {
					fmt.Fprintln(out, text.Text)
				}
			}
			if res.IsError {
				return fmt.Errorf("tool %s failed", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server address (default: localhost on the configured port)")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip certificate verification")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "call timeout")
	return cmd
}

// parseToolArgs turns key=value pairs into MCP arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q: want key=value", p)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			args[key] = decoded
		} else {
			args[key] = value
		}
	}
	return args, nil
}

// dialAddr turns a listen address such as ":8420" into a dialable one.
func dialAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
