package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/api"
	"github.com/hazyhaar/tagnorm/pkg/chassis"
	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/importer"
	"github.com/hazyhaar/tagnorm/pkg/tagstore"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and MCP APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// serve runs until SIGINT or SIGTERM. SIGHUP reloads the dictionaries.
func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := a.openRegistry()
	if err != nil {
		return err
	}

	var store *tagstore.Store
	if a.cfg.TagsDB != "" {
		store, err = tagstore.Open(a.cfg.TagsDB)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	svc := api.NewService(reg, store, a.logger)
	mcpSrv := server.NewMCPServer("tagnorm", version, server.WithToolCapabilities(false))
	svc.RegisterMCPTools(mcpSrv)

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpSrv))
	mux.Handle("/", api.NewRouter(svc))

	var checker *importer.Checker
	if a.cfg.CheckInterval > 0 && a.cfg.SourcesDB != "" {
		sdb, err := a.openSources(ctx)
		if err != nil {
			return err
		}
		defer sdb.Close()
		checker = importer.NewChecker(sdb, a.logger, a.cfg.CheckInterval)
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.QUIC {
		ch, err := chassis.New(chassis.Config{
			Addr:      a.cfg.Addr,
			CertFile:  a.cfg.CertFile,
			KeyFile:   a.cfg.KeyFile,
			Handler:   mux,
			MCPServer: mcpSrv,
			Logger:    a.logger,
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return ch.Serve(gctx) })
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return ch.Shutdown(sctx)
		})
	} else {
		srv := &http.Server{Addr: a.cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			a.logger.Info("tagnorm listening", "addr", a.cfg.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if a.cfg.Watch {
		g.Go(func() error { return reg.Watch(gctx, dict.DefaultDebounce) })
	}

	if checker != nil {
		g.Go(func() error {
			checker.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				a.logger.Info("SIGHUP received, reloading dictionaries")
				if err := reg.Reload(); err != nil {
					a.logger.Error("reload failed", "error", err)
				}
			}
		}
	})

	err = g.Wait()
	a.logger.Info("tagnorm stopped")
	return err
}

// openSources opens the source database and registers every adapter.
func (a *app) openSources(ctx context.Context) (*importer.SourceDB, error) {
	if err := os.MkdirAll(filepath.Dir(a.cfg.SourcesDB), 0o755); err != nil {
		return nil, fmt.Errorf("create sources dir: %w", err)
	}
	sdb, err := importer.OpenSourceDB(a.cfg.SourcesDB)
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(ctx, importer.All()); err != nil {
		sdb.Close()
		return nil, err
	}
	return sdb, nil
}
