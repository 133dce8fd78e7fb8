package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const checkConcurrency = 4

// Checker periodically sends HEAD requests to every import source and
// records whether it is still reachable.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that verifies source URLs every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start runs an immediate check then repeats every interval until ctx is
// cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source URL, a few at a time, and persists results.
func (c *Checker) CheckAll(ctx context.Context) {
	sources, err := c.sources.ListSources(ctx)
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return
	}
	if len(sources) == 0 {
		return
	}

	var ok, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for _, src := range sources {
		g.Go(func() error {
			status, checkErr := c.checkOne(gctx, src.SourceURL)
			errMsg := ""
			if checkErr != nil {
				errMsg = checkErr.Error()
			}

			if err := c.sources.UpdateCheck(gctx, src.AdapterID, status, errMsg); err != nil {
				c.logger.Error("source check: update", "adapter", src.AdapterID, "error", err)
			}

			if status >= 200 && status < 400 {
				ok.Add(1)
				return nil
			}
			failed.Add(1)
			c.logger.Warn("source unreachable",
				"adapter", src.AdapterID,
				"url", src.SourceURL,
				"status", status,
				"error", errMsg,
			)
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info("source check complete", "total", ok.Load()+failed.Load(), "ok", ok.Load(), "failed", failed.Load())
}

// checkOne asks for the headers of url. APIs that refuse HEAD (the Stack
// Exchange endpoint answers 405) get a GET whose body is discarded. Network
// errors report status 0.
func (c *Checker) checkOne(ctx context.Context, url string) (int, error) {
	status, err := c.fetchStatus(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		return c.fetchStatus(ctx, http.MethodGet, url)
	}
	return status, err
}

func (c *Checker) fetchStatus(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "tagnorm-checker")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
