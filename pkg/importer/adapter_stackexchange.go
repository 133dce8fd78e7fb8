// CLAUDE:SUMMARY Import adapter for Stack Exchange tag synonyms (/2.3/tags/synonyms), paged, grouped by target tag.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/tags"
)

func init() {
	Register(&stackExchangeAdapter{maxPages: 25})
}

type stackExchangeAdapter struct {
	maxPages int
}

func (a *stackExchangeAdapter) ID() string     { return "stackexchange-synonyms" }
func (a *stackExchangeAdapter) DictID() string { return "stackoverflow-synonyms" }
func (a *stackExchangeAdapter) Description() string {
	return "Stack Overflow tag synonyms (Stack Exchange API)"
}
func (a *stackExchangeAdapter) DefaultURL() string {
	return "https://api.stackexchange.com/2.3/tags/synonyms?site=stackoverflow&order=desc&sort=applied&pagesize=100"
}
func (a *stackExchangeAdapter) License() string { return "CC BY-SA 4.0" }

type synonymPage struct {
	Items []struct {
		FromTag      string `json:"from_tag"`
		ToTag        string `json:"to_tag"`
		AppliedCount int    `json:"applied_count"`
	} `json:"items"`
	HasMore        bool   `json:"has_more"`
	Backoff        int    `json:"backoff"`
	QuotaRemaining *int   `json:"quota_remaining"`
	ErrorMessage   string `json:"error_message"`
}

func (a *stackExchangeAdapter) Import(ctx context.Context, sourceURL, outputDir string) (*Result, error) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	set := newGroupSet()
	for page := 1; page <= a.maxPages; page++ {
		q := base.Query()
		q.Set("page", strconv.Itoa(page))
		base.RawQuery = q.Encode()

		body, err := fetch(ctx, base.String())
		if err != nil {
			return nil, err
		}
		var p synonymPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode page %d: %w", page, err)
		}
		if p.ErrorMessage != "" {
			return nil, fmt.Errorf("page %d: %s", page, p.ErrorMessage)
		}

		for _, it := range p.Items {
			if !cleanable(it.ToTag) {
				set.skip++
				continue
			}
			set.add(tags.Clean(it.ToTag), it.FromTag)
		}

		if !p.HasMore || (p.QuotaRemaining != nil && *p.QuotaRemaining == 0) {
			break
		}
		// The API asks clients to wait between calls when throttling.
		if p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(p.Backoff) * time.Second):
			}
		}
	}

	return writeDict(outputDir, &dict.Manifest{
		ID:        a.DictID(),
		Version:   version(),
		Source:    "Stack Exchange API",
		SourceURL: sourceURL,
		License:   a.License(),
	}, set)
}
