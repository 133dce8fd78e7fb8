package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/kit"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	"github.com/hazyhaar/tagnorm/pkg/tagstore"
)

const maxBatch = 100

var (
	// ErrBadRequest marks request errors the caller can fix.
	ErrBadRequest = errors.New("bad request")
	// ErrNoStore is returned by catalog endpoints when no tag store is configured.
	ErrNoStore = errors.New("tag store disabled")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Service bundles the endpoints shared by HTTP and MCP. Every call reads the
// registry's current Normalizer, so a reload never affects a request in
// flight.
type Service struct {
	reg     *dict.Registry
	store   *tagstore.Store
	logger  *slog.Logger
	metrics *Metrics

	normalize      kit.Endpoint
	normalizeBatch kit.Endpoint
	similar        kit.Endpoint
	aliases        kit.Endpoint
	variations     kit.Endpoint
	canonical      kit.Endpoint
	prepare        kit.Endpoint
	listTags       kit.Endpoint
	recordTags     kit.Endpoint
	checkTag       kit.Endpoint
	deleteTag      kit.Endpoint
	listDicts      kit.Endpoint
}

// NewService builds the endpoints. store may be nil, which disables the
// catalog endpoints.
func NewService(reg *dict.Registry, store *tagstore.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{reg: reg, store: store, logger: logger}
	s.metrics = newMetrics(reg)

	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Named(name), s.metrics.instrument, logErrors(logger))(ep)
	}
	s.normalize = wrap("normalize", s.normalizeEndpoint)
	s.normalizeBatch = wrap("normalize_batch", s.normalizeBatchEndpoint)
	s.similar = wrap("similar", s.similarEndpoint)
	s.aliases = wrap("aliases", s.aliasesEndpoint)
	s.variations = wrap("variations", s.variationsEndpoint)
	s.canonical = wrap("canonical", s.canonicalEndpoint)
	s.prepare = wrap("prepare", s.prepareEndpoint)
	s.listTags = wrap("list_tags", s.listTagsEndpoint)
	s.recordTags = wrap("record_tags", s.recordTagsEndpoint)
	s.checkTag = wrap("check_tag", s.checkTagEndpoint)
	s.deleteTag = wrap("delete_tag", s.deleteTagEndpoint)
	s.listDicts = wrap("list_dicts", s.listDictsEndpoint)
	return s
}

// Shared request/response types used by both HTTP and MCP transports.

type tagReq struct {
	Tag string `json:"tag"`
}

type tagsReq struct {
	Tags []string `json:"tags"`
}

type similarReq struct {
	Tag      string   `json:"tag"`
	Existing []string `json:"existing"`
}

type canonicalNameReq struct {
	Canonical string
}

type listTagsReq struct {
	Limit int
}

type normalizeResult struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
}

type batchResponse struct {
	Results []normalizeResult `json:"results"`
}

type similarResponse struct {
	Tag        string `json:"tag"`
	Normalized string `json:"normalized"`
	Found      bool   `json:"found"`
	Similar    string `json:"similar,omitempty"`
}

type aliasesResponse struct {
	Canonical string   `json:"canonical"`
	Known     bool     `json:"known"`
	Aliases   []string `json:"aliases"`
}

type canonicalResponse struct {
	Tag         string `json:"tag"`
	Normalized  string `json:"normalized"`
	IsCanonical bool   `json:"is_canonical"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

type catalogResponse struct {
	Total int            `json:"total"`
	Tags  []tagstore.Tag `json:"tags"`
}

type dictsResponse struct {
	Dictionaries []dict.DictInfo `json:"dictionaries"`
}

func (s *Service) normalizeEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*tagReq)
	return normalizeResult{Input: req.Tag, Normalized: s.reg.Normalizer().Normalize(req.Tag)}, nil
}

func (s *Service) normalizeBatchEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*tagsReq)
	if len(req.Tags) == 0 {
		return nil, badRequest("tags array is empty")
	}
	if len(req.Tags) > maxBatch {
		return nil, badRequest("too many tags (max %d, got %d)", maxBatch, len(req.Tags))
	}
	n := s.reg.Normalizer()
	results := make([]normalizeResult, len(req.Tags))
	for i, t := range req.Tags {
		results[i] = normalizeResult{Input: t, Normalized: n.Normalize(t)}
	}
	return batchResponse{Results: results}, nil
}

func (s *Service) similarEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*similarReq)
	if len(req.Existing) > maxBatch*10 {
		return nil, badRequest("too many existing tags (max %d)", maxBatch*10)
	}
	n := s.reg.Normalizer()
	similar, ok := n.FindSimilarTag(req.Tag, req.Existing)
	return similarResponse{Tag: req.Tag, Normalized: n.Normalize(req.Tag), Found: ok, Similar: similar}, nil
}

func (s *Service) aliasesEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*canonicalNameReq)
	aliases := s.reg.Normalizer().GetAliases(req.Canonical)
	return aliasesResponse{Canonical: req.Canonical, Known: aliases != nil, Aliases: nonNil(aliases)}, nil
}

func (s *Service) variationsEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*canonicalNameReq)
	variations := s.reg.Normalizer().GetVariations(req.Canonical)
	return aliasesResponse{Canonical: req.Canonical, Known: len(variations) > 0, Aliases: nonNil(variations)}, nil
}

func (s *Service) canonicalEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*tagReq)
	n := s.reg.Normalizer()
	return canonicalResponse{Tag: req.Tag, Normalized: n.Normalize(req.Tag), IsCanonical: n.IsCanonical(req.Tag)}, nil
}

func (s *Service) prepareEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*tagsReq)
	out, err := s.reg.Normalizer().Prepare(req.Tags)
	if err != nil {
		return nil, err
	}
	return tagsResponse{Tags: out}, nil
}

func (s *Service) listTagsEndpoint(ctx context.Context, request any) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	req := request.(*listTagsReq)
	list, err := s.store.List(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return catalogResponse{Total: total, Tags: list}, nil
}

// recordTagsEndpoint prepares the tags, then records each canonical with
// the first raw spelling that produced it.
func (s *Service) recordTagsEndpoint(ctx context.Context, request any) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	req := request.(*tagsReq)
	n := s.reg.Normalizer()
	out, err := n.Prepare(req.Tags)
	if err != nil {
		return nil, err
	}

	display := make(map[string]string, len(req.Tags))
	for _, raw := range req.Tags {
		if c := n.Normalize(raw); c != "" {
			if _, ok := display[c]; !ok {
				display[c] = raw
			}
		}
	}
	entries := make([]tagstore.Entry, len(out))
	for i, c := range out {
		entries[i] = tagstore.Entry{Name: c, Display: display[c]}
	}
	if err := s.store.Record(ctx, entries...); err != nil {
		return nil, err
	}
	s.metrics.recorded.Add(float64(len(entries)))
	return tagsResponse{Tags: out}, nil
}

func (s *Service) checkTagEndpoint(ctx context.Context, request any) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	req := request.(*tagReq)
	return s.store.Check(ctx, s.reg.Normalizer(), req.Tag)
}

func (s *Service) deleteTagEndpoint(ctx context.Context, request any) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	req := request.(*tagReq)
	if err := s.store.Delete(ctx, req.Tag); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": req.Tag}, nil
}

func (s *Service) listDictsEndpoint(_ context.Context, _ any) (any, error) {
	return dictsResponse{Dictionaries: s.reg.ListDicts()}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// logErrors logs endpoint failures that are not caller mistakes.
func logErrors(logger *slog.Logger) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			resp, err := next(ctx, request)
			if err != nil && isServerError(err) {
				logger.Error("endpoint failed",
					"endpoint", kit.GetEndpoint(ctx),
					"transport", kit.GetTransport(ctx),
					"request_id", kit.GetRequestID(ctx),
					"error", err,
				)
			}
			return resp, err
		}
	}
}

func isServerError(err error) bool {
	var verr *tags.ValidationError
	return !errors.Is(err, ErrBadRequest) && !errors.As(err, &verr) && !errors.Is(err, ErrNoStore) && !errors.Is(err, tagstore.ErrNotFound)
}
