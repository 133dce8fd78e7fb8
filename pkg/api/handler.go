// CLAUDE:SUMMARY HTTP routes for tag normalization, the tag catalog and dictionary listing; thin decode/encode over the Service endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hazyhaar/tagnorm/pkg/kit"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	"github.com/hazyhaar/tagnorm/pkg/tagstore"
)

const maxBody = 64 * 1024

// NewRouter returns an http.Handler with all tagnorm API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{svc: svc}

	mux.HandleFunc("GET /v1/normalize/{tag}", h.handleNormalize)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalizeBatch)
	mux.HandleFunc("POST /v1/similar", h.handleSimilar)
	mux.HandleFunc("GET /v1/aliases/{canonical}", h.handleAliases)
	mux.HandleFunc("GET /v1/variations/{canonical}", h.handleVariations)
	mux.HandleFunc("GET /v1/canonical/{tag}", h.handleCanonical)
	mux.HandleFunc("POST /v1/tags/prepare", h.handlePrepare)
	mux.HandleFunc("GET /v1/tags", h.handleListTags)
	mux.HandleFunc("POST /v1/tags", h.handleRecordTags)
	mux.HandleFunc("POST /v1/tags/check", h.handleCheckTag)
	mux.HandleFunc("DELETE /v1/tags/{name}", h.handleDeleteTag)
	mux.HandleFunc("GET /v1/dicts", h.handleListDicts)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.Handle("GET /metrics", svc.metrics.Handler())

	return requestID(accessLog(svc.logger)(cors(mux)))
}

type handler struct {
	svc *Service
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.normalize, &tagReq{Tag: r.PathValue("tag")})
}

func (h *handler) handleNormalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req tagsReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.svc.normalizeBatch, &req)
}

func (h *handler) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.svc.similar, &req)
}

func (h *handler) handleAliases(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.aliases, &canonicalNameReq{Canonical: r.PathValue("canonical")})
}

func (h *handler) handleVariations(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.variations, &canonicalNameReq{Canonical: r.PathValue("canonical")})
}

func (h *handler) handleCanonical(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.canonical, &tagReq{Tag: r.PathValue("tag")})
}

func (h *handler) handlePrepare(w http.ResponseWriter, r *http.Request) {
	var req tagsReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.svc.prepare, &req)
}

func (h *handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	h.serve(w, r, h.svc.listTags, &listTagsReq{Limit: limit})
}

func (h *handler) handleRecordTags(w http.ResponseWriter, r *http.Request) {
	var req tagsReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.svc.recordTags, &req)
}

func (h *handler) handleCheckTag(w http.ResponseWriter, r *http.Request) {
	var req tagReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.svc.checkTag, &req)
}

func (h *handler) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.deleteTag, &tagReq{Tag: r.PathValue("name")})
}

func (h *handler) handleListDicts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.listDicts, nil)
}

type healthResponse struct {
	Status       string          `json:"status"`
	Dictionaries int             `json:"dictionaries"`
	Canonicals   int             `json:"canonicals"`
	Aliases      int             `json:"aliases"`
	Cache        tags.CacheStats `json:"cache"`
	Store        bool            `json:"store"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	n := h.svc.reg.Normalizer()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Dictionaries: h.svc.reg.DictCount(),
		Canonicals:   n.Len(),
		Aliases:      n.AliasCount(),
		Cache:        n.Stats(),
		Store:        h.svc.store != nil,
	})
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(kit.WithTransport(r.Context(), "http"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func statusFor(err error) int {
	var verr *tags.ValidationError
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tagstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
