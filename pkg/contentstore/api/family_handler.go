package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/edupath/content-store/pkg/contentstore"
)

// FamilyHandler exposes one entity family over HTTP: public reads of the
// index and of individual documents, and admin writes.
type FamilyHandler[T contentstore.Document] struct {
	svc    *contentstore.Service[T]
	logger *slog.Logger
}

// NewFamilyHandler creates the handler for one family.
func NewFamilyHandler[T contentstore.Document](svc *contentstore.Service[T], logger *slog.Logger) *FamilyHandler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyHandler[T]{svc: svc, logger: logger}
}

// PublicRoutes serves the unauthenticated read contract. The same bytes are
// also reachable on the blobs' public URLs; these endpoints exist for
// callers that prefer the service path.
func (h *FamilyHandler[T]) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListIndex)
	r.Get("/{slug}", h.GetDocument)
	return r
}

// AdminRoutes serves the authenticated write contract. Token checking is
// applied by the parent router.
func (h *FamilyHandler[T]) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Put("/{slug}", h.UpsertDocument)
	r.Delete("/{slug}", h.DeleteDocument)
	r.Post("/bulk", h.BulkUpsert)
	r.Post("/reindex", h.Reindex)
	return r
}

// ListIndex returns the derived summary index. The index itself carries no
// ordering guarantee, so summaries are sorted by slug at read time.
func (h *FamilyHandler[T]) ListIndex(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to read index", "container", h.svc.Container(), "error", err)
		writeStoreError(w, r, err)
		return
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })
	render.JSON(w, r, summaries)
}

// GetDocument returns one full document or 404. A fetch failure in the
// store also renders as absence on the public path; content availability
// matters more than surfacing storage internals to visitors.
func (h *FamilyHandler[T]) GetDocument(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	doc, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		h.logger.Error("failed to fetch document", "container", h.svc.Container(), "slug", slug, "error", err)
		writeError(w, r, http.StatusNotFound, "not found", "")
		return
	}
	if doc == nil {
		writeError(w, r, http.StatusNotFound, "not found", "")
		return
	}
	render.JSON(w, r, doc)
}

// UpsertDocument creates or replaces one document. The body slug must match
// the path slug: slugs are immutable and renames are not a thing.
func (h *FamilyHandler[T]) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var doc T
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}
	if doc.DocSlug() != slug {
		writeError(w, r, http.StatusBadRequest, "body slug does not match URL slug", "")
		return
	}

	key, err := h.svc.Upsert(r.Context(), doc)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"key": key})
}

// DeleteDocument removes one document. Deleting an absent slug is a
// success.
func (h *FamilyHandler[T]) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	deleted, err := h.svc.Delete(r.Context(), slug)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"deleted": deleted})
}

// BulkUpsert writes the supplied document set and regenerates the index
// from the store afterwards. Per-item outcomes are reported; partial
// failure does not fail the request.
func (h *FamilyHandler[T]) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	var docs []T
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}

	result, err := h.svc.UpsertAll(r.Context(), docs)
	if err != nil {
		// The writes may have landed even though reindexing failed; report
		// both.
		h.logger.Error("reindex after bulk upsert failed", "container", h.svc.Container(), "error", err)
		writeError(w, r, http.StatusInternalServerError, "index rebuild failed", err.Error())
		return
	}
	render.JSON(w, r, newBatchResponse(result))
}

// Reindex regenerates the index by reading every stored document back.
func (h *FamilyHandler[T]) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reindex(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
