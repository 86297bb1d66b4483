package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/edupath/content-store/pkg/contentstore"
)

// ErrorResponse is the JSON error envelope. Detail carries the underlying
// cause for 500s; the top-level message stays generic.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// BatchItemResponse is the per-item outcome of a bulk operation.
type BatchItemResponse struct {
	Name  string `json:"name"`
	Key   string `json:"key,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// BatchResponse reports a bulk operation. Partial failure is a normal
// result: already-written items stay written and each item carries its own
// outcome.
type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Items     []BatchItemResponse `json:"items"`
}

func newBatchResponse(result *contentstore.BatchResult) BatchResponse {
	resp := BatchResponse{
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
		Items:     make([]BatchItemResponse, 0, len(result.Items)),
	}
	for _, it := range result.Items {
		item := BatchItemResponse{Name: it.Name, Key: it.Key, URL: it.URL}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message, Detail: detail})
}

// writeStoreError maps a service error onto the HTTP status conventions:
// 401 unauthorized, 400 invalid body or reference, 404 missing, 500 generic
// plus detail.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contentstore.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "missing or invalid admin token", "")
	case errors.Is(err, contentstore.ErrInvalidDocument),
		errors.Is(err, contentstore.ErrInvalidReference):
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, contentstore.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found", "")
	default:
		writeError(w, r, http.StatusInternalServerError, "storage operation failed", err.Error())
	}
}
