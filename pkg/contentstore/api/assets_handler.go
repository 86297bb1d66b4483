package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/edupath/content-store/pkg/contentstore"
)

// maxUploadBytes caps a single uploaded file. Over-limit uploads are
// rejected outright: asset URLs are immutable and cached for a year, so a
// truncated payload would be served corrupt indefinitely.
const maxUploadBytes = 32 << 20

var errUploadTooLarge = errors.New("upload exceeds size limit")

// AssetsHandler exposes image upload, listing and deletion for the admin
// UI. All routes are mounted behind the admin token middleware.
type AssetsHandler struct {
	uploader *contentstore.AssetUploader
	logger   *slog.Logger
}

// NewAssetsHandler creates the assets handler.
func NewAssetsHandler(uploader *contentstore.AssetUploader, logger *slog.Logger) *AssetsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetsHandler{uploader: uploader, logger: logger}
}

// Routes returns the admin asset routes.
func (h *AssetsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Post("/batch", h.UploadBatch)
	r.Delete("/", h.Delete)
	r.Get("/{owner}", h.ListForOwner)
	return r
}

// Upload stores a single image from the multipart field "file" and returns
// its public URL. Optional form values "owner" and "role" namespace the
// key.
func (h *AssetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed multipart body", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file field", err.Error())
		return
	}
	defer file.Close()

	payload, err := readUpload(file)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	url, err := h.uploader.Upload(r.Context(), contentstore.AssetFile{
		Data:             payload,
		OriginalFilename: header.Filename,
	}, r.FormValue("owner"), r.FormValue("role"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": url})
}

// UploadBatch stores every file under the multipart field "files" and
// reports per-item outcomes. The batch is not all-or-nothing.
func (h *AssetsHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed multipart body", err.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "missing files field", "")
		return
	}

	files := make([]contentstore.AssetFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "failed to read upload", err.Error())
			return
		}
		payload, err := readUpload(f)
		f.Close()
		if err != nil {
			writeUploadError(w, r, err)
			return
		}
		files = append(files, contentstore.AssetFile{
			Data:             payload,
			OriginalFilename: header.Filename,
		})
	}

	result := h.uploader.UploadMany(r.Context(), files, r.FormValue("owner"), r.FormValue("role"))
	render.JSON(w, r, newBatchResponse(result))
}

// DeleteAssetRequest is the body of an asset deletion.
type DeleteAssetRequest struct {
	URL string `json:"url"`
}

// Delete removes the asset behind a public URL. Malformed or foreign URLs
// are a 400, never a silent no-op.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, r, http.StatusBadRequest, "url is required", "")
		return
	}

	if err := h.uploader.Delete(r.Context(), req.URL); err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListForOwner returns the public URLs of every asset under an owner slug.
func (h *AssetsHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")

	urls, err := h.uploader.ListForOwner(r.Context(), owner)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	render.JSON(w, r, map[string][]string{"urls": urls})
}

// readUpload reads a file part, failing with errUploadTooLarge instead of
// truncating when the part exceeds maxUploadBytes.
func readUpload(f multipart.File) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, errUploadTooLarge
	}
	return data, nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errUploadTooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, errUploadTooLarge.Error(), "")
		return
	}
	writeError(w, r, http.StatusBadRequest, "failed to read upload", err.Error())
}
