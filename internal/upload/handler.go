package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"postboard/internal/shared/httpx"
	"postboard/internal/shared/telemetry"
)

// multipartSlack leaves room for boundaries and part headers on top of
// MaxSize when capping the request body.
const multipartSlack = 1 << 20

type Handler struct {
	store Storage
	now   func() time.Time
}

func NewHandler(s Storage) *Handler { return &Handler{store: s, now: time.Now} }

// RegisterRoutes mounts the upload endpoint behind wrap and the file server.
func RegisterRoutes(mux *http.ServeMux, h *Handler, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST /api/upload", wrap(httpx.Wrap(h.Upload)))
	mux.Handle("GET /uploads/{name}", http.HandlerFunc(h.Serve))
}

// Upload accepts a single multipart field "image". Every failure, including
// validation, is a 500 with an error body.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) error {
	name, err := h.save(r, w)
	telemetry.Uploads.WithLabelValues(telemetry.Outcome(err)).Inc()
	if err != nil {
		return httpx.Internal(err, "upload_failed")
	}
	httpx.WriteJSON(w, map[string]string{"imageUrl": URL(name)}, http.StatusOK)
	return nil
}

func (h *Handler) save(r *http.Request, w http.ResponseWriter) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSize+multipartSlack)
	file, hdr, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrNoFile
		}
		return "", err
	}
	defer file.Close()

	ct := hdr.Header.Get("Content-Type")
	if err := Check(ct, hdr.Size); err != nil {
		return "", err
	}

	for i := 0; i < 3; i++ {
		name := fileName(h.now(), hdr.Filename)
		err = h.store.Save(r.Context(), name, mediaType(ct), file, hdr.Size)
		if err == nil {
			telemetry.UploadBytes.Observe(float64(hdr.Size))
			return name, nil
		}
		if !errors.Is(err, ErrExists) {
			return "", err
		}
	}
	return "", fmt.Errorf("upload: could not pick a free name: %w", err)
}

// Serve streams a stored image.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		name = path.Base(r.URL.Path)
	}
	rc, info, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err, "not_found")
			return
		}
		httpx.LogError(r, err)
		httpx.WriteError(w, http.StatusInternalServerError, err, "")
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}
	if _, err := io.Copy(w, rc); err != nil {
		httpx.LogError(r, err)
	}
}
