package post

import (
	"errors"
	"net/http"

	"postboard/internal/shared/httpx"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

// RegisterRoutes mounts the posts API. protect wraps the write routes.
func RegisterRoutes(mux *http.ServeMux, h *Handler, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/posts", httpx.Wrap(h.List))
	mux.Handle("GET /api/posts/{id}", httpx.Wrap(h.Get))
	mux.Handle("POST /api/posts", protect(httpx.Wrap(h.Create)))
	mux.Handle("PUT /api/posts/{id}", protect(httpx.Wrap(h.Update)))
	mux.Handle("DELETE /api/posts/{id}", protect(httpx.Wrap(h.Delete)))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	items, err := h.svc.List(r.Context(), FilterFromQuery(r.URL.Query()))
	if err != nil {
		return mapErr(err)
	}
	if items == nil {
		items = []Post{}
	}
	httpx.WriteJSON(w, items, http.StatusOK)
	return nil
}

// Get answers null for an unknown id, matching Update.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	in, err := httpx.Decode[Input](r)
	if err != nil {
		return err
	}
	p, err := h.svc.Create(r.Context(), uid, in)
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, p, http.StatusCreated)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	req, err := httpx.Decode[UpdateReq](r)
	if err != nil {
		return err
	}
	p, err := h.svc.Update(r.Context(), uid, r.PathValue("id"), req)
	if err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		return mapErr(err)
	}
	httpx.WriteJSON(w, map[string]string{"message": "Deleted"}, http.StatusOK)
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, ErrInvalidInput) {
		return httpx.BadRequest(err, "invalid_input")
	}
	return err
}
