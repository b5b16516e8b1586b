package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/tag"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type TagHandler struct {
	svc tag.Service
}

func NewTagHandler(svc tag.Service) *TagHandler { return &TagHandler{svc: svc} }

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTag(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.CreateTagRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.CreateTag(r.Context(), c.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTagRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateTag(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTag(r.Context(), chi.URLParam(r, "name")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "tag deleted"})
}

func (h *TagHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if cats == nil {
		cats = []domain.TagCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// GetCategory returns the category with its tags.
func (h *TagHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *TagHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTagCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *TagHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTagCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *TagHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "name")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "tag category deleted"})
}
