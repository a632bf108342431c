package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

func (h *handlers) listMedia(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if !hasPermission(user, model.PermViewAnyMedia, model.PermManageMedia, model.PermManageAnyMedia) {
		writeError(w, errors.ErrPermissionDenied)
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	site := siteFrom(r.Context())

	result, err := h.deps.Media.List(r.Context(), site.Name, page, r.URL.Query().Get("access"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) getMedia(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if !hasPermission(user, model.PermViewAnyMedia, model.PermManageMedia, model.PermManageAnyMedia) {
		writeError(w, errors.ErrPermissionDenied)
		return
	}

	m, err := h.deps.Media.GetMedia(r.Context(), chi.URLParam(r, "mediaId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handlers) deleteMedia(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if !hasPermission(user, model.PermManageMedia, model.PermManageAnyMedia) {
		writeError(w, errors.ErrPermissionDenied)
		return
	}

	if err := h.deps.Media.Delete(r.Context(), chi.URLParam(r, "mediaId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

func (h *handlers) presignedUploadURL(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if !hasPermission(user, model.PermUploadMedia, model.PermManageMedia, model.PermManageAnyMedia) {
		writeError(w, errors.ErrPermissionDenied)
		return
	}

	site := siteFrom(r.Context())
	url, err := h.deps.Media.PresignedUploadURL(r.Context(), site.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func hasPermission(user *model.User, anyOf ...string) bool {
	if user == nil {
		return false
	}
	return user.HasPermission(anyOf...)
}
