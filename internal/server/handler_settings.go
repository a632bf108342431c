package server

import (
	"encoding/json"
	"net/http"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

// getSettings returns the current site's public settings.
func (h *handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	site := siteFrom(r.Context())
	writeJSON(w, http.StatusOK, site.Settings)
}

// updateSettings replaces the site's settings. Requires course management
// rights, which site admins hold.
func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site := siteFrom(ctx)
	user := userFrom(ctx)
	if !hasPermission(user, model.PermManageCourse, model.PermManageAnyCourse) {
		writeError(w, errors.ErrPermissionDenied)
		return
	}

	var settings model.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.deps.Sites.SaveSettings(ctx, site.ID, settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
