package server

import "net/http"

// listWidgets returns the widgets usable on this deployment.
func (h *handlers) listWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Widgets.ListFor(h.deps.PlatformVersion))
}
