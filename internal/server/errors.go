package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
)

// writeError maps domain errors onto HTTP status codes. The error message
// text is safe to show to clients; internals stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrLinkNotFound),
		stderrors.Is(err, errors.ErrLinkExpired),
		stderrors.Is(err, errors.ErrLinkConsumed),
		stderrors.Is(err, errors.ErrCourseNotFound),
		stderrors.Is(err, errors.ErrSiteNotFound),
		stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrOrderNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrInvalidCourseID),
		stderrors.Is(err, errors.ErrMediaIDEmpty):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrPermissionDenied):
		writeJSONError(w, http.StatusForbidden, err.Error())
	default:
		logger.Errorf("request failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}
