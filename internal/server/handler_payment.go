package server

import (
	"encoding/json"
	"net/http"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/hook"
	"github.com/glorpus-work/schoolyard/pkg/payment"
)

type initiatePaymentRequest struct {
	CourseID string         `json:"courseid"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// initiatePayment starts checkout for the acting user.
func (h *handlers) initiatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site := siteFrom(ctx)
	user := userFrom(ctx)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.deps.Payments.Initiate(ctx, site, user, req.CourseID, req.Metadata)
	if err != nil {
		if result != nil && result.Status == payment.StatusFailed {
			writeJSON(w, http.StatusInternalServerError, result)
			return
		}
		writeError(w, err)
		return
	}

	if h.deps.Hooks != nil && result.Status == payment.StatusInitiated {
		hookErr := h.deps.Hooks.Execute(hook.PurchaseInitiated, hook.HookContext{
			Domain:   site.Name,
			CourseID: req.CourseID,
			UserID:   user.UserID,
			OrderID:  result.OrderID,
		})
		if hookErr != nil {
			logger.Warnf("purchase-initiated hook failed: %v", hookErr)
		}
	}

	writeJSON(w, http.StatusOK, result)
}
