package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/hook"
)

// download streams the course's zip archive for a download token. On stream
// close the link is consumed, the purchase recorded and the scratch space
// removed.
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	site := siteFrom(ctx)

	delivery, err := h.deps.Fulfillment.Deliver(ctx, site, token)
	if err != nil {
		if stderrors.Is(err, errors.ErrNoFiles) {
			downloadsDelivered.WithLabelValues("empty").Inc()
			writeJSON(w, http.StatusOK, map[string]string{"message": errors.ErrNoFiles.Error()})
			return
		}
		downloadsDelivered.WithLabelValues("error").Inc()
		writeError(w, err)
		return
	}

	f, err := os.Open(delivery.ArchivePath)
	if err != nil {
		if discardErr := delivery.Discard(); discardErr != nil {
			logger.Warnf("failed to discard delivery: %v", discardErr)
		}
		downloadsDelivered.WithLabelValues("error").Inc()
		writeError(w, errors.Wrap(err, "failed to open archive"))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", delivery.FileName))

	_, copyErr := io.Copy(w, f)
	if closeErr := f.Close(); closeErr != nil {
		logger.Warnf("failed to close archive file: %v", closeErr)
	}
	if copyErr != nil {
		// Bytes already left; the link is still consumed below.
		logger.Warnf("archive stream interrupted for token %s: %v", token, copyErr)
	}

	// The client may already be gone, but the bookkeeping must still run.
	if err := delivery.Finalize(context.WithoutCancel(ctx)); err != nil {
		logger.Warnf("post-delivery bookkeeping incomplete for token %s: %v", token, err)
	}
	downloadsDelivered.WithLabelValues("delivered").Inc()

	if h.deps.Hooks != nil && site != nil {
		hookErr := h.deps.Hooks.Execute(hook.DownloadDelivered, hook.HookContext{
			Domain:   site.Name,
			CourseID: delivery.CourseID,
			UserID:   delivery.UserID,
			Token:    token,
		})
		if hookErr != nil {
			logger.Warnf("download-delivered hook failed: %v", hookErr)
		}
	}
}
