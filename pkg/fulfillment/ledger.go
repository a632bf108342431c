package fulfillment

import (
	"context"
	stderrors "errors"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
)

// UserStore is the subset of the user store used by the purchase ledger.
type UserStore interface {
	MarkDownloaded(ctx context.Context, domainID, userID, courseID string) error
}

// PurchaseLedger flips the downloaded flag on a buyer's purchase after the
// archive has been delivered. A missing user or purchase is a silent no-op:
// the file already reached the buyer, so bookkeeping gaps are logged, not
// surfaced.
type PurchaseLedger struct {
	Users UserStore
}

// RecordDownload marks the purchase as downloaded. It is idempotent and
// never fails on a missing user or purchase.
func (l *PurchaseLedger) RecordDownload(ctx context.Context, domainID, userID, courseID string) error {
	err := l.Users.MarkDownloaded(ctx, domainID, userID, courseID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			logger.Debug("purchase ledger: user not found, skipping", logger.Fields{
				"user_id":   userID,
				"course_id": courseID,
			})
			return nil
		}
		return errors.Wrap(err, "failed to record download")
	}
	return nil
}
