package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

// InitiationService starts checkout for a course on behalf of a buyer.
type InitiationService struct {
	Courses CourseStore
	Users   UserStore
	Orders  OrderStore
	Methods map[string]Method

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Initiate starts checkout for the buyer. An already-owned course and a
// zero-cost course both resolve immediately with StatusSuccess; a paid
// course creates an order and hands off to the site's payment method.
func (s *InitiationService) Initiate(ctx context.Context, site *model.Site, user *model.User, courseID string, metadata map[string]any) (*Result, error) {
	if courseID == "" {
		return nil, errors.ErrInvalidCourseID
	}

	course, err := s.Courses.Get(ctx, site.ID, courseID)
	if err != nil {
		return nil, err
	}

	if user.HasPurchased(course.CourseID) {
		return &Result{Status: StatusSuccess}, nil
	}

	if course.Cost == 0 {
		err := s.Users.AddPurchase(ctx, site.ID, user.UserID, model.Purchase{CourseID: course.CourseID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to finalize free purchase")
		}
		return &Result{Status: StatusSuccess}, nil
	}

	method, ok := s.Methods[site.Settings.PaymentMethod]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownPayment, "method %q", site.Settings.PaymentMethod)
	}

	order := &model.Order{
		OrderID:         uuid.NewString(),
		DomainID:        site.ID,
		CourseID:        course.CourseID,
		PurchasedBy:     user.UserID,
		PaymentMethod:   method.Name(),
		Amount:          int64(course.Cost * 100),
		CurrencyISOCode: site.Settings.CurrencyISOCode,
		CreatedAt:       s.now(),
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	tracker, err := method.Initiate(ctx, InitiateRequest{
		Course:   course,
		OrderID:  order.OrderID,
		Metadata: metadata,
	})
	if err != nil {
		return &Result{Status: StatusFailed, OrderID: order.OrderID}, err
	}

	if err := s.Orders.SetPaymentID(ctx, order.OrderID, tracker); err != nil {
		// The gateway already holds the payment; log and keep going.
		logger.Warnf("failed to save payment id for order %s: %v", order.OrderID, err)
	}

	return &Result{
		Status:         StatusInitiated,
		OrderID:        order.OrderID,
		PaymentTracker: tracker,
	}, nil
}

func (s *InitiationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
