//go:generate mockgen -destination=./mocks/payment.go . Method,CourseStore,UserStore,OrderStore

// Package payment handles checkout initiation for paid courses and the
// pluggable payment gateway methods behind it.
package payment

import (
	"context"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

// Transaction statuses returned to the storefront client.
const (
	StatusSuccess   = "success"
	StatusInitiated = "initiated"
	StatusFailed    = "failed"
)

// InitiateRequest carries everything a gateway needs to start a payment.
type InitiateRequest struct {
	Course   *model.Course
	OrderID  string
	Metadata map[string]any
}

// Method is a payment gateway integration. Initiate returns the gateway's
// payment tracker id.
type Method interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (string, error)
}

// CourseStore is the subset of the course store used for checkout.
type CourseStore interface {
	Get(ctx context.Context, domainID, courseID string) (*model.Course, error)
}

// UserStore is the subset of the user store used for checkout.
type UserStore interface {
	AddPurchase(ctx context.Context, domainID, userID string, purchase model.Purchase) error
}

// OrderStore persists checkout orders.
type OrderStore interface {
	Create(ctx context.Context, order *model.Order) error
	SetPaymentID(ctx context.Context, orderID, paymentID string) error
}

// Result is the outcome of a checkout initiation.
type Result struct {
	Status         string `json:"status"`
	OrderID        string `json:"order_id,omitempty"`
	PaymentTracker string `json:"payment_tracker,omitempty"`
}
