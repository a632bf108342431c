// Package store persists the platform's domain records in PostgreSQL.
package store

import (
	"context"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

//go:generate mockgen -destination=./mocks/store.go . SiteStore,CourseStore,LessonStore,UserStore,LinkStore,OrderStore

// SiteStore resolves tenant sites by their domain name.
type SiteStore interface {
	// GetByDomain returns the site serving the given domain name.
	GetByDomain(ctx context.Context, domainName string) (*model.Site, error)
	// SaveSettings replaces the site's settings document.
	SaveSettings(ctx context.Context, siteID string, settings model.SiteSettings) error
}

// CourseStore provides access to a site's courses.
type CourseStore interface {
	// Get returns the course regardless of its publication state.
	Get(ctx context.Context, domainID, courseID string) (*model.Course, error)
	// GetPublished returns the course only if it is published.
	GetPublished(ctx context.Context, domainID, courseID string) (*model.Course, error)
}

// LessonStore provides access to a course's lessons.
type LessonStore interface {
	// ListByCourse returns the course's lessons in their stored order.
	ListByCourse(ctx context.Context, domainID, courseID string) ([]model.Lesson, error)
}

// UserStore provides access to platform accounts and their purchases.
type UserStore interface {
	// Get returns the user scoped to the given site.
	Get(ctx context.Context, domainID, userID string) (*model.User, error)
	// AddPurchase appends a purchase to the user's purchase list.
	AddPurchase(ctx context.Context, domainID, userID string, purchase model.Purchase) error
	// MarkDownloaded flips the downloaded flag of an existing purchase.
	MarkDownloaded(ctx context.Context, domainID, userID, courseID string) error
}

// LinkStore manages single-use download grants.
type LinkStore interface {
	// Create persists a new download link.
	Create(ctx context.Context, link *model.DownloadLink) error
	// GetByToken returns the link identified by the token.
	GetByToken(ctx context.Context, token string) (*model.DownloadLink, error)
	// MarkConsumed records that the link's download has been delivered.
	MarkConsumed(ctx context.Context, token string) error
	// Delete removes the link.
	Delete(ctx context.Context, token string) error
}

// OrderStore persists payment-initiation records.
type OrderStore interface {
	// Create persists a new order.
	Create(ctx context.Context, order *model.Order) error
	// SetPaymentID attaches the gateway's payment id to an order.
	SetPaymentID(ctx context.Context, orderID, paymentID string) error
}
