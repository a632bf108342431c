// Package model provides the data structures shared across the schoolyard
// platform: sites, courses, lessons, media references, users and the
// digital-download grant types.
package model

import "time"

// Site represents a tenant of the platform, keyed by its domain name.
type Site struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Settings SiteSettings `json:"settings"`
}

// SiteSettings holds per-site configuration read by the payment and
// storefront layers. The admin UI that edits these lives outside this
// repository.
type SiteSettings struct {
	Title           string `json:"title,omitempty"`
	CurrencyISOCode string `json:"currency_iso_code,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

// Course represents a published or draft course belonging to a site.
type Course struct {
	CourseID  string  `json:"course_id"`
	DomainID  string  `json:"domain_id"`
	Title     string  `json:"title"`
	Published bool    `json:"published"`
	Cost      float64 `json:"cost"`
}

// Lesson represents a single lesson of a course. MediaID is empty when the
// lesson has no attached media.
type Lesson struct {
	LessonID string `json:"lesson_id"`
	CourseID string `json:"course_id"`
	DomainID string `json:"domain_id"`
	MediaID  string `json:"media_id,omitempty"`
}

// Media describes a file stored in the external media service. Only
// OriginalFileName and File are interpreted by the download pipeline; the
// rest is passed through to API consumers.
type Media struct {
	MediaID          string `json:"media_id"`
	OriginalFileName string `json:"original_file_name"`
	File             string `json:"file"`
	MimeType         string `json:"mime_type,omitempty"`
	Access           string `json:"access,omitempty"`
	Size             int64  `json:"size,omitempty"`
	Thumbnail        string `json:"thumbnail,omitempty"`
}

// DownloadLink is a single-use grant to download a course's files as a zip
// archive. Links are created when a buyer requests a download and consumed
// by the fulfillment service.
type DownloadLink struct {
	Token     string    `json:"token"`
	CourseID  string    `json:"course_id"`
	UserID    string    `json:"user_id"`
	DomainID  string    `json:"domain_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// Expired reports whether the link's expiry is in the past at the given time.
func (l *DownloadLink) Expired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// Purchase is one entry of a user's purchase list. Downloaded flips to true
// once the digital download for the course has been delivered.
type Purchase struct {
	CourseID   string `json:"course_id"`
	Downloaded bool   `json:"downloaded"`
}

// User represents a platform account within a site.
type User struct {
	UserID      string     `json:"user_id"`
	DomainID    string     `json:"domain_id"`
	Email       string     `json:"email"`
	Permissions []string   `json:"permissions,omitempty"`
	Purchases   []Purchase `json:"purchases,omitempty"`
}

// HasPurchased reports whether the user owns the given course.
func (u *User) HasPurchased(courseID string) bool {
	for _, p := range u.Purchases {
		if p.CourseID == courseID {
			return true
		}
	}
	return false
}

// Order is a payment-initiation record created when a buyer starts checkout
// for a paid course.
type Order struct {
	OrderID         string    `json:"order_id"`
	DomainID        string    `json:"domain_id"`
	CourseID        string    `json:"course_id"`
	PurchasedBy     string    `json:"purchased_by"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentID       string    `json:"payment_id,omitempty"`
	Amount          int64     `json:"amount"`
	CurrencyISOCode string    `json:"currency_iso_code"`
	CreatedAt       time.Time `json:"created_at"`
}
