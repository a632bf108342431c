//go:generate mockgen -destination=./mocks/fulfillment.go . LinkStore,CourseStore,LessonStore,MediaResolver,MediaFetcher,Archiver,Ledger,UserStore

// Package fulfillment assembles and delivers digital-download archives for
// purchased courses. The Service orchestrates the full pipeline: token
// lookup, course resolution, per-lesson media fetch, zip assembly, and the
// post-delivery bookkeeping.
package fulfillment

import (
	"context"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

// LinkStore is the subset of the link store used by the fulfillment service.
type LinkStore interface {
	GetByToken(ctx context.Context, token string) (*model.DownloadLink, error)
	MarkConsumed(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
}

// CourseStore is the subset of the course store used by the fulfillment service.
type CourseStore interface {
	GetPublished(ctx context.Context, domainID, courseID string) (*model.Course, error)
}

// LessonStore is the subset of the lesson store used by the fulfillment service.
type LessonStore interface {
	ListByCourse(ctx context.Context, domainID, courseID string) ([]model.Lesson, error)
}

// MediaResolver resolves media metadata from the media service.
type MediaResolver interface {
	GetMedia(ctx context.Context, mediaID string) (*model.Media, error)
}

// MediaFetcher downloads a media file into a destination directory.
type MediaFetcher interface {
	Fetch(ctx context.Context, media *model.Media, destDir string) (string, error)
}

// Archiver builds a zip archive from a directory's contents.
type Archiver interface {
	Build(ctx context.Context, sourceDir, archivePath string) (string, error)
}

// Ledger records a delivered download against the buyer's purchase.
type Ledger interface {
	RecordDownload(ctx context.Context, domainID, userID, courseID string) error
}
