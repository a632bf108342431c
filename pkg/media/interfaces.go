//go:generate mockgen -destination=./mocks/media.go . Fetcher,Resolver
package media

import (
	"context"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

// Fetcher downloads a media file into a destination directory, using the
// media's original file name as the on-disk name. Implementations must
// remove partially written files when a transfer fails mid-stream and
// propagate the error so callers can skip the item and continue.
type Fetcher interface {
	Fetch(ctx context.Context, media *model.Media, destDir string) (string, error)
}

// Resolver looks up a media reference in the media service by id.
type Resolver interface {
	GetMedia(ctx context.Context, mediaID string) (*model.Media, error)
}
