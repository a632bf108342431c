package fulfillment

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
	"github.com/glorpus-work/schoolyard/pkg/scratch"
)

// Service orchestrates digital-download delivery end to end.
type Service struct {
	Links    LinkStore
	Courses  CourseStore
	Lessons  LessonStore
	Media    MediaResolver
	Fetcher  MediaFetcher
	Archiver Archiver
	Ledger   Ledger
	Scratch  *scratch.Manager

	// EnforceSingleUse rejects links whose download has already been
	// delivered. When false, a consumed link keeps working until it expires.
	EnforceSingleUse bool

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Delivery is a built archive ready to stream. The caller must call
// Finalize exactly once after streaming (success or not) so the link is
// consumed, the purchase recorded and the scratch directory removed.
type Delivery struct {
	ArchivePath string
	FileName    string
	FileCount   int
	Skipped     int
	CourseID    string
	UserID      string

	link *model.DownloadLink
	dir  *scratch.Dir
	svc  *Service

	finalizeOnce sync.Once
	finalizeErr  error
}

// Deliver resolves the token, fetches the course's media into a scratch
// directory and builds the zip archive. Per-lesson fetch failures are
// logged and skipped; everything else is fatal to the request.
//
// The token is only honored on the site it was issued for: course and
// lesson lookups are scoped to the requesting site, so a link presented
// on another domain behaves like an unknown token.
//
// A nil Delivery with ErrNoFiles means the course has no downloadable
// media: the link stays valid and nothing was written to disk.
func (s *Service) Deliver(ctx context.Context, site *model.Site, token string) (*Delivery, error) {
	now := s.now()

	link, err := s.Links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.DomainID != site.ID {
		return nil, errors.ErrLinkNotFound
	}
	if link.Expired(now) {
		if delErr := s.Links.Delete(ctx, token); delErr != nil {
			logger.Warnf("failed to delete expired link %s: %v", token, delErr)
		}
		return nil, errors.ErrLinkExpired
	}
	if s.EnforceSingleUse && link.Consumed {
		return nil, errors.ErrLinkConsumed
	}

	course, err := s.Courses.GetPublished(ctx, site.ID, link.CourseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.Lessons.ListByCourse(ctx, site.ID, link.CourseID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list course lessons")
	}

	mediaIDs := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		if lesson.MediaID != "" {
			mediaIDs = append(mediaIDs, lesson.MediaID)
		}
	}
	if len(mediaIDs) == 0 {
		return nil, errors.ErrNoFiles
	}

	dir := s.Scratch.Allocate(site.Name, link.Token, now)
	if err := dir.Ensure(); err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory")
	}

	fetched := 0
	for _, mediaID := range mediaIDs {
		if err := s.fetchOne(ctx, mediaID, dir.FilesDir()); err != nil {
			logger.Warn("skipping lesson media", logger.Fields{
				"media_id": mediaID,
				"token":    token,
				"error":    err.Error(),
			})
			continue
		}
		fetched++
	}

	fileName := archiveFileName(course)
	archivePath := filepath.Join(dir.Path(), fileName)
	if _, err := s.Archiver.Build(ctx, dir.FilesDir(), archivePath); err != nil {
		if delErr := dir.Destroy(); delErr != nil {
			logger.Warnf("failed to remove scratch directory %s: %v", dir.Path(), delErr)
		}
		return nil, err
	}

	return &Delivery{
		ArchivePath: archivePath,
		FileName:    fileName,
		FileCount:   fetched,
		Skipped:     len(mediaIDs) - fetched,
		CourseID:    link.CourseID,
		UserID:      link.UserID,
		link:        link,
		dir:         dir,
		svc:         s,
	}, nil
}

func (s *Service) fetchOne(ctx context.Context, mediaID, destDir string) error {
	media, err := s.Media.GetMedia(ctx, mediaID)
	if err != nil {
		return errors.Wrapf(errors.ErrFetchFailed, "failed to resolve media %s: %v", mediaID, err)
	}
	if _, err := s.Fetcher.Fetch(ctx, media, destDir); err != nil {
		return err
	}
	return nil
}

// Finalize performs the post-delivery bookkeeping: consume the link, record
// the download against the purchase, and remove the scratch directory.
// Repeated calls are no-ops returning the first result. Failures are logged;
// they never undo the delivery.
func (d *Delivery) Finalize(ctx context.Context) error {
	d.finalizeOnce.Do(func() {
		var errs []error
		if err := d.svc.Links.MarkConsumed(ctx, d.link.Token); err != nil {
			logger.Warnf("failed to mark link %s consumed: %v", d.link.Token, err)
			errs = append(errs, err)
		}
		if err := d.svc.Ledger.RecordDownload(ctx, d.link.DomainID, d.link.UserID, d.link.CourseID); err != nil {
			logger.Warnf("failed to record download for user %s: %v", d.link.UserID, err)
			errs = append(errs, err)
		}
		if err := d.dir.Destroy(); err != nil {
			logger.Warnf("failed to remove scratch directory %s: %v", d.dir.Path(), err)
			errs = append(errs, err)
		}
		d.finalizeErr = stderrors.Join(errs...)
	})
	return d.finalizeErr
}

// Discard removes the scratch directory without consuming the link. Use it
// when the archive was built but never streamed.
func (d *Delivery) Discard() error {
	var err error
	d.finalizeOnce.Do(func() {
		err = d.dir.Destroy()
	})
	return err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// archiveFileName derives the archive name from the course title. Path
// separators are stripped so the title can never escape the scratch
// directory; an untitled course falls back to its id.
func archiveFileName(course *model.Course) string {
	clean := strings.NewReplacer("/", "-", "\\", "-").Replace(course.Title)
	if clean == "" {
		clean = course.CourseID
	}
	return clean + ".zip"
}
