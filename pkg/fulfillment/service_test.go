package fulfillment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/fulfillment/mocks"
	"github.com/glorpus-work/schoolyard/pkg/model"
	"github.com/glorpus-work/schoolyard/pkg/scratch"
)

type serviceMocks struct {
	links    *mocks.MockLinkStore
	courses  *mocks.MockCourseStore
	lessons  *mocks.MockLessonStore
	media    *mocks.MockMediaResolver
	fetcher  *mocks.MockMediaFetcher
	archiver *mocks.MockArchiver
	ledger   *mocks.MockLedger
}

func newService(t *testing.T, scratchRoot string) (*Service, serviceMocks) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		links:    mocks.NewMockLinkStore(ctrl),
		courses:  mocks.NewMockCourseStore(ctrl),
		lessons:  mocks.NewMockLessonStore(ctrl),
		media:    mocks.NewMockMediaResolver(ctrl),
		fetcher:  mocks.NewMockMediaFetcher(ctrl),
		archiver: mocks.NewMockArchiver(ctrl),
		ledger:   mocks.NewMockLedger(ctrl),
	}
	svc := &Service{
		Links:            m.links,
		Courses:          m.courses,
		Lessons:          m.lessons,
		Media:            m.media,
		Fetcher:          m.fetcher,
		Archiver:         m.archiver,
		Ledger:           m.ledger,
		Scratch:          scratch.NewManager(scratchRoot),
		EnforceSingleUse: true,
		Now:              func() time.Time { return time.UnixMilli(1700000000000) },
	}
	return svc, m
}

func testSite() *model.Site {
	return &model.Site{ID: "domain-1", Name: "school.example.com"}
}

func validLink() *model.DownloadLink {
	return &model.DownloadLink{
		Token:     "abc123tokenabc123token",
		CourseID:  "course-1",
		UserID:    "user-1",
		DomainID:  "domain-1",
		ExpiresAt: time.UnixMilli(1700000000000).Add(time.Hour),
	}
}

func TestDeliver_UnknownToken(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	m.links.EXPECT().GetByToken(gomock.Any(), "nope").Return(nil, errors.ErrLinkNotFound)

	d, err := svc.Deliver(context.Background(), testSite(), "nope")

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrLinkNotFound)
}

func TestDeliver_ExpiredLinkIsDeleted(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	link.ExpiresAt = time.UnixMilli(1700000000000).Add(-time.Minute)
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.links.EXPECT().Delete(gomock.Any(), link.Token).Return(nil)

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrLinkExpired)
}

func TestDeliver_ExpiredLink_DeleteFailureStillExpires(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	link.ExpiresAt = time.UnixMilli(1700000000000).Add(-time.Minute)
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.links.EXPECT().Delete(gomock.Any(), link.Token).Return(assert.AnError)

	_, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.ErrorIs(t, err, errors.ErrLinkExpired)
}

func TestDeliver_ConsumedLinkRejectedWhenEnforced(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	link.Consumed = true
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrLinkConsumed)
}

func TestDeliver_CrossDomainLinkRejected(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	link.DomainID = "domain-2"
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrLinkNotFound)
}

func TestDeliver_CrossDomainExpiredLinkNotDeleted(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	link.DomainID = "domain-2"
	link.ExpiresAt = time.UnixMilli(1700000000000).Add(-time.Minute)
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)

	// No Delete expectation: another site's link must stay untouched.
	_, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.ErrorIs(t, err, errors.ErrLinkNotFound)
}

func TestDeliver_UnpublishedCourse(t *testing.T) {
	svc, m := newService(t, t.TempDir())
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").Return(nil, errors.ErrCourseNotFound)

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrCourseNotFound)
}

func TestDeliver_NoMediaShortCircuits(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1"}, {LessonID: "l2"}}, nil)

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrNoFiles)

	// Nothing may have been written to the scratch root.
	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestDeliver_PartialFetchBuildsPartialArchive(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{
			{LessonID: "l1", MediaID: "m1"},
			{LessonID: "l2"},
			{LessonID: "l3", MediaID: "m3"},
		}, nil)

	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, media *model.Media, destDir string) (string, error) {
			path := filepath.Join(destDir, media.OriginalFileName)
			return path, os.WriteFile(path, []byte("pdf"), 0o644)
		})
	m.media.EXPECT().GetMedia(gomock.Any(), "m3").Return(nil, errors.ErrMediaService)

	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sourceDir, archivePath string) (string, error) {
			entries, err := os.ReadDir(sourceDir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "a.pdf", entries[0].Name())
			return archivePath, os.WriteFile(archivePath, []byte("zip"), 0o644)
		})

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	require.NoError(t, err)
	assert.Equal(t, 1, d.FileCount)
	assert.Equal(t, 1, d.Skipped)
	assert.Equal(t, "Intro to X.zip", d.FileName)
	assert.FileExists(t, d.ArchivePath)
}

func TestDeliver_UntitledCourseNamedAfterCourseID(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip"), 0o644)
		})

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	require.NoError(t, err)
	assert.Equal(t, "course-1.zip", d.FileName)
}

func TestDeliver_ArchiveFailureCleansUpScratch(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.Wrap(errors.ErrArchiveCreate, "disk full"))

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrArchiveCreate)

	entries, readErr := os.ReadDir(filepath.Join(root, "school.example.com"))
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestFinalize_ConsumesRecordsAndRemoves(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip"), 0o644)
		})

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)
	require.NoError(t, err)

	// Exactly-once side effects, regardless of how often Finalize runs.
	m.links.EXPECT().MarkConsumed(gomock.Any(), link.Token).Return(nil).Times(1)
	m.ledger.EXPECT().RecordDownload(gomock.Any(), "domain-1", "user-1", "course-1").Return(nil).Times(1)

	require.NoError(t, d.Finalize(context.Background()))
	require.NoError(t, d.Finalize(context.Background()))

	_, statErr := os.Stat(d.ArchivePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFinalize_BookkeepingFailuresAreCollected(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip"), 0o644)
		})

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)
	require.NoError(t, err)

	m.links.EXPECT().MarkConsumed(gomock.Any(), link.Token).Return(assert.AnError)
	m.ledger.EXPECT().RecordDownload(gomock.Any(), "domain-1", "user-1", "course-1").Return(nil)

	err = d.Finalize(context.Background())
	assert.Error(t, err)

	// Scratch cleanup still happened.
	_, statErr := os.Stat(d.ArchivePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDiscard_RemovesScratchWithoutConsuming(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	link := validLink()
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip"), 0o644)
		})

	d, err := svc.Deliver(context.Background(), testSite(), link.Token)
	require.NoError(t, err)

	require.NoError(t, d.Discard())

	_, statErr := os.Stat(d.ArchivePath)
	assert.True(t, os.IsNotExist(statErr))

	// A later Finalize must not run the bookkeeping either.
	require.NoError(t, d.Finalize(context.Background()))
}

func TestDeliver_ConsumedLinkAllowedWhenNotEnforced(t *testing.T) {
	root := t.TempDir()
	svc, m := newService(t, root)
	svc.EnforceSingleUse = false
	link := validLink()
	link.Consumed = true
	m.links.EXPECT().GetByToken(gomock.Any(), link.Token).Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{}, nil)

	_, err := svc.Deliver(context.Background(), testSite(), link.Token)

	assert.ErrorIs(t, err, errors.ErrNoFiles)
}
