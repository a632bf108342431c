package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/schoolyard/internal/server"
	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/fulfillment"
	flmocks "github.com/glorpus-work/schoolyard/pkg/fulfillment/mocks"
	"github.com/glorpus-work/schoolyard/pkg/model"
	"github.com/glorpus-work/schoolyard/pkg/scratch"
	storemocks "github.com/glorpus-work/schoolyard/pkg/store/mocks"
	"github.com/glorpus-work/schoolyard/pkg/widget"
)

type stubUserResolver struct {
	user *model.User
}

func (s *stubUserResolver) ResolveUser(_ *http.Request, _ string) (*model.User, error) {
	return s.user, nil
}

type routerMocks struct {
	sites    *storemocks.MockSiteStore
	links    *flmocks.MockLinkStore
	courses  *flmocks.MockCourseStore
	lessons  *flmocks.MockLessonStore
	media    *flmocks.MockMediaResolver
	fetcher  *flmocks.MockMediaFetcher
	archiver *flmocks.MockArchiver
	ledger   *flmocks.MockLedger
}

func newTestRouter(t *testing.T, user *model.User) (http.Handler, routerMocks) {
	ctrl := gomock.NewController(t)
	m := routerMocks{
		sites:    storemocks.NewMockSiteStore(ctrl),
		links:    flmocks.NewMockLinkStore(ctrl),
		courses:  flmocks.NewMockCourseStore(ctrl),
		lessons:  flmocks.NewMockLessonStore(ctrl),
		media:    flmocks.NewMockMediaResolver(ctrl),
		fetcher:  flmocks.NewMockMediaFetcher(ctrl),
		archiver: flmocks.NewMockArchiver(ctrl),
		ledger:   flmocks.NewMockLedger(ctrl),
	}

	svc := &fulfillment.Service{
		Links:            m.links,
		Courses:          m.courses,
		Lessons:          m.lessons,
		Media:            m.media,
		Fetcher:          m.fetcher,
		Archiver:         m.archiver,
		Ledger:           m.ledger,
		Scratch:          scratch.NewManager(t.TempDir()),
		EnforceSingleUse: true,
	}

	router := server.NewRouter(server.Deps{
		Sites:           m.sites,
		Fulfillment:     svc,
		Widgets:         widget.NewRegistry(),
		UserResolver:    &stubUserResolver{user: user},
		PlatformVersion: "1.0.0",
	})
	return router, m
}

func expectSite(m routerMocks) {
	m.sites.EXPECT().GetByDomain(gomock.Any(), "school.example.com").
		Return(&model.Site{ID: "domain-1", Name: "school.example.com"}, nil).AnyTimes()
}

func doRequest(router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Host = "school.example.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestDownload_StreamsArchiveAndFinalizes(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)

	link := &model.DownloadLink{
		Token:     "token-1",
		CourseID:  "course-1",
		UserID:    "user-1",
		DomainID:  "domain-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.links.EXPECT().GetByToken(gomock.Any(), "token-1").Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip-bytes"), 0o644)
		})
	m.links.EXPECT().MarkConsumed(gomock.Any(), "token-1").Return(nil)
	m.ledger.EXPECT().RecordDownload(gomock.Any(), "domain-1", "user-1", "course-1").Return(nil)

	rec := doRequest(router, http.MethodGet, "/api/download/token-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Intro to X.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "zip-bytes", rec.Body.String())
}

func TestDownload_CrossDomainToken(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)

	// Issued for another site; on this host it must look like an unknown
	// token and stay unconsumed.
	link := &model.DownloadLink{
		Token:     "token-1",
		CourseID:  "course-1",
		UserID:    "user-1",
		DomainID:  "domain-2",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.links.EXPECT().GetByToken(gomock.Any(), "token-1").Return(link, nil)

	rec := doRequest(router, http.MethodGet, "/api/download/token-1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload_BookkeepingSurvivesClientCancel(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)

	link := &model.DownloadLink{
		Token:     "token-1",
		CourseID:  "course-1",
		UserID:    "user-1",
		DomainID:  "domain-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.links.EXPECT().GetByToken(gomock.Any(), "token-1").Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1", MediaID: "m1"}}, nil)
	m.media.EXPECT().GetMedia(gomock.Any(), "m1").
		Return(&model.Media{MediaID: "m1", OriginalFileName: "a.pdf", File: "https://cdn.example.com/a.pdf"}, nil)
	m.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	m.archiver.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, archivePath string) (string, error) {
			return archivePath, os.WriteFile(archivePath, []byte("zip-bytes"), 0o644)
		})

	// The link is still consumed and the purchase still recorded after the
	// client goes away mid-stream.
	m.links.EXPECT().MarkConsumed(gomock.Any(), "token-1").DoAndReturn(
		func(ctx context.Context, _ string) error {
			assert.NoError(t, ctx.Err())
			return nil
		})
	m.ledger.EXPECT().RecordDownload(gomock.Any(), "domain-1", "user-1", "course-1").DoAndReturn(
		func(ctx context.Context, _, _, _ string) error {
			assert.NoError(t, ctx.Err())
			return nil
		})

	req := httptest.NewRequest(http.MethodGet, "/api/download/token-1", nil)
	req.Host = "school.example.com"
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))
}

func TestDownload_UnknownToken(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)
	m.links.EXPECT().GetByToken(gomock.Any(), "nope").Return(nil, errors.ErrLinkNotFound)

	rec := doRequest(router, http.MethodGet, "/api/download/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload_ExpiredToken(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)
	link := &model.DownloadLink{
		Token:     "token-1",
		CourseID:  "course-1",
		DomainID:  "domain-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	m.links.EXPECT().GetByToken(gomock.Any(), "token-1").Return(link, nil)
	m.links.EXPECT().Delete(gomock.Any(), "token-1").Return(nil)

	rec := doRequest(router, http.MethodGet, "/api/download/token-1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload_NoFiles(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)
	link := &model.DownloadLink{
		Token:     "token-1",
		CourseID:  "course-1",
		DomainID:  "domain-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.links.EXPECT().GetByToken(gomock.Any(), "token-1").Return(link, nil)
	m.courses.EXPECT().GetPublished(gomock.Any(), "domain-1", "course-1").
		Return(&model.Course{CourseID: "course-1", Title: "Intro to X", Published: true}, nil)
	m.lessons.EXPECT().ListByCourse(gomock.Any(), "domain-1", "course-1").
		Return([]model.Lesson{{LessonID: "l1"}}, nil)

	rec := doRequest(router, http.MethodGet, "/api/download/token-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no files available for download")
}

func TestDownload_UnknownHost(t *testing.T) {
	router, m := newTestRouter(t, nil)
	m.sites.EXPECT().GetByDomain(gomock.Any(), "other.example.com").
		Return(nil, errors.ErrSiteNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/download/token-1", nil)
	req.Host = "other.example.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWidgets_List(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)

	rec := doRequest(router, http.MethodGet, "/api/widgets", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var widgets []widget.Widget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &widgets))
	names := make([]string, 0, len(widgets))
	for _, w := range widgets {
		names = append(names, w.Name)
	}
	assert.Contains(t, names, "hero")
}

func TestInitiatePayment_RequiresAuth(t *testing.T) {
	router, m := newTestRouter(t, nil)
	expectSite(m)

	rec := doRequest(router, http.MethodPost, "/api/payment/initiate", `{"courseid":"course-1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMediaList_RequiresPermission(t *testing.T) {
	router, m := newTestRouter(t, &model.User{UserID: "user-1", DomainID: "domain-1"})
	expectSite(m)

	rec := doRequest(router, http.MethodGet, "/api/media/", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSettings_Get(t *testing.T) {
	router, m := newTestRouter(t, nil)
	m.sites.EXPECT().GetByDomain(gomock.Any(), "school.example.com").
		Return(&model.Site{
			ID:   "domain-1",
			Name: "school.example.com",
			Settings: model.SiteSettings{
				Title:           "Schoolyard",
				CurrencyISOCode: "usd",
			},
		}, nil)

	rec := doRequest(router, http.MethodGet, "/api/settings", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var settings model.SiteSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, "Schoolyard", settings.Title)
}

func TestSettings_UpdateRequiresPermission(t *testing.T) {
	router, m := newTestRouter(t, &model.User{UserID: "user-1", DomainID: "domain-1"})
	expectSite(m)

	rec := doRequest(router, http.MethodPut, "/api/settings", `{"title":"New"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
