package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/glorpus-work/schoolyard/pkg/auth"
	pkgerrors "github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

// RecordsPerPage is the page size used for media listings.
const RecordsPerPage = 10

// Service is an HTTP client for the external media service. All lesson
// files live there; this application only stores media ids.
type Service struct {
	endpoint  string
	client    *http.Client
	authn     auth.Authenticator
	userAgent string
}

// NewService creates a media service client for the given endpoint.
// authn may be nil when the media service does not require authentication.
func NewService(endpoint string, timeout time.Duration, authn auth.Authenticator) *Service {
	return &Service{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
		authn:     authn,
		userAgent: "schoolyard/1.0",
	}
}

// Page is one page of a media listing.
type Page struct {
	Media []model.Media `json:"media"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
}

// GetMedia fetches the media reference with the given id.
func (s *Service) GetMedia(ctx context.Context, mediaID string) (*model.Media, error) {
	if mediaID == "" {
		return nil, pkgerrors.ErrMediaIDEmpty
	}
	var out model.Media
	if err := s.doJSON(ctx, http.MethodGet, "media/"+url.PathEscape(mediaID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a page of media belonging to the given group (site name).
// access filters by "public" or "private"; any other value returns both.
func (s *Service) List(ctx context.Context, group string, page int, access string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("group", group)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(RecordsPerPage))
	if access == "public" || access == "private" {
		query.Set("access", access)
	}

	var out Page
	if err := s.doJSON(ctx, http.MethodGet, "media", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the media with the given id from the media service.
func (s *Service) Delete(ctx context.Context, mediaID string) error {
	if mediaID == "" {
		return pkgerrors.ErrMediaIDEmpty
	}
	return s.doJSON(ctx, http.MethodDelete, "media/"+url.PathEscape(mediaID), nil, nil)
}

// PresignedUploadURL requests a presigned upload URL scoped to the given
// group (site name).
func (s *Service) PresignedUploadURL(ctx context.Context, group string) (string, error) {
	query := url.Values{}
	query.Set("group", group)

	var out struct {
		URL string `json:"url"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "media/presigned", query, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (s *Service) doJSON(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	reqURL, err := url.JoinPath(s.endpoint, path)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build media service URL")
	}
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	if s.authn != nil {
		if err := s.authn.Apply(req); err != nil {
			return pkgerrors.Wrap(err, "failed to apply authentication")
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrMediaService, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrMediaService)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(err, "failed to decode media service response")
	}
	return nil
}
