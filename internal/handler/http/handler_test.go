package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shortlink/internal/domain"
)

type mockRegistry struct{ mock.Mock }

func (m *mockRegistry) Create(ctx context.Context, originalURL, customCode string, expiresAt *time.Time) (*domain.URL, error) {
	args := m.Called(ctx, originalURL, customCode, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URL), args.Error(1)
}

func (m *mockRegistry) Lookup(ctx context.Context, shortCode string) (*domain.URL, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URL), args.Error(1)
}

func (m *mockRegistry) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRegistry) List(ctx context.Context) ([]*domain.URL, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.URL), args.Error(1)
}

type mockRedirector struct{ mock.Mock }

func (m *mockRedirector) Redirect(ctx context.Context, shortCode string, meta domain.ClickMetadata) (string, error) {
	args := m.Called(ctx, shortCode, meta)
	return args.String(0), args.Error(1)
}

type mockStats struct{ mock.Mock }

func (m *mockStats) Compute(ctx context.Context, shortCode string) (*domain.Stats, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

type mockClicks struct{ mock.Mock }

func (m *mockClicks) History(ctx context.Context, shortCode string) ([]*domain.Click, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Click), args.Error(1)
}

type handlerMocks struct {
	registry   *mockRegistry
	redirector *mockRedirector
	stats      *mockStats
	clicks     *mockClicks
}

func newTestHandler(t *testing.T) (*Handler, *handlerMocks) {
	t.Helper()
	m := &handlerMocks{
		registry:   new(mockRegistry),
		redirector: new(mockRedirector),
		stats:      new(mockStats),
		clicks:     new(mockClicks),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(m.registry, m.redirector, m.stats, m.clicks, log, "http://localhost:8080")
	return h, m
}

func sampleURL() *domain.URL {
	return &domain.URL{
		ID:          "11111111-1111-1111-1111-111111111111",
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/page",
		CreatedAt:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		IsActive:    true,
		ClickCount:  3,
	}
}

func TestCreateURL_Success(t *testing.T) {
	h, m := newTestHandler(t)
	m.registry.On("Create", mock.Anything, "https://example.com/page", "", (*time.Time)(nil)).
		Return(sampleURL(), nil)

	body := bytes.NewBufferString(`{"url":"https://example.com/page"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/urls", body)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data URLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.Data.ShortCode)
	assert.Equal(t, "http://localhost:8080/abc123", resp.Data.ShortURL)
	assert.Equal(t, "https://example.com/page", resp.Data.OriginalURL)
	m.registry.AssertExpectations(t)
}

func TestCreateURL_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/urls", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateURL_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid url", domain.ErrInvalidURL, http.StatusBadRequest},
		{"invalid custom code", domain.ErrInvalidShortCode, http.StatusBadRequest},
		{"invalid expiry", domain.ErrInvalidExpiry, http.StatusBadRequest},
		{"duplicate code", domain.ErrDuplicateShortCode, http.StatusConflict},
		{"code space exhausted", domain.ErrCodeSpaceExhausted, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler(t)
			m.registry.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tt.err)

			body := bytes.NewBufferString(`{"url":"https://example.com"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/urls", body)
			rec := httptest.NewRecorder()

			h.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestListURLs(t *testing.T) {
	h, m := newTestHandler(t)
	m.registry.On("List", mock.Anything).Return([]*domain.URL{sampleURL()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []URLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "abc123", resp.Data[0].ShortCode)
}

func TestDeleteURL(t *testing.T) {
	h, m := newTestHandler(t)
	m.registry.On("Delete", mock.Anything, "some-id").Return(true, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/urls/some-id", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.registry.AssertExpectations(t)
}

func TestDeleteURL_NotFound(t *testing.T) {
	h, m := newTestHandler(t)
	m.registry.On("Delete", mock.Anything, "missing").Return(false, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/urls/missing", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirectURL_Found(t *testing.T) {
	h, m := newTestHandler(t)
	m.redirector.On("Redirect", mock.Anything, "abc123", mock.Anything).
		Return("https://example.com/page", nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/page", rec.Header().Get("Location"))
}

func TestRedirectURL_PassesMetadata(t *testing.T) {
	h, m := newTestHandler(t)
	m.redirector.On("Redirect", mock.Anything, "abc123", domain.ClickMetadata{
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
		Referrer:  "https://referrer.example",
	}).Return("https://example.com/page", nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Referer", "https://referrer.example")
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	m.redirector.AssertExpectations(t)
}

func TestRedirectURL_Blocked(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"expired", domain.ErrExpired, http.StatusGone},
		{"inactive", domain.ErrInactive, http.StatusGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler(t)
			m.redirector.On("Redirect", mock.Anything, "abc123", mock.Anything).
				Return("", tt.err)

			req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
			rec := httptest.NewRecorder()

			h.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetStats(t *testing.T) {
	h, m := newTestHandler(t)
	m.stats.On("Compute", mock.Anything, "abc123").Return(&domain.Stats{
		TotalClicks:         10,
		UniqueClicks:        4,
		AverageClicksPerDay: 2.5,
		TopReferrers:        []string{"https://a.example"},
		TopCountries:        []string{"Germany"},
	}, nil)
	m.clicks.On("History", mock.Anything, "abc123").Return([]*domain.Click{
		{ID: "click-1", ShortCode: "abc123", Referrer: domain.ReferrerDirect},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls/abc123/stats", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.Data.ShortCode)
	assert.Equal(t, int64(10), resp.Data.Stats.TotalClicks)
	assert.Equal(t, []string{"Germany"}, resp.Data.Stats.TopCountries)
	require.Len(t, resp.Data.RecentClicks, 1)
	assert.Equal(t, "click-1", resp.Data.RecentClicks[0].ID)
}

func TestGetStats_NotFound(t *testing.T) {
	h, m := newTestHandler(t)
	m.stats.On("Compute", mock.Anything, "nope00").Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls/nope00/stats", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetClicks(t *testing.T) {
	h, m := newTestHandler(t)
	m.clicks.On("History", mock.Anything, "abc123").Return([]*domain.Click{
		{
			ID:        "click-1",
			ShortCode: "abc123",
			ClickedAt: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
			IPAddress: "203.0.113.9",
			Referrer:  domain.ReferrerDirect,
			Country:   domain.Unknown,
			City:      domain.Unknown,
			Device:    "Desktop",
			Browser:   "Firefox",
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls/abc123/clicks", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []ClickResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, domain.ReferrerDirect, resp.Data[0].Referrer)
	assert.Equal(t, "Firefox", resp.Data[0].Browser)
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{"forwarded single", "203.0.113.9", "", "10.0.0.1:1234", "203.0.113.9"},
		{"forwarded chain takes first", "203.0.113.9, 10.0.0.2", "", "10.0.0.1:1234", "203.0.113.9"},
		{"real ip fallback", "", "198.51.100.7", "10.0.0.1:1234", "198.51.100.7"},
		{"remote addr fallback", "", "", "10.0.0.1:1234", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
