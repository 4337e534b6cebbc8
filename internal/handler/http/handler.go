// Package http is the transport surface: a chi router over the service layer.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shortlink/internal/domain"
)

// Service interfaces are declared here, on the consumer side, so tests can
// substitute mocks without touching the service package.

// RegistryService manages short URL records.
type RegistryService interface {
	Create(ctx context.Context, originalURL, customCode string, expiresAt *time.Time) (*domain.URL, error)
	Lookup(ctx context.Context, shortCode string) (*domain.URL, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*domain.URL, error)
}

// RedirectService resolves a code and records the click.
type RedirectService interface {
	Redirect(ctx context.Context, shortCode string, meta domain.ClickMetadata) (string, error)
}

// StatsService computes summary statistics for a code.
type StatsService interface {
	Compute(ctx context.Context, shortCode string) (*domain.Stats, error)
}

// ClickService reads click history.
type ClickService interface {
	History(ctx context.Context, shortCode string) ([]*domain.Click, error)
}

// Handler holds the HTTP dependencies.
type Handler struct {
	registry   RegistryService
	redirector RedirectService
	stats      StatsService
	clicks     ClickService
	logger     *slog.Logger
	baseURL    string
}

// NewHandler wires the services into an HTTP handler.
func NewHandler(
	registry RegistryService,
	redirector RedirectService,
	stats StatsService,
	clicks ClickService,
	logger *slog.Logger,
	baseURL string,
) *Handler {
	return &Handler{
		registry:   registry,
		redirector: redirector,
		stats:      stats,
		clicks:     clicks,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// Routes mounts all endpoints. Middleware is applied by the caller so tests
// can exercise the bare routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/urls", func(r chi.Router) {
		r.Post("/", h.CreateURL)
		r.Get("/", h.ListURLs)
		r.Delete("/{id}", h.DeleteURL)
		r.Get("/{code}/stats", h.GetStats)
		r.Get("/{code}/clicks", h.GetClicks)
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/{code}", h.RedirectURL)

	return r
}

// DTOs. The API contract stays stable independently of the domain structs.

type CreateURLRequest struct {
	URL        string     `json:"url"`
	CustomCode string     `json:"custom_code,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type URLResponse struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	ClickCount  int64      `json:"click_count"`
}

type ClickResponse struct {
	ID        string    `json:"id"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress string    `json:"ip_address"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
}

type StatsResponse struct {
	ShortCode    string          `json:"short_code"`
	Stats        *domain.Stats   `json:"stats"`
	RecentClicks []ClickResponse `json:"recent_clicks"`
}

// recentClickLimit bounds how much history rides along on the stats response.
const recentClickLimit = 10

func (h *Handler) toURLResponse(url *domain.URL) URLResponse {
	return URLResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, url.ShortCode),
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
		ExpiresAt:   url.ExpiresAt,
		IsActive:    url.IsActive,
		ClickCount:  url.ClickCount,
	}
}

// CreateURL handles POST /api/v1/urls.
func (h *Handler) CreateURL(w http.ResponseWriter, r *http.Request) {
	var req CreateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	defer r.Body.Close()

	url, err := h.registry.Create(r.Context(), req.URL, req.CustomCode, req.ExpiresAt)
	if err != nil {
		h.logger.Warn("create rejected", "error", err)
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, h.toURLResponse(url), "short URL created")
}

// ListURLs handles GET /api/v1/urls.
func (h *Handler) ListURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("list failed", "error", err)
		respondDomainError(w, err)
		return
	}

	out := make([]URLResponse, 0, len(urls))
	for _, url := range urls {
		out = append(out, h.toURLResponse(url))
	}
	respondSuccess(w, http.StatusOK, out, "")
}

// DeleteURL handles DELETE /api/v1/urls/{id}.
func (h *Handler) DeleteURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.registry.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("delete failed", "id", id, "error", err)
		respondDomainError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "URL not found")
		return
	}
	respondSuccess(w, http.StatusOK, true, "short URL deleted")
}

// RedirectURL handles GET /{code}. The click is recorded before the 302 goes
// out; a click that cannot be recorded blocks the redirect.
func (h *Handler) RedirectURL(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	target, err := h.redirector.Redirect(r.Context(), code, domain.ClickMetadata{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		h.logger.Info("redirect blocked", "short_code", code, "error", err)
		respondDomainError(w, err)
		return
	}

	// 302, not 301: targets can expire or be deleted.
	http.Redirect(w, r, target, http.StatusFound)
}

// GetStats handles GET /api/v1/urls/{code}/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	stats, err := h.stats.Compute(r.Context(), code)
	if err != nil {
		h.logger.Warn("stats failed", "short_code", code, "error", err)
		respondDomainError(w, err)
		return
	}

	history, err := h.clicks.History(r.Context(), code)
	if err != nil {
		h.logger.Error("history failed", "short_code", code, "error", err)
		respondDomainError(w, err)
		return
	}
	if len(history) > recentClickLimit {
		history = history[:recentClickLimit]
	}

	respondSuccess(w, http.StatusOK, StatsResponse{
		ShortCode:    code,
		Stats:        stats,
		RecentClicks: toClickResponses(history),
	}, "")
}

// GetClicks handles GET /api/v1/urls/{code}/clicks.
func (h *Handler) GetClicks(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	history, err := h.clicks.History(r.Context(), code)
	if err != nil {
		h.logger.Error("history failed", "short_code", code, "error", err)
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, toClickResponses(history), "")
}

func toClickResponses(history []*domain.Click) []ClickResponse {
	out := make([]ClickResponse, 0, len(history))
	for _, click := range history {
		out = append(out, ClickResponse{
			ID:        click.ID,
			ClickedAt: click.ClickedAt,
			IPAddress: click.IPAddress,
			Referrer:  click.Referrer,
			Country:   click.Country,
			City:      click.City,
			Device:    click.Device,
			Browser:   click.Browser,
		})
	}
	return out
}

// HealthCheck handles GET /healthz.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
