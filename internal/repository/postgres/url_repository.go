// Package postgres implements the repository contracts on pgx. Short-code
// uniqueness rides on the unique index; the click record runs in a
// transaction so the counter and the event commit as one unit.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shortlink/internal/domain"
	"shortlink/internal/repository"
)

// pgUniqueViolation is the SQLSTATE for a unique-constraint failure.
const pgUniqueViolation = "23505"

type urlRepository struct {
	db *pgxpool.Pool
}

// NewURLRepository returns the PostgreSQL URL repository.
func NewURLRepository(db *pgxpool.Pool) repository.URLRepository {
	return &urlRepository{db: db}
}

func (r *urlRepository) Create(ctx context.Context, url *domain.URL) error {
	query := `
		INSERT INTO urls (id, short_code, original_url, created_at, expires_at, is_active, click_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		url.ID,
		url.ShortCode,
		url.OriginalURL,
		url.CreatedAt,
		url.ExpiresAt,
		url.IsActive,
		url.ClickCount,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateShortCode
		}
		return fmt.Errorf("insert url: %w", err)
	}
	return nil
}

func (r *urlRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	query := `
		SELECT id, short_code, original_url, created_at, expires_at, is_active, click_count
		FROM urls
		WHERE short_code = $1
	`
	return r.scanOne(ctx, query, shortCode)
}

func (r *urlRepository) GetByID(ctx context.Context, id string) (*domain.URL, error) {
	query := `
		SELECT id, short_code, original_url, created_at, expires_at, is_active, click_count
		FROM urls
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *urlRepository) scanOne(ctx context.Context, query string, arg any) (*domain.URL, error) {
	url := &domain.URL{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.CreatedAt,
		&url.ExpiresAt,
		&url.IsActive,
		&url.ClickCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select url: %w", err)
	}
	return url, nil
}

func (r *urlRepository) Delete(ctx context.Context, id string) error {
	// Hard delete; url_clicks rows are left in place.
	result, err := r.db.Exec(ctx, `DELETE FROM urls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete url: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *urlRepository) List(ctx context.Context) ([]*domain.URL, error) {
	query := `
		SELECT id, short_code, original_url, created_at, expires_at, is_active, click_count
		FROM urls
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	var urls []*domain.URL
	for rows.Next() {
		url := &domain.URL{}
		err := rows.Scan(
			&url.ID,
			&url.ShortCode,
			&url.OriginalURL,
			&url.CreatedAt,
			&url.ExpiresAt,
			&url.IsActive,
			&url.ClickCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate urls: %w", err)
	}
	return urls, nil
}
