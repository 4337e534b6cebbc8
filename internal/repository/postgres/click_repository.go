package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortlink/internal/domain"
	"shortlink/internal/repository"
)

type clickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository returns the PostgreSQL click repository.
func NewClickRepository(db *pgxpool.Pool) repository.ClickRepository {
	return &clickRepository{db: db}
}

// Record runs the counter increment and the event insert in one transaction.
// The UPDATE doubles as the existence check: zero rows affected means the
// short code has no owning record.
func (r *clickRepository) Record(ctx context.Context, click *domain.Click) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin click transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1`,
		click.ShortCode,
	)
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO url_clicks (id, short_code, clicked_at, ip_address, user_agent, referrer, country, city, device, browser)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		click.ID,
		click.ShortCode,
		click.ClickedAt,
		click.IPAddress,
		click.UserAgent,
		click.Referrer,
		click.Country,
		click.City,
		click.Device,
		click.Browser,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit click transaction: %w", err)
	}
	return nil
}

func (r *clickRepository) History(ctx context.Context, shortCode string) ([]*domain.Click, error) {
	query := `
		SELECT id, short_code, clicked_at, ip_address, user_agent, referrer, country, city, device, browser
		FROM url_clicks
		WHERE short_code = $1
		ORDER BY clicked_at DESC
	`

	rows, err := r.db.Query(ctx, query, shortCode)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()

	clicks := make([]*domain.Click, 0)
	for rows.Next() {
		click := &domain.Click{}
		err := rows.Scan(
			&click.ID,
			&click.ShortCode,
			&click.ClickedAt,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referrer,
			&click.Country,
			&click.City,
			&click.Device,
			&click.Browser,
		)
		if err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, click)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clicks: %w", err)
	}
	return clicks, nil
}
