package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sainath9392/tinylink/internal/database"
	"github.com/sainath9392/tinylink/internal/models"
)

const linkColumns = `id, short_code, original_url, owner_id, clicks, last_clicked_at, created_at`

type linkRecord struct {
	ID            int64        `db:"id"`
	ShortCode     string       `db:"short_code"`
	OriginalURL   string       `db:"original_url"`
	OwnerID       string       `db:"owner_id"`
	Clicks        int64        `db:"clicks"`
	LastClickedAt sql.NullTime `db:"last_clicked_at"`
	CreatedAt     time.Time    `db:"created_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	link := &models.Link{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		OwnerID:     r.OwnerID,
		Clicks:      r.Clicks,
		CreatedAt:   r.CreatedAt,
	}

	if r.LastClickedAt.Valid {
		t := r.LastClickedAt.Time
		link.LastClickedAt = &t
	}

	return link
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, shortCode, originalURL, ownerID string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(short_code, original_url, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + linkColumns

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL, ownerID)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByShortCode"

	rec := new(linkRecord)
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// ListByOwner returns the owner's links, newest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	const op = "database.postgres.LinkRepository.ListByOwner"

	var recs []linkRecord
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &recs, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]*models.Link, 0, len(recs))
	for i := range recs {
		links = append(links, recs[i].ToLink())
	}

	return links, nil
}

func (r *LinkRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	return checkRowsAffected(op, res)
}

// RecordClick increments the click counter in a single statement so that
// concurrent clicks on the same link are never lost. last_clicked_at only
// moves forward when clicks are applied out of order.
func (r *LinkRepository) RecordClick(ctx context.Context, shortCode string, clickedAt time.Time) error {
	const op = "database.postgres.LinkRepository.RecordClick"

	query := `UPDATE links
		SET clicks = clicks + 1, last_clicked_at = GREATEST(last_clicked_at, $2::timestamptz)
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode, clickedAt)
	if err != nil {
		return fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	return checkRowsAffected(op, res)
}

func checkRowsAffected(op string, res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}
