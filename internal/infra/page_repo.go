package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pageIDLength  = 10
	maxIDAttempts = 5
)

const pageColumns = `id, user_id, audio, image, text, title, created_at`

type PostgresPageRepo struct {
	pool  *pgxpool.Pool
	newID func() string
}

func NewPostgresPageRepo(pool *pgxpool.Pool) *PostgresPageRepo {
	return &PostgresPageRepo{pool: pool, newID: NewPageID}
}

var _ ports.PageRepository = (*PostgresPageRepo)(nil)

// NewPageID returns 10 lowercase hex chars taken from a random UUID.
func NewPageID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:pageIDLength]
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
}

func scanPage(row pgx.Row) (*models.Page, error) {
	var p models.Page
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Audio,
		&p.Image,
		&p.Text,
		&p.Title,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPageRepo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id         TEXT PRIMARY KEY,
			user_id    BIGINT NOT NULL,
			audio      TEXT,
			image      TEXT,
			text       TEXT,
			title      TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS pages_user_id_created_at_idx ON pages (user_id, created_at)`,
	}
	for _, q := range stmts {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return unavailable("ensure schema", err)
		}
	}
	return nil
}

// FindOrCreateByOwner serializes callers for the same owner with a
// transaction-scoped advisory lock, so two concurrent first contacts
// still end up with a single page.
func (r *PostgresPageRepo) FindOrCreateByOwner(ctx context.Context, ownerID int64) (*models.Page, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerID); err != nil {
		return nil, unavailable("lock owner", err)
	}

	// earliest page wins when an owner has several
	page, err := scanPage(tx.QueryRow(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, ownerID))
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return nil, unavailable("commit", err)
		}
		return page, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, unavailable("find page by owner", err)
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		page, err = scanPage(tx.QueryRow(ctx, `
			INSERT INTO pages (id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
			RETURNING `+pageColumns,
			r.newID(), ownerID,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			continue // id collision
		}
		if err != nil {
			return nil, unavailable("insert page", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, unavailable("commit", err)
		}
		return page, nil
	}
	return nil, unavailable("insert page", errors.New("could not allocate a unique id"))
}

func (r *PostgresPageRepo) Get(ctx context.Context, id string) (*models.Page, error) {
	page, err := scanPage(r.pool.QueryRow(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPageNotFound
	}
	if err != nil {
		return nil, unavailable("get page", err)
	}
	return page, nil
}

func (r *PostgresPageRepo) SetField(ctx context.Context, id string, field models.Field, value *string) error {
	col, err := field.Column()
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE pages SET %s = $1 WHERE id = $2`, col),
		value, id,
	)
	if err != nil {
		return unavailable("set "+col, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPageNotFound
	}
	return nil
}

func (r *PostgresPageRepo) ClearContent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pages
		SET audio = NULL, image = NULL, text = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return unavailable("clear page", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPageNotFound
	}
	return nil
}
