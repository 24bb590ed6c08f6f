package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

// PostgresStore persists businesses in PostgreSQL.
//
// Schema (see migrations/001_businesses.sql):
//
//	CREATE TABLE businesses (
//	    id            UUID PRIMARY KEY,
//	    bi_id         TEXT NOT NULL UNIQUE,
//	    name          TEXT NOT NULL,
//	    region        TEXT NOT NULL DEFAULT '',
//	    sector        TEXT NOT NULL DEFAULT '',
//	    formality     TEXT NOT NULL DEFAULT '',
//	    digital_score INT,
//	    premium       BOOLEAN NOT NULL DEFAULT FALSE,
//	    verified      BOOLEAN NOT NULL DEFAULT FALSE,
//	    claimed       BOOLEAN NOT NULL DEFAULT FALSE,
//	    deleted       BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
//
// Deletion is a soft flag so bi_id uniqueness survives the business record:
// an issued BI ID must never be reusable.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const businessColumns = `id, bi_id, name, region, sector, formality, digital_score,
	premium, verified, claimed, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, b *Business) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO businesses (`+businessColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uuid.UUID(b.ID), b.BIID.String(), b.Name, b.Region, b.Sector, b.Formality.String(),
		b.DigitalScore, b.Premium, b.Verified, b.Claimed, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.BusinessID) (*Business, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE id = $1 AND NOT deleted
	`, uuid.UUID(id))
	return scanBusiness(row)
}

func (s *PostgresStore) GetByBIID(ctx context.Context, biID domain.BIID) (*Business, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE bi_id = $1 AND NOT deleted
	`, biID.String())
	return scanBusiness(row)
}

// Update deliberately leaves claimed and verified out of the SET list: those
// flags are owned by MarkClaimed, and writing them from a read taken before a
// concurrent approval would silently revert the transfer. The stored values
// are read back into b instead.
func (s *PostgresStore) Update(ctx context.Context, b *Business) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE businesses
		SET name = $2, region = $3, sector = $4, formality = $5, digital_score = $6,
		    premium = $7, updated_at = $8
		WHERE id = $1 AND NOT deleted
		RETURNING claimed, verified
	`, uuid.UUID(b.ID), b.Name, b.Region, b.Sector, b.Formality.String(), b.DigitalScore,
		b.Premium, b.UpdatedAt).Scan(&b.Claimed, &b.Verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.BusinessID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE businesses SET deleted = TRUE WHERE id = $1 AND NOT deleted
	`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Business, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE NOT deleted ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var out []*Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkClaimed is the compare-and-swap behind claim approval: the WHERE clause
// only matches an unclaimed business, so of two racing approvals exactly one
// sees a row.
func (s *PostgresStore) MarkClaimed(ctx context.Context, id domain.BusinessID) (*Business, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE businesses
		SET claimed = TRUE, verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT deleted AND NOT claimed
		RETURNING `+businessColumns+`
	`, uuid.UUID(id))
	b, err := scanBusiness(row)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	// No row matched: distinguish "unknown business" from "lost the race".
	var claimed bool
	lookupErr := s.pool.QueryRow(ctx,
		`SELECT claimed FROM businesses WHERE id = $1 AND NOT deleted`,
		uuid.UUID(id)).Scan(&claimed)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if lookupErr != nil {
		return nil, fmt.Errorf("inspect claim state: %w", lookupErr)
	}
	if claimed {
		return nil, sentinel.ErrAlreadyClaimed
	}
	return nil, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*Business, error) {
	var (
		b         Business
		id        uuid.UUID
		biID      string
		formality string
	)
	err := row.Scan(&id, &biID, &b.Name, &b.Region, &b.Sector, &formality, &b.DigitalScore,
		&b.Premium, &b.Verified, &b.Claimed, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan business: %w", err)
	}
	b.ID = domain.BusinessID(id)
	b.BIID = domain.BIID(biID)
	b.Formality = domain.Formality(formality)
	return &b, nil
}
