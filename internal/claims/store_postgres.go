package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

// PostgresStore persists claims in PostgreSQL via database/sql (lib/pq).
//
// Schema (see migrations/002_claims.sql):
//
//	CREATE TABLE claims (
//	    id           UUID PRIMARY KEY,
//	    business_id  UUID NOT NULL,
//	    owner_name   TEXT NOT NULL,
//	    contact      TEXT NOT NULL,
//	    approved     BOOLEAN NOT NULL DEFAULT FALSE,
//	    submitted_at TIMESTAMPTZ NOT NULL,
//	    approved_at  TIMESTAMPTZ
//	);
//
// business_id carries no foreign key on purpose: a claim is a soft reference
// that must survive deletion of the business it points at.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, c *Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (id, business_id, owner_name, contact, approved, submitted_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(c.ID), uuid.UUID(c.BusinessID), c.OwnerName, c.Contact, c.Approved, c.SubmittedAt, c.ApprovedAt)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.ClaimID) (*Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, owner_name, contact, approved, submitted_at, approved_at
		FROM claims WHERE id = $1
	`, uuid.UUID(id))
	return scanClaim(row.Scan)
}

func (s *PostgresStore) MarkApproved(ctx context.Context, id domain.ClaimID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE claims SET approved = TRUE, approved_at = $2 WHERE id = $1
	`, uuid.UUID(id), at)
	if err != nil {
		return fmt.Errorf("approve claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve claim result: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Claim, error) {
	return s.query(ctx, `
		SELECT id, business_id, owner_name, contact, approved, submitted_at, approved_at
		FROM claims ORDER BY submitted_at, id
	`)
}

func (s *PostgresStore) ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Claim, error) {
	return s.query(ctx, `
		SELECT id, business_id, owner_name, contact, approved, submitted_at, approved_at
		FROM claims WHERE business_id = $1 ORDER BY submitted_at, id
	`, uuid.UUID(businessID))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Claim, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c, err := scanClaim(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClaim(scan func(dest ...any) error) (*Claim, error) {
	var (
		c          Claim
		id         uuid.UUID
		businessID uuid.UUID
		approvedAt sql.NullTime
	)
	err := scan(&id, &businessID, &c.OwnerName, &c.Contact, &c.Approved, &c.SubmittedAt, &approvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	c.ID = domain.ClaimID(id)
	c.BusinessID = domain.BusinessID(businessID)
	if approvedAt.Valid {
		t := approvedAt.Time
		c.ApprovedAt = &t
	}
	return &c, nil
}
