package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bizintel/pkg/domain"
)

// PostgresEventStore persists change events via database/sql (lib/pq).
//
// Schema (see migrations/003_change_events.sql):
//
//	CREATE TABLE change_events (
//	    id            UUID PRIMARY KEY,
//	    business_id   UUID NOT NULL,
//	    business_name TEXT NOT NULL,
//	    change_type   TEXT NOT NULL,
//	    old_value     TEXT NOT NULL,
//	    new_value     TEXT NOT NULL,
//	    significance  INT NOT NULL,
//	    severity      TEXT NOT NULL,
//	    new_business  BOOLEAN NOT NULL DEFAULT FALSE,
//	    detected_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX change_events_detected_at_idx ON change_events (detected_at DESC);
//
// business_id carries no foreign key: events outlive the businesses they
// describe.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

const eventColumns = `id, business_id, business_name, change_type, old_value, new_value, significance, severity, new_business, detected_at`

func (s *PostgresEventStore) Save(ctx context.Context, e *ChangeEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO change_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.UUID(e.ID), uuid.UUID(e.BusinessID), e.BusinessName, string(e.ChangeType),
		e.OldValue, e.NewValue, e.Significance, string(e.Severity), e.NewBusiness, e.DetectedAt)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) ListRecent(ctx context.Context, limit int) ([]*ChangeEvent, error) {
	return s.query(ctx, `
		SELECT `+eventColumns+` FROM change_events
		ORDER BY detected_at DESC, id LIMIT $1
	`, limit)
}

func (s *PostgresEventStore) ListSince(ctx context.Context, since time.Time) ([]*ChangeEvent, error) {
	return s.query(ctx, `
		SELECT `+eventColumns+` FROM change_events
		WHERE detected_at >= $1 ORDER BY detected_at DESC, id
	`, since)
}

func (s *PostgresEventStore) query(ctx context.Context, q string, args ...any) ([]*ChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list change events: %w", err)
	}
	defer rows.Close()

	var out []*ChangeEvent
	for rows.Next() {
		var (
			e          ChangeEvent
			id         uuid.UUID
			businessID uuid.UUID
			changeType string
			severity   string
		)
		if err := rows.Scan(&id, &businessID, &e.BusinessName, &changeType, &e.OldValue,
			&e.NewValue, &e.Significance, &severity, &e.NewBusiness, &e.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		e.ID = domain.ChangeEventID(id)
		e.BusinessID = domain.BusinessID(businessID)
		e.ChangeType = domain.ChangeType(changeType)
		e.Severity = domain.Severity(severity)
		out = append(out, &e)
	}
	return out, rows.Err()
}
