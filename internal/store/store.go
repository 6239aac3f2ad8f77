// Package store persists an audit row per submission attempt. The audit trail
// is write-only from the intake flow's point of view; reads exist for
// operational queries.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

// AuditRecord is one row of the submission audit trail.
type AuditRecord struct {
	ID            int64
	SessionID     string
	ApplicationNo string
	Outcome       string // accepted | rejected | error
	Message       string
	Payload       models.AggregatedRecord
	CreatedAt     time.Time
}

type AuditStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAuditStore(db *sql.DB, log logger.Logger) *AuditStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuditStore{db: db, logger: log}
}

const insertAuditQuery = `
	INSERT INTO submission_audit (session_id, application_no, outcome, message, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

// RecordAttempt inserts one audit row. The aggregated payload is stored as
// JSON alongside the outcome so rejected submissions can be replayed.
func (s *AuditStore) RecordAttempt(ctx context.Context, rec *AuditRecord) (int64, error) {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode audit payload: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err = s.db.QueryRowContext(ctx, insertAuditQuery,
		rec.SessionID, rec.ApplicationNo, rec.Outcome, rec.Message, payload, createdAt,
	).Scan(&id)
	if err != nil {
		s.logger.Error("Failed to insert submission audit row", map[string]interface{}{
			"sessionId": rec.SessionID,
			"outcome":   rec.Outcome,
			"error":     err.Error(),
		})
		return 0, errors.NewDatabaseInsertFailedError(err)
	}

	return id, nil
}

const selectAttemptsQuery = `
	SELECT id, session_id, application_no, outcome, message, payload, created_at
	FROM submission_audit
	WHERE session_id = $1
	ORDER BY created_at`

// AttemptsBySession returns every audit row for one session in order.
func (s *AuditStore) AttemptsBySession(ctx context.Context, sessionID string) ([]*AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectAttemptsQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission audit: %w", err)
	}
	defer rows.Close()

	var out []*AuditRecord
	for rows.Next() {
		rec := &AuditRecord{}
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ApplicationNo, &rec.Outcome, &rec.Message, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec.Payload); err != nil {
				s.logger.Warn("Corrupt audit payload, returning row without it", map[string]interface{}{
					"id":    rec.ID,
					"error": err.Error(),
				})
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
