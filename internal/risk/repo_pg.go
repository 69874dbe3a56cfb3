package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// assessmentRepoPG stores each composite assessment as a jsonb document
// alongside the columns the history and summary queries filter on.
type assessmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssessmentRepoPG(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepoPG{pool: pool}
}

// EnsureSchema creates the backing table. Safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS risk_assessment (
			id               UUID PRIMARY KEY,
			user_id          UUID NOT NULL,
			assessed_at      TIMESTAMPTZ NOT NULL,
			composite_score  DOUBLE PRECISION NOT NULL,
			composite_level  TEXT NOT NULL,
			escalation_level TEXT NOT NULL,
			payload          JSONB NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS risk_assessment_user_time_idx
			ON risk_assessment (user_id, assessed_at);`)
	if err != nil {
		return fmt.Errorf("ensure risk_assessment schema: %w", err)
	}
	return nil
}

func (r *assessmentRepoPG) Create(ctx context.Context, a *CompositeRiskAssessment, decision *EscalationDecision) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	escalation := ""
	if decision != nil {
		escalation = string(decision.Level)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO risk_assessment (id, user_id, assessed_at, composite_score, composite_level, escalation_level, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		a.ID, a.UserID, a.Timestamp, a.CompositeScore, a.CompositeLevel, escalation, payload)
	return err
}

func (r *assessmentRepoPG) HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]CompositeRiskAssessment, error) {
	// The window is the newest rows, returned oldest first.
	q := `SELECT payload FROM risk_assessment WHERE user_id = $1 ORDER BY assessed_at ASC`
	args := []interface{}{userID}
	if limit > 0 {
		q = `SELECT payload FROM (
			SELECT payload, assessed_at FROM risk_assessment
			WHERE user_id = $1 ORDER BY assessed_at DESC LIMIT $2
		) recent ORDER BY assessed_at ASC`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssessments(rows)
}

func (r *assessmentRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]CompositeRiskAssessment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessment WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM risk_assessment
		WHERE user_id = $1 ORDER BY assessed_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := scanAssessments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *assessmentRepoPG) LatestByUser(ctx context.Context, userID uuid.UUID) (*CompositeRiskAssessment, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM risk_assessment
		WHERE user_id = $1 ORDER BY assessed_at DESC LIMIT 1`, userID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var a CompositeRiskAssessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}
	return &a, nil
}

func scanAssessments(rows pgx.Rows) ([]CompositeRiskAssessment, error) {
	var items []CompositeRiskAssessment
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a CompositeRiskAssessment
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("unmarshal assessment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
