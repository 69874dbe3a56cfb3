package risk

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no stored assessment.
// Callers use it to tell "no data yet" apart from a store failure.
var ErrNotFound = errors.New("assessment not found")

// AssessmentRepository stores composite assessments and supplies the
// history window the temporal tracker reads. Implementations must return
// history ordered oldest to newest; the engine does not re-sort.
type AssessmentRepository interface {
	Create(ctx context.Context, a *CompositeRiskAssessment, decision *EscalationDecision) error
	// HistoryByUser returns all stored assessments for the user, oldest
	// first, capped at limit (0 means no cap).
	HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]CompositeRiskAssessment, error)
	// ListByUser returns a page of assessments newest first, for review
	// endpoints.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]CompositeRiskAssessment, int, error)
	// LatestByUser returns the most recent assessment, or ErrNotFound
	// when the user has none stored.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*CompositeRiskAssessment, error)
}
