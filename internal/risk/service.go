package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// historyWindow caps how many past assessments feed the temporal tracker.
// Velocity and acceleration only need the tail, but the full window is
// returned to callers for charting.
const historyWindow = 50

// AssessmentResult bundles everything one Assess call produces.
type AssessmentResult struct {
	Assessment CompositeRiskAssessment `json:"assessment"`
	Temporal   TemporalRiskProgression `json:"temporal"`
	Decision   EscalationDecision      `json:"decision"`

	// InsufficientDomains surfaces unanswered sections so incomplete
	// questionnaires can be flagged for follow-up.
	InsufficientDomains []Domain `json:"insufficient_domains,omitempty"`
}

// Service wires the pure engine to the assessment store. The engine never
// performs I/O; the service supplies the history snapshot and persists the
// result. Re-running Assess with identical input and history reproduces
// the same assessment and decision.
type Service struct {
	engine *Engine
	repo   AssessmentRepository
}

func NewService(engine *Engine, repo AssessmentRepository) *Service {
	return &Service{engine: engine, repo: repo}
}

// Engine exposes the underlying engine for callers that need the pure
// boundary directly.
func (s *Service) Engine() *Engine { return s.engine }

// Assess runs the full pipeline: load history, score, combine, detect,
// track, decide, persist.
func (s *Service) Assess(ctx context.Context, input NormalizedAssessmentInput) (*AssessmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	history, err := s.repo.HistoryByUser(ctx, input.UserID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load assessment history: %w", err)
	}

	assessment, temporal, decision, err := s.engine.Assess(input, history)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &assessment, &decision); err != nil {
		return nil, fmt.Errorf("store assessment: %w", err)
	}

	return &AssessmentResult{
		Assessment:          assessment,
		Temporal:            temporal,
		Decision:            decision,
		InsufficientDomains: assessment.InsufficientDomains(),
	}, nil
}

// EmergencyCheck is the fast path: no history read and nothing persisted,
// so a re-check can never double-record an assessment.
func (s *Service) EmergencyCheck(ctx context.Context, input NormalizedAssessmentInput) ([]EmergencyAlert, EscalationDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, EscalationDecision{}, err
	}
	return s.engine.EmergencyCheck(input)
}

// Temporal recomputes the progression over the stored history.
func (s *Service) Temporal(ctx context.Context, userID uuid.UUID) (*TemporalRiskProgression, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	history, err := s.repo.HistoryByUser(ctx, userID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load assessment history: %w", err)
	}
	if len(history) == 0 {
		return &TemporalRiskProgression{UserID: userID, Trend: TrendStable}, nil
	}
	latest := history[len(history)-1]
	progression := s.engine.Track(history[:len(history)-1], latest)
	return &progression, nil
}

// UserSummary is the one-call overview for a user.
type UserSummary struct {
	UserID     uuid.UUID                `json:"user_id"`
	Latest     *CompositeRiskAssessment `json:"latest,omitempty"`
	Temporal   *TemporalRiskProgression `json:"temporal,omitempty"`
	OpenAlerts []EmergencyAlert         `json:"open_alerts,omitempty"`
}

// Summary returns the latest assessment, the temporal progression, and the
// latest assessment's alerts deduplicated by condition.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*UserSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	summary := &UserSummary{UserID: userID}

	latest, err := s.repo.LatestByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		// No stored assessment yet is a valid summary, not an error.
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest assessment: %w", err)
	}
	summary.Latest = latest
	summary.OpenAlerts = DedupeAlerts(latest.EmergencyAlerts)

	temporal, err := s.Temporal(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Temporal = temporal
	return summary, nil
}

// ListAssessments returns a page of stored assessments, newest first.
func (s *Service) ListAssessments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]CompositeRiskAssessment, int, error) {
	if userID == uuid.Nil {
		return nil, 0, fmt.Errorf("user_id is required")
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
