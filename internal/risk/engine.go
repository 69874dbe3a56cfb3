package risk

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// assessmentNamespace seeds deterministic assessment and alert IDs so that
// re-running Assess over identical input reproduces identical output.
var assessmentNamespace = uuid.MustParse("8f1f4b1e-6d1a-4a5e-9a3c-2f0c6d9b7e41")

// Engine evaluates assessments against a validated, read-only table set.
// All methods are pure functions over their inputs; the engine holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	tables *Tables
}

// NewEngine validates the tables and returns an engine. A table failure
// here is a ConfigurationError and must abort startup.
func NewEngine(tables *Tables) (*Engine, error) {
	if tables == nil {
		return nil, &ConfigurationError{Field: "tables", Reason: "nil"}
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tables: tables}, nil
}

// Tables exposes the read-only table set.
func (e *Engine) Tables() *Tables { return e.tables }

// Assess runs the full pipeline over one input and the caller-supplied
// history window (oldest to newest). Domains with missing answers degrade
// to insufficient_data; emergency detection always runs on whatever data
// is available.
func (e *Engine) Assess(input NormalizedAssessmentInput, history []CompositeRiskAssessment) (CompositeRiskAssessment, TemporalRiskProgression, EscalationDecision, error) {
	if input.UserID == uuid.Nil {
		return CompositeRiskAssessment{}, TemporalRiskProgression{}, EscalationDecision{}, fmt.Errorf("user_id is required")
	}
	if input.Timestamp.IsZero() {
		return CompositeRiskAssessment{}, TemporalRiskProgression{}, EscalationDecision{}, fmt.Errorf("timestamp is required")
	}

	domains := e.scoreAllDomains(input)
	composite := e.Combine(domains, input.Demographics)
	composite.ID = deterministicID(input.UserID, input.Timestamp.UTC().String())
	composite.UserID = input.UserID
	composite.Timestamp = input.Timestamp

	temporal := e.Track(history, composite)
	composite.EmergencyAlerts = e.Detect(input, domains, &composite, temporal.Velocity)
	decision := e.Decide(composite, composite.EmergencyAlerts, temporal)

	return composite, temporal, decision, nil
}

// EmergencyCheck is the fast path: scorers plus emergency detection only,
// no history reads and no temporal math.
func (e *Engine) EmergencyCheck(input NormalizedAssessmentInput) ([]EmergencyAlert, EscalationDecision, error) {
	if input.UserID == uuid.Nil {
		return nil, EscalationDecision{}, fmt.Errorf("user_id is required")
	}
	if input.Timestamp.IsZero() {
		return nil, EscalationDecision{}, fmt.Errorf("timestamp is required")
	}
	domains := e.scoreAllDomains(input)
	composite := e.Combine(domains, input.Demographics)
	composite.ID = deterministicID(input.UserID, input.Timestamp.UTC().String())
	composite.UserID = input.UserID
	composite.Timestamp = input.Timestamp

	alerts := e.Detect(input, domains, &composite, nil)
	decision := e.Decide(composite, alerts, TemporalRiskProgression{Trend: TrendStable})
	return alerts, decision, nil
}

// scoreAllDomains runs every scorer, converting InvalidInputError into an
// insufficient_data placeholder so one unanswered section never blocks the
// rest of the assessment.
func (e *Engine) scoreAllDomains(input NormalizedAssessmentInput) []DomainRiskAssessment {
	type scorer func(NormalizedAssessmentInput) (DomainRiskAssessment, error)
	scorers := []struct {
		domain Domain
		score  scorer
	}{
		{DomainCardiovascular, e.ScoreCardiovascular},
		{DomainDiabetes, e.ScoreDiabetes},
		{DomainMentalHealth, e.ScoreMentalHealth},
		{DomainRespiratory, e.ScoreRespiratory},
	}

	out := make([]DomainRiskAssessment, 0, len(scorers))
	for _, s := range scorers {
		ds, err := s.score(input)
		if err != nil {
			out = append(out, DomainRiskAssessment{
				Domain:    s.domain,
				RiskLevel: RiskLevelInsufficient,
			})
			continue
		}
		out = append(out, ds)
	}
	return out
}

func (e *Engine) levelFor(d Domain, score float64) RiskLevel {
	return e.tables.DomainThresholds[d].Level(score)
}

// factorSum totals the weighted contributions of the triggered factors.
func factorSum(factors []RiskFactor) float64 {
	var sum float64
	for _, f := range factors {
		sum += f.Value * f.Weight
	}
	return sum
}

func addFactor(factors []RiskFactor, present bool, name string, weight float64, category string, severity RiskLevel, evidence string) []RiskFactor {
	if !present {
		return factors
	}
	return append(factors, RiskFactor{
		Name:          name,
		Value:         1,
		Weight:        weight,
		Category:      category,
		Severity:      severity,
		EvidenceLevel: evidence,
	})
}

func deterministicID(userID uuid.UUID, parts ...string) uuid.UUID {
	data := userID.String()
	for _, p := range parts {
		data += "|" + p
	}
	return uuid.NewSHA1(assessmentNamespace, []byte(data))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
