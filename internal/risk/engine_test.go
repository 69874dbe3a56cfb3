package risk

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fullInput(userID uuid.UUID, ts time.Time) NormalizedAssessmentInput {
	return NormalizedAssessmentInput{
		UserID:    userID,
		Timestamp: ts,
		Demographics: Demographics{
			Age: 58, Gender: GenderMale, BMI: 31, Smoker: true,
		},
		Cardiovascular: CardiovascularSymptoms{
			Present: true, ChestPain: true, Palpitations: true,
		},
		Diabetes: DiabetesSymptoms{
			Present: true, Polydipsia: true, Polyuria: true, Fatigue: true,
		},
		MentalHealth: MentalHealthSymptoms{
			Present: true, DepressedMood: true, SleepDisturbance: true,
		},
		Respiratory: RespiratorySymptoms{
			Present: true, LoudSnoring: true, DaytimeTiredness: true,
		},
	}
}

func TestAssess_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	userID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2026, 4, 10, 8, 30, 0, 0, time.UTC)
	input := fullInput(userID, ts)

	c1, p1, d1, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c2, p2, d2, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(c1, c2) {
		t.Error("composite differs across identical runs")
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Error("temporal progression differs across identical runs")
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Error("decision differs across identical runs")
	}
	if c1.ID == uuid.Nil {
		t.Error("assessment ID must be set")
	}
}

func TestAssess_ScoresAllFourDomains(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())

	c, _, _, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.DomainScores) != 4 {
		t.Fatalf("expected 4 domain scores, got %d", len(c.DomainScores))
	}
	for _, d := range Domains {
		ds := c.DomainScore(d)
		if ds == nil {
			t.Errorf("missing domain %s", d)
			continue
		}
		if ds.RiskLevel == RiskLevelInsufficient {
			t.Errorf("domain %s unexpectedly insufficient", d)
		}
	}
}

func TestAssess_MissingSectionDegradesNotAborts(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())
	input.MentalHealth = MentalHealthSymptoms{}
	input.Respiratory = RespiratorySymptoms{}

	c, _, d, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("partial input must not abort: %v", err)
	}
	insufficient := c.InsufficientDomains()
	if len(insufficient) != 2 {
		t.Fatalf("expected 2 insufficient domains, got %v", insufficient)
	}
	if d.Level == "" {
		t.Error("decision must still be produced")
	}
}

func TestAssess_AddingSymptomNeverLowersComposite(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())

	base, _, _, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input.Diabetes.Polyphagia = true // completes the triad
	worse, _, _, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if worse.CompositeScore < base.CompositeScore {
		t.Errorf("adding a symptom lowered the composite: %v -> %v", base.CompositeScore, worse.CompositeScore)
	}
}

func TestAssess_RequiresUserAndTimestamp(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())

	noUser := input
	noUser.UserID = uuid.Nil
	if _, _, _, err := e.Assess(noUser, nil); err == nil {
		t.Error("expected error for missing user_id")
	}

	noTime := input
	noTime.Timestamp = time.Time{}
	if _, _, _, err := e.Assess(noTime, nil); err == nil {
		t.Error("expected error for missing timestamp")
	}
}

func TestEmergencyCheck_RequiresUserAndTimestamp(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())

	noUser := input
	noUser.UserID = uuid.Nil
	if _, _, err := e.EmergencyCheck(noUser); err == nil {
		t.Error("expected error for missing user_id")
	}

	noTime := input
	noTime.Timestamp = time.Time{}
	if _, _, err := e.EmergencyCheck(noTime); err == nil {
		t.Error("expected error for missing timestamp")
	}
}

func TestAssess_HistoryFeedsProgressionRule(t *testing.T) {
	e := newTestEngine(t)
	userID := uuid.New()
	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	input := fullInput(userID, t0.AddDate(0, 0, 2))
	base, _, _, err := e.Assess(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A much lower prior assessment makes the velocity cross the
	// escalation threshold.
	prior := assessmentAt(userID, base.CompositeScore-30, RiskLevelLow, t0)
	c, p, _, err := e.Assess(input, []CompositeRiskAssessment{prior})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Velocity == nil || *p.Velocity <= e.Tables().Temporal.VelocityEscalate {
		t.Fatalf("test setup: expected velocity above threshold, got %v", p.Velocity)
	}
	if alertFor(c.EmergencyAlerts, ConditionRapidRiskProgression) == nil {
		t.Errorf("expected rapid progression alert, got %v", c.EmergencyAlerts)
	}
}

func TestEmergencyCheck_NoTemporalFeedback(t *testing.T) {
	e := newTestEngine(t)
	input := fullInput(uuid.New(), time.Now())

	alerts, decision, err := e.EmergencyCheck(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alertFor(alerts, ConditionRapidRiskProgression) != nil {
		t.Error("fast path must not evaluate temporal rules")
	}
	if decision.Level == "" {
		t.Error("fast path must still decide")
	}
}
