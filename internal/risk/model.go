package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain identifies one of the four scored health domains.
type Domain string

const (
	DomainCardiovascular Domain = "cardiovascular"
	DomainDiabetes       Domain = "diabetes"
	DomainMentalHealth   Domain = "mental_health"
	DomainRespiratory    Domain = "respiratory"
)

// Domains lists every scored domain in evaluation order.
var Domains = []Domain{DomainCardiovascular, DomainDiabetes, DomainMentalHealth, DomainRespiratory}

// RiskLevel classifies a domain or composite score against fixed thresholds.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"

	// RiskLevelInsufficient marks a domain whose required answers were
	// missing. The rest of the assessment proceeds without it.
	RiskLevelInsufficient RiskLevel = "insufficient_data"
)

// AlertSeverity is the emergency tier of a detected pattern.
type AlertSeverity string

const (
	SeverityImmediate AlertSeverity = "immediate" // act within 0-15 min
	SeverityCritical  AlertSeverity = "critical"  // act within 15-60 min
	SeverityHigh      AlertSeverity = "high"      // act within 1-4 h
)

// SuicideRisk is the stratified suicide risk level. The stratification, not
// the raw depression score, drives emergency detection.
type SuicideRisk string

const (
	SuicideRiskNone     SuicideRisk = "none"
	SuicideRiskLow      SuicideRisk = "low"
	SuicideRiskModerate SuicideRisk = "moderate"
	SuicideRiskHigh     SuicideRisk = "high"
	SuicideRiskImminent SuicideRisk = "imminent"
)

// Trend classifies how a user's composite risk is moving over time.
type Trend string

const (
	TrendStable       Trend = "stable"
	TrendAscending    Trend = "ascending"
	TrendAccelerating Trend = "accelerating"
	TrendCritical     Trend = "critical_progression"
)

// EscalationLevel is the decision tier assigned to an assessment.
type EscalationLevel string

const (
	EscalationRoutine   EscalationLevel = "routine"
	EscalationMedium    EscalationLevel = "medium"
	EscalationHigh      EscalationLevel = "high"
	EscalationCritical  EscalationLevel = "critical"
	EscalationImmediate EscalationLevel = "immediate"
)

// EscalationTarget is the party responsible for acting on a decision.
type EscalationTarget string

const (
	TargetAI                EscalationTarget = "ai"
	TargetNurse             EscalationTarget = "nurse"
	TargetPhysician         EscalationTarget = "physician"
	TargetEmergencyServices EscalationTarget = "emergency_services"
)

// Gender as reported in the questionnaire demographics.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Demographics holds the modifiers shared across domain scorers.
type Demographics struct {
	Age        int     `json:"age"`
	Gender     Gender  `json:"gender"`
	BMI        float64 `json:"bmi"`
	Smoker     bool    `json:"smoker"`
	PackYears  float64 `json:"pack_years,omitempty"`
	NeckCircCM float64 `json:"neck_circ_cm,omitempty"`

	// Socioeconomic flags feed the composite multiplier, not domain scores.
	LimitedCareAccess   bool `json:"limited_care_access"`
	LowIncome           bool `json:"low_income"`
	StrongFamilySupport bool `json:"strong_family_support"`
}

// CardiovascularSymptoms are the normalized cardiovascular answers.
type CardiovascularSymptoms struct {
	Present             bool `json:"present"` // domain answered at all
	ChestPain           bool `json:"chest_pain"`
	ShortnessBreathRest bool `json:"shortness_of_breath_at_rest"`
	Palpitations        bool `json:"palpitations"`
	SevereHeadache      bool `json:"severe_headache"`
	HypertensionSymptom bool `json:"hypertension_symptom"`
	LegSwelling         bool `json:"leg_swelling"`
	FamilyHistory       bool `json:"family_history"`
	DiagnosedDiabetes   bool `json:"diagnosed_diabetes"`
}

// DiabetesSymptoms are the normalized diabetes answers.
type DiabetesSymptoms struct {
	Present         bool `json:"present"`
	Polydipsia      bool `json:"polydipsia"`
	Polyphagia      bool `json:"polyphagia"`
	Polyuria        bool `json:"polyuria"`
	RapidWeightLoss bool `json:"rapid_weight_loss"`
	Fatigue         bool `json:"fatigue"`
	BlurredVision   bool `json:"blurred_vision"`
	SlowHealing     bool `json:"slow_healing"`
	FamilyHistory   bool `json:"family_history"`
	KetosisSymptoms bool `json:"ketosis_symptoms"`
}

// MentalHealthSymptoms are the normalized PHQ-9/GAD-7 style answers.
type MentalHealthSymptoms struct {
	Present bool `json:"present"`

	// Depression subscale items.
	DepressedMood     bool `json:"depressed_mood"`
	Anhedonia         bool `json:"anhedonia"`
	SleepDisturbance  bool `json:"sleep_disturbance"`
	LowEnergy         bool `json:"low_energy"`
	AppetiteChange    bool `json:"appetite_change"`
	Worthlessness     bool `json:"worthlessness"`
	PoorConcentration bool `json:"poor_concentration"`
	PsychomotorChange bool `json:"psychomotor_change"`

	// Anxiety subscale items.
	Nervousness         bool `json:"nervousness"`
	UncontrollableWorry bool `json:"uncontrollable_worry"`
	ExcessiveWorry      bool `json:"excessive_worry"`
	TroubleRelaxing     bool `json:"trouble_relaxing"`
	Restlessness        bool `json:"restlessness"`
	Irritability        bool `json:"irritability"`
	SenseOfDread        bool `json:"sense_of_dread"`

	// Suicide risk stratification inputs.
	SuicidalIdeation bool `json:"suicidal_ideation"`
	SuicidePlan      bool `json:"suicide_plan"`
	AccessToMeans    bool `json:"access_to_means"`

	PsychoticFeatures bool `json:"psychotic_features"`
}

// RespiratorySymptoms are the normalized respiratory answers.
type RespiratorySymptoms struct {
	Present bool `json:"present"`

	// STOP-BANG items not derivable from demographics.
	LoudSnoring      bool `json:"loud_snoring"`
	DaytimeTiredness bool `json:"daytime_tiredness"`
	ObservedApnea    bool `json:"observed_apnea"`
	Hypertension     bool `json:"hypertension"`

	// Asthma sub-rule.
	Wheezing             bool `json:"wheezing"`
	NightSymptoms        bool `json:"night_symptoms"`
	RescueInhalerWeekly  bool `json:"rescue_inhaler_weekly"`
	Dyspnea              bool `json:"dyspnea"`
	CannotSpeakSentences bool `json:"cannot_speak_full_sentences"`

	// COPD sub-rule.
	ChronicCough     bool `json:"chronic_cough"`
	SputumProduction bool `json:"sputum_production"`
	SputumChange     bool `json:"sputum_change"`
	DyspneaWorsening bool `json:"dyspnea_worsening"`
}

// NormalizedAssessmentInput is the flattened, typed view of one user's
// questionnaire answers and extracted entities at one point in time.
// Constructed once per assessment by the caller and never mutated here.
type NormalizedAssessmentInput struct {
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`

	Demographics   Demographics           `json:"demographics"`
	Cardiovascular CardiovascularSymptoms `json:"cardiovascular"`
	Diabetes       DiabetesSymptoms       `json:"diabetes"`
	MentalHealth   MentalHealthSymptoms   `json:"mental_health"`
	Respiratory    RespiratorySymptoms    `json:"respiratory"`

	// ExtractedEntities carries free-form entity names from the document
	// extraction collaborator. Scorers treat them as supporting evidence
	// only; they never trigger rules on their own.
	ExtractedEntities []string `json:"extracted_entities,omitempty"`
}

// RiskFactor is the atomic unit contributing to a domain score.
type RiskFactor struct {
	Name          string    `json:"name"`
	Value         float64   `json:"value"`
	Weight        float64   `json:"weight"`
	Category      string    `json:"category"`
	Severity      RiskLevel `json:"severity"`
	EvidenceLevel string    `json:"evidence_level"`
}

// DomainRiskAssessment is the output of one domain scorer.
type DomainRiskAssessment struct {
	Domain              Domain       `json:"domain"`
	OverallScore        float64      `json:"overall_score"`
	RiskLevel           RiskLevel    `json:"risk_level"`
	TriggeredFactors    []RiskFactor `json:"triggered_factors,omitempty"`
	EmergencyIndicators []string     `json:"emergency_indicators,omitempty"`

	// SuicideRisk is populated by the mental health scorer only.
	SuicideRisk SuicideRisk `json:"suicide_risk,omitempty"`
}

// SynergyContribution records one pairwise amplification applied to the
// composite score.
type SynergyContribution struct {
	Pair         [2]Domain `json:"pair"`
	Multiplier   float64   `json:"multiplier"`
	Contribution float64   `json:"contribution"`
}

// EmergencyAlert is a detected emergency pattern. Alerts are never
// retracted; a correction requires a new assessment.
type EmergencyAlert struct {
	ID                  uuid.UUID     `json:"id"`
	Severity            AlertSeverity `json:"severity"`
	Condition           string        `json:"condition"`
	TriggeringSymptoms  []string      `json:"triggering_symptoms"`
	TimeToActionMinutes int           `json:"time_to_action_minutes"`
	RecommendedActions  []string      `json:"recommended_actions"`
}

// CompositeRiskAssessment is the full result of one assessment run.
// Immutable once built; a new assessment supersedes, never updates.
type CompositeRiskAssessment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`

	DomainScores []DomainRiskAssessment `json:"domain_scores"`

	// CompositeScore keeps full precision for temporal math;
	// DisplayScore is the rounded value shown to callers.
	CompositeScore float64   `json:"composite_score"`
	DisplayScore   int       `json:"display_score"`
	CompositeLevel RiskLevel `json:"composite_level"`

	SynergyContributions []SynergyContribution `json:"synergy_contributions,omitempty"`
	EmergencyAlerts      []EmergencyAlert      `json:"emergency_alerts,omitempty"`
}

// DomainScore returns the assessment for one domain, or nil.
func (c *CompositeRiskAssessment) DomainScore(d Domain) *DomainRiskAssessment {
	for i := range c.DomainScores {
		if c.DomainScores[i].Domain == d {
			return &c.DomainScores[i]
		}
	}
	return nil
}

// InsufficientDomains lists domains that could not be scored.
func (c *CompositeRiskAssessment) InsufficientDomains() []Domain {
	var out []Domain
	for _, ds := range c.DomainScores {
		if ds.RiskLevel == RiskLevelInsufficient {
			out = append(out, ds.Domain)
		}
	}
	return out
}

// TemporalRiskProgression describes how risk moved across the supplied
// history window. Velocity and Acceleration are nil when the window is too
// short or the interval degenerate.
type TemporalRiskProgression struct {
	UserID             uuid.UUID                 `json:"user_id"`
	OrderedAssessments []CompositeRiskAssessment `json:"ordered_assessments,omitempty"`
	Velocity           *float64                  `json:"velocity"`     // points/day
	Acceleration       *float64                  `json:"acceleration"` // points/day^2
	Trend              Trend                     `json:"trend"`
}

// EscalationDecision maps an assessment to who must act and how fast.
// TimeToActionMinutes is nil for routine decisions (no forced deadline).
type EscalationDecision struct {
	Level               EscalationLevel  `json:"level"`
	TimeToActionMinutes *int             `json:"time_to_action_minutes"`
	EscalationTarget    EscalationTarget `json:"escalation_target"`
	Reasons             []string         `json:"reasons"`
}

// InvalidInputError reports a domain whose required answers are missing or
// malformed. The assessment pipeline degrades the domain to
// insufficient_data instead of aborting.
type InvalidInputError struct {
	Domain  Domain
	Missing []string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for domain %s: missing %v", e.Domain, e.Missing)
}

// ConfigurationError reports malformed scoring tables. This is fatal at
// startup: wrong thresholds are a patient-safety issue, so the service
// refuses to run rather than fall back to defaults silently.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("risk table configuration error: %s: %s", e.Field, e.Reason)
}

// DedupeAlerts collapses alerts that share a condition name, keeping the
// first occurrence. Detection emits every match; display layers dedupe.
func DedupeAlerts(alerts []EmergencyAlert) []EmergencyAlert {
	seen := make(map[string]bool, len(alerts))
	out := make([]EmergencyAlert, 0, len(alerts))
	for _, a := range alerts {
		if seen[a.Condition] {
			continue
		}
		seen[a.Condition] = true
		out = append(out, a)
	}
	return out
}
