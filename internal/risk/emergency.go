package risk

import "github.com/google/uuid"

// Emergency condition names. Conditions are stable identifiers consumed by
// the notification collaborator; renaming one is a breaking change.
const (
	ConditionAcuteCoronarySyndrome = "acute_coronary_syndrome_pattern"
	ConditionDiabeticKetoacidosis  = "diabetic_ketoacidosis_pattern"
	ConditionImminentSuicideRisk   = "imminent_suicide_risk"
	ConditionSevereAsthma          = "severe_asthma_pattern"

	ConditionHypertensiveCrisis = "hypertensive_crisis_pattern"
	ConditionHighSuicideRisk    = "high_suicide_risk"
	ConditionSevereDepression   = "severe_depression_pattern"
	ConditionCOPDExacerbation   = "copd_exacerbation_pattern"

	ConditionMultiDomainCritical  = "multi_domain_critical"
	ConditionRapidRiskProgression = "rapid_risk_progression"
)

// Time-to-action bounds per severity tier, in minutes.
const (
	timeToActionImmediate = 15
	timeToActionCritical  = 60
	timeToActionHigh      = 240
)

// ruleKind is the closed set of emergency rule shapes. Every rule is one
// of these; evaluate switches exhaustively over the kind.
type ruleKind int

const (
	// coOccurrence fires on a fixed combination of raw symptom flags.
	coOccurrence ruleKind = iota
	// stratifiedSeverity fires on a scorer-produced stratification level.
	stratifiedSeverity
	// subscaleCut fires on a subscale score crossing a fixed cut plus a
	// qualifying flag.
	subscaleCut
	// compositeState fires on cross-domain or temporal state.
	compositeState
)

// emergencyRule is one named predicate. Rules match raw symptoms, not
// cumulative scores, so a pathognomonic combination is caught even when
// the numeric score alone stays low.
type emergencyRule struct {
	kind      ruleKind
	condition string
	severity  AlertSeverity
	actions   []string
}

var emergencyRules = []emergencyRule{
	{coOccurrence, ConditionAcuteCoronarySyndrome, SeverityImmediate, []string{
		"call emergency services now",
		"do not leave the person alone",
		"have them rest; no exertion",
	}},
	{coOccurrence, ConditionDiabeticKetoacidosis, SeverityImmediate, []string{
		"call emergency services now",
		"check blood glucose and ketones if a meter is available",
	}},
	{stratifiedSeverity, ConditionImminentSuicideRisk, SeverityImmediate, []string{
		"contact crisis line immediately",
		"remove access to means",
		"do not leave the person alone",
	}},
	{coOccurrence, ConditionSevereAsthma, SeverityImmediate, []string{
		"call emergency services now",
		"use rescue inhaler while waiting",
		"sit upright; stay calm",
	}},
	{coOccurrence, ConditionHypertensiveCrisis, SeverityCritical, []string{
		"measure blood pressure now",
		"urgent medical evaluation within the hour",
	}},
	{stratifiedSeverity, ConditionHighSuicideRisk, SeverityCritical, []string{
		"same-day mental health contact",
		"activate support network",
	}},
	{subscaleCut, ConditionSevereDepression, SeverityCritical, []string{
		"urgent psychiatric evaluation",
	}},
	{coOccurrence, ConditionCOPDExacerbation, SeverityCritical, []string{
		"urgent medical evaluation within the hour",
		"continue prescribed bronchodilators",
	}},
	{compositeState, ConditionMultiDomainCritical, SeverityHigh, []string{
		"physician review within 4 hours",
	}},
	{compositeState, ConditionRapidRiskProgression, SeverityHigh, []string{
		"physician review within 4 hours",
		"shorten reassessment interval",
	}},
}

// Detect evaluates every emergency rule independently and returns all
// matches; no early exit and no deduplication (the escalation layer picks
// the most severe, display layers may dedupe). velocity is the temporal
// feedback input and may be nil when no history exists. Detection never
// depends on the composite computation having succeeded: only the two
// compositeState rules read it, and they skip (not fail) when it is
// absent.
func (e *Engine) Detect(input NormalizedAssessmentInput, domainScores []DomainRiskAssessment, composite *CompositeRiskAssessment, velocity *float64) []EmergencyAlert {
	var alerts []EmergencyAlert
	for _, rule := range emergencyRules {
		matched, symptoms := e.matchRule(rule, input, domainScores, velocity)
		if !matched {
			continue
		}
		alerts = append(alerts, EmergencyAlert{
			ID:                  e.alertID(input, composite, rule.condition),
			Severity:            rule.severity,
			Condition:           rule.condition,
			TriggeringSymptoms:  symptoms,
			TimeToActionMinutes: timeToAction(rule.severity),
			RecommendedActions:  rule.actions,
		})
	}
	return alerts
}

func (e *Engine) matchRule(rule emergencyRule, input NormalizedAssessmentInput, domainScores []DomainRiskAssessment, velocity *float64) (bool, []string) {
	switch rule.kind {
	case coOccurrence:
		return matchCoOccurrence(rule.condition, input)
	case stratifiedSeverity:
		return matchStratified(rule.condition, input)
	case subscaleCut:
		return e.matchSubscale(rule.condition, input, domainScores)
	case compositeState:
		return e.matchCompositeState(rule.condition, domainScores, velocity)
	}
	return false, nil
}

func matchCoOccurrence(condition string, input NormalizedAssessmentInput) (bool, []string) {
	switch condition {
	case ConditionAcuteCoronarySyndrome:
		cv := input.Cardiovascular
		if cv.Present && cv.ChestPain && cv.ShortnessBreathRest {
			return true, []string{"chest_pain", "shortness_of_breath_at_rest"}
		}
	case ConditionDiabeticKetoacidosis:
		dm := input.Diabetes
		if !dm.Present {
			return false, nil
		}
		triad := dm.Polydipsia && dm.Polyphagia && dm.Polyuria
		if triad && dm.RapidWeightLoss {
			return true, []string{"polydipsia", "polyphagia", "polyuria", "rapid_weight_loss"}
		}
		if dm.KetosisSymptoms {
			return true, []string{"ketosis_symptoms"}
		}
	case ConditionSevereAsthma:
		rs := input.Respiratory
		if rs.Present && rs.Dyspnea && rs.CannotSpeakSentences {
			return true, []string{"dyspnea", "cannot_speak_full_sentences"}
		}
	case ConditionHypertensiveCrisis:
		cv := input.Cardiovascular
		if cv.Present && cv.SevereHeadache && cv.FamilyHistory && cv.HypertensionSymptom {
			return true, []string{"severe_headache", "family_history", "hypertension_symptom"}
		}
	case ConditionCOPDExacerbation:
		rs := input.Respiratory
		if rs.Present && rs.ChronicCough && rs.SputumChange && rs.DyspneaWorsening {
			return true, []string{"chronic_cough", "sputum_change", "dyspnea_worsening"}
		}
	}
	return false, nil
}

func matchStratified(condition string, input NormalizedAssessmentInput) (bool, []string) {
	mh := input.MentalHealth
	if !mh.Present {
		return false, nil
	}
	risk := stratifySuicideRisk(mh)
	switch condition {
	case ConditionImminentSuicideRisk:
		if risk == SuicideRiskImminent {
			return true, []string{"suicidal_ideation", "suicide_plan", "access_to_means"}
		}
	case ConditionHighSuicideRisk:
		if risk == SuicideRiskHigh {
			return true, []string{"suicidal_ideation", "suicide_plan"}
		}
	}
	return false, nil
}

func (e *Engine) matchSubscale(condition string, input NormalizedAssessmentInput, domainScores []DomainRiskAssessment) (bool, []string) {
	if condition != ConditionSevereDepression || !input.MentalHealth.Present {
		return false, nil
	}
	for _, ds := range domainScores {
		if ds.Domain != DomainMentalHealth || ds.RiskLevel == RiskLevelInsufficient {
			continue
		}
		if DepressionSubscale(ds) >= e.tables.DepressionSevereCut && input.MentalHealth.PsychoticFeatures {
			return true, []string{"depression_subscale_severe", "psychotic_features"}
		}
	}
	return false, nil
}

func (e *Engine) matchCompositeState(condition string, domainScores []DomainRiskAssessment, velocity *float64) (bool, []string) {
	switch condition {
	case ConditionMultiDomainCritical:
		var critical []string
		for _, ds := range domainScores {
			if ds.RiskLevel == RiskLevelCritical {
				critical = append(critical, string(ds.Domain)+"_critical")
			}
		}
		if len(critical) >= 2 {
			return true, critical
		}
	case ConditionRapidRiskProgression:
		if velocity != nil && *velocity > e.tables.Temporal.VelocityEscalate {
			return true, []string{"composite_velocity_above_threshold"}
		}
	}
	return false, nil
}

func (e *Engine) alertID(input NormalizedAssessmentInput, composite *CompositeRiskAssessment, condition string) uuid.UUID {
	if composite != nil {
		return deterministicID(input.UserID, composite.ID.String(), condition)
	}
	return deterministicID(input.UserID, input.Timestamp.UTC().String(), condition)
}

func timeToAction(s AlertSeverity) int {
	switch s {
	case SeverityImmediate:
		return timeToActionImmediate
	case SeverityCritical:
		return timeToActionCritical
	default:
		return timeToActionHigh
	}
}
