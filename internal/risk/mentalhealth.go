package risk

// Mental health subscale weights. Depression items follow the PHQ-9
// checklist shape, anxiety items the GAD-7 shape; both are weighted symptom
// checklists, not the licensed instruments.
const (
	weightDepressionItem = 6
	weightAnxietyItem    = 4
	weightIdeation       = 10
)

// Emergency indicator names emitted by the mental health scorer.
const (
	IndicatorImminentSuicideRisk = "imminent_suicide_risk"
	IndicatorHighSuicideRisk     = "high_suicide_risk"
	IndicatorSevereDepression    = "severe_depression_with_psychosis"
)

// ScoreMentalHealth evaluates the mental health domain. Suicide risk is
// stratified from ideation, plan specificity, and access to means; the
// stratification, not the raw score, drives the emergency indicators.
func (e *Engine) ScoreMentalHealth(input NormalizedAssessmentInput) (DomainRiskAssessment, error) {
	sym := input.MentalHealth
	if !sym.Present {
		return DomainRiskAssessment{}, &InvalidInputError{Domain: DomainMentalHealth, Missing: []string{"mental health section"}}
	}

	var depression []RiskFactor
	depression = addFactor(depression, sym.DepressedMood, "depressed_mood", weightDepressionItem, "depression", RiskLevelModerate, "A")
	depression = addFactor(depression, sym.Anhedonia, "anhedonia", weightDepressionItem, "depression", RiskLevelModerate, "A")
	depression = addFactor(depression, sym.SleepDisturbance, "sleep_disturbance", weightDepressionItem, "depression", RiskLevelLow, "A")
	depression = addFactor(depression, sym.LowEnergy, "low_energy", weightDepressionItem, "depression", RiskLevelLow, "A")
	depression = addFactor(depression, sym.AppetiteChange, "appetite_change", weightDepressionItem, "depression", RiskLevelLow, "A")
	depression = addFactor(depression, sym.Worthlessness, "worthlessness", weightDepressionItem, "depression", RiskLevelModerate, "A")
	depression = addFactor(depression, sym.PoorConcentration, "poor_concentration", weightDepressionItem, "depression", RiskLevelLow, "A")
	depression = addFactor(depression, sym.PsychomotorChange, "psychomotor_change", weightDepressionItem, "depression", RiskLevelModerate, "A")
	depression = addFactor(depression, sym.SuicidalIdeation, "suicidal_ideation", weightIdeation, "depression", RiskLevelCritical, "A")

	var anxiety []RiskFactor
	anxiety = addFactor(anxiety, sym.Nervousness, "nervousness", weightAnxietyItem, "anxiety", RiskLevelLow, "A")
	anxiety = addFactor(anxiety, sym.UncontrollableWorry, "uncontrollable_worry", weightAnxietyItem, "anxiety", RiskLevelModerate, "A")
	anxiety = addFactor(anxiety, sym.ExcessiveWorry, "excessive_worry", weightAnxietyItem, "anxiety", RiskLevelLow, "A")
	anxiety = addFactor(anxiety, sym.TroubleRelaxing, "trouble_relaxing", weightAnxietyItem, "anxiety", RiskLevelLow, "A")
	anxiety = addFactor(anxiety, sym.Restlessness, "restlessness", weightAnxietyItem, "anxiety", RiskLevelLow, "A")
	anxiety = addFactor(anxiety, sym.Irritability, "irritability", weightAnxietyItem, "anxiety", RiskLevelLow, "A")
	anxiety = addFactor(anxiety, sym.SenseOfDread, "sense_of_dread", weightAnxietyItem, "anxiety", RiskLevelModerate, "A")

	depScore := factorSum(depression)
	anxScore := factorSum(anxiety)
	score := depScore + anxScore

	suicide := stratifySuicideRisk(sym)

	var indicators []string
	switch suicide {
	case SuicideRiskImminent:
		indicators = append(indicators, IndicatorImminentSuicideRisk)
	case SuicideRiskHigh:
		indicators = append(indicators, IndicatorHighSuicideRisk)
	}
	if depScore >= e.tables.DepressionSevereCut && sym.PsychoticFeatures {
		indicators = append(indicators, IndicatorSevereDepression)
	}

	factors := append(depression, anxiety...)

	return DomainRiskAssessment{
		Domain:              DomainMentalHealth,
		OverallScore:        score,
		RiskLevel:           e.levelFor(DomainMentalHealth, score),
		TriggeredFactors:    factors,
		EmergencyIndicators: indicators,
		SuicideRisk:         suicide,
	}, nil
}

// stratifySuicideRisk ranks plan specificity above access to means: a
// concrete plan without means is high, means without a plan is moderate,
// and all three together are imminent.
func stratifySuicideRisk(sym MentalHealthSymptoms) SuicideRisk {
	if !sym.SuicidalIdeation {
		return SuicideRiskNone
	}
	switch {
	case sym.SuicidePlan && sym.AccessToMeans:
		return SuicideRiskImminent
	case sym.SuicidePlan:
		return SuicideRiskHigh
	case sym.AccessToMeans:
		return SuicideRiskModerate
	default:
		return SuicideRiskLow
	}
}

// DepressionSubscale totals the depression-category factors of a mental
// health assessment.
func DepressionSubscale(ds DomainRiskAssessment) float64 {
	var sum float64
	for _, f := range ds.TriggeredFactors {
		if f.Category == "depression" {
			sum += f.Value * f.Weight
		}
	}
	return sum
}
