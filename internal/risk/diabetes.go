package risk

// Diabetes factor weights. The three classic triad symptoms plus the triad
// completion bonus sum to exactly the critical threshold: a complete triad
// is critical on its own.
const (
	weightTriadSymptom    = 15
	weightTriadComplete   = 15
	weightRapidWeightLoss = 10
	weightDMFatigue       = 5
	weightBlurredVision   = 5
	weightSlowHealing     = 5
	weightDMFamilyHistory = 10
)

// Emergency indicator names emitted by the diabetes scorer.
const (
	IndicatorTriadWithWeightLoss = "classic_triad_with_rapid_weight_loss"
	IndicatorKetosisSymptoms     = "ketosis_symptoms"
)

// ScoreDiabetes evaluates the diabetes domain. The polydipsia + polyphagia
// + polyuria triad dominates the score; supporting symptoms and family
// history add fixed weights on top.
func (e *Engine) ScoreDiabetes(input NormalizedAssessmentInput) (DomainRiskAssessment, error) {
	sym := input.Diabetes
	if !sym.Present {
		return DomainRiskAssessment{}, &InvalidInputError{Domain: DomainDiabetes, Missing: []string{"diabetes section"}}
	}

	var factors []RiskFactor
	factors = addFactor(factors, sym.Polydipsia, "polydipsia", weightTriadSymptom, "classic_triad", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.Polyphagia, "polyphagia", weightTriadSymptom, "classic_triad", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.Polyuria, "polyuria", weightTriadSymptom, "classic_triad", RiskLevelHigh, "A")

	triadComplete := sym.Polydipsia && sym.Polyphagia && sym.Polyuria
	factors = addFactor(factors, triadComplete, "classic_triad_complete", weightTriadComplete, "classic_triad", RiskLevelCritical, "A")

	factors = addFactor(factors, sym.RapidWeightLoss, "rapid_weight_loss", weightRapidWeightLoss, "symptom", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.Fatigue, "fatigue", weightDMFatigue, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.BlurredVision, "blurred_vision", weightBlurredVision, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.SlowHealing, "slow_healing", weightSlowHealing, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.FamilyHistory, "family_history", weightDMFamilyHistory, "history", RiskLevelModerate, "A")

	score := factorSum(factors)

	var indicators []string
	if triadComplete && sym.RapidWeightLoss {
		indicators = append(indicators, IndicatorTriadWithWeightLoss)
	}
	if sym.KetosisSymptoms {
		indicators = append(indicators, IndicatorKetosisSymptoms)
	}

	return DomainRiskAssessment{
		Domain:              DomainDiabetes,
		OverallScore:        score,
		RiskLevel:           e.levelFor(DomainDiabetes, score),
		TriggeredFactors:    factors,
		EmergencyIndicators: indicators,
	}, nil
}
