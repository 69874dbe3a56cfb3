package risk

// Cardiovascular factor weights, Framingham-style: symptom weights plus
// age/gender/smoking/comorbidity adjustments.
const (
	weightChestPain        = 25
	weightRestDyspnea      = 20
	weightPalpitations     = 10
	weightSevereHeadache   = 10
	weightHypertensionSym  = 10
	weightLegSwelling      = 8
	weightCVFamilyHistory  = 10
	weightSmoker           = 10
	weightDiabetesComorbid = 12
	weightMaleGender       = 5

	weightAge45 = 5
	weightAge55 = 8
	weightAge65 = 12
)

// Emergency indicator names emitted by the cardiovascular scorer.
const (
	IndicatorChestPainRestDyspnea = "chest_pain_with_rest_dyspnea"
	IndicatorHypertensiveSigns    = "hypertensive_crisis_signs"
)

// ScoreCardiovascular evaluates the cardiovascular domain. The chest pain
// plus dyspnea-at-rest co-occurrence is flagged independently of the
// cumulative score.
func (e *Engine) ScoreCardiovascular(input NormalizedAssessmentInput) (DomainRiskAssessment, error) {
	sym := input.Cardiovascular
	var missing []string
	if !sym.Present {
		missing = append(missing, "cardiovascular section")
	}
	if input.Demographics.Age <= 0 {
		missing = append(missing, "age")
	}
	if len(missing) > 0 {
		return DomainRiskAssessment{}, &InvalidInputError{Domain: DomainCardiovascular, Missing: missing}
	}

	var factors []RiskFactor
	factors = addFactor(factors, sym.ChestPain, "chest_pain", weightChestPain, "symptom", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.ShortnessBreathRest, "shortness_of_breath_at_rest", weightRestDyspnea, "symptom", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.Palpitations, "palpitations", weightPalpitations, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.SevereHeadache, "severe_headache", weightSevereHeadache, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.HypertensionSymptom, "hypertension_symptom", weightHypertensionSym, "symptom", RiskLevelModerate, "A")
	factors = addFactor(factors, sym.LegSwelling, "leg_swelling", weightLegSwelling, "symptom", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.FamilyHistory, "family_history", weightCVFamilyHistory, "history", RiskLevelModerate, "A")
	factors = addFactor(factors, input.Demographics.Smoker, "smoking", weightSmoker, "demographic", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.DiagnosedDiabetes, "diabetes_comorbidity", weightDiabetesComorbid, "comorbidity", RiskLevelHigh, "A")
	factors = addFactor(factors, input.Demographics.Gender == GenderMale, "male_gender", weightMaleGender, "demographic", RiskLevelLow, "A")

	switch age := input.Demographics.Age; {
	case age >= 65:
		factors = addFactor(factors, true, "age_65_plus", weightAge65, "demographic", RiskLevelHigh, "A")
	case age >= 55:
		factors = addFactor(factors, true, "age_55_64", weightAge55, "demographic", RiskLevelModerate, "A")
	case age >= 45:
		factors = addFactor(factors, true, "age_45_54", weightAge45, "demographic", RiskLevelLow, "A")
	}

	score := factorSum(factors)

	var indicators []string
	if sym.ChestPain && sym.ShortnessBreathRest {
		indicators = append(indicators, IndicatorChestPainRestDyspnea)
	}
	if sym.SevereHeadache && sym.FamilyHistory && sym.HypertensionSymptom {
		indicators = append(indicators, IndicatorHypertensiveSigns)
	}

	return DomainRiskAssessment{
		Domain:              DomainCardiovascular,
		OverallScore:        score,
		RiskLevel:           e.levelFor(DomainCardiovascular, score),
		TriggeredFactors:    factors,
		EmergencyIndicators: indicators,
	}, nil
}
