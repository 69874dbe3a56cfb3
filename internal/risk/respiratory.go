package risk

// Respiratory weights. The sleep apnea screen follows the STOP-BANG
// composite (snoring, tiredness, observed apnea, pressure, BMI, age, neck
// circumference, gender); asthma and COPD sub-rules run independently.
const (
	weightStopBangItem = 7

	weightWheezing      = 8
	weightNightSymptoms = 8
	weightRescueInhaler = 10
	weightDyspnea       = 10

	weightChronicCough     = 8
	weightSputum           = 6
	weightSputumChange     = 6
	weightDyspneaWorsening = 8
	weightHeavySmoking     = 10
)

// STOP-BANG demographic cut points.
const (
	stopBangBMICut        = 35.0
	stopBangAgeCut        = 50
	stopBangNeckCut       = 40.0
	heavySmokingPackYears = 20.0
)

// Emergency indicator names emitted by the respiratory scorer.
const (
	IndicatorAcuteSevereAsthma = "acute_severe_asthma_pattern"
	IndicatorCOPDExacerbation  = "copd_exacerbation_signs"
)

// ScoreRespiratory evaluates the respiratory domain.
func (e *Engine) ScoreRespiratory(input NormalizedAssessmentInput) (DomainRiskAssessment, error) {
	sym := input.Respiratory
	if !sym.Present {
		return DomainRiskAssessment{}, &InvalidInputError{Domain: DomainRespiratory, Missing: []string{"respiratory section"}}
	}
	demo := input.Demographics

	var factors []RiskFactor
	// STOP-BANG items, one weight each.
	factors = addFactor(factors, sym.LoudSnoring, "loud_snoring", weightStopBangItem, "sleep_apnea", RiskLevelLow, "A")
	factors = addFactor(factors, sym.DaytimeTiredness, "daytime_tiredness", weightStopBangItem, "sleep_apnea", RiskLevelLow, "A")
	factors = addFactor(factors, sym.ObservedApnea, "observed_apnea", weightStopBangItem, "sleep_apnea", RiskLevelModerate, "A")
	factors = addFactor(factors, sym.Hypertension, "hypertension", weightStopBangItem, "sleep_apnea", RiskLevelModerate, "A")
	factors = addFactor(factors, demo.BMI > stopBangBMICut, "bmi_over_35", weightStopBangItem, "sleep_apnea", RiskLevelModerate, "A")
	factors = addFactor(factors, demo.Age > stopBangAgeCut, "age_over_50", weightStopBangItem, "sleep_apnea", RiskLevelLow, "A")
	factors = addFactor(factors, demo.NeckCircCM > stopBangNeckCut, "neck_over_40cm", weightStopBangItem, "sleep_apnea", RiskLevelLow, "B")
	factors = addFactor(factors, demo.Gender == GenderMale, "male_gender", weightStopBangItem, "sleep_apnea", RiskLevelLow, "A")

	// Asthma severity sub-rule.
	factors = addFactor(factors, sym.Wheezing, "wheezing", weightWheezing, "asthma", RiskLevelModerate, "A")
	factors = addFactor(factors, sym.NightSymptoms, "night_symptoms", weightNightSymptoms, "asthma", RiskLevelModerate, "A")
	factors = addFactor(factors, sym.RescueInhalerWeekly, "rescue_inhaler_weekly", weightRescueInhaler, "asthma", RiskLevelHigh, "A")
	factors = addFactor(factors, sym.Dyspnea, "dyspnea", weightDyspnea, "asthma", RiskLevelHigh, "A")

	// COPD indicator sub-rule.
	factors = addFactor(factors, sym.ChronicCough, "chronic_cough", weightChronicCough, "copd", RiskLevelModerate, "A")
	factors = addFactor(factors, sym.SputumProduction, "sputum_production", weightSputum, "copd", RiskLevelModerate, "B")
	factors = addFactor(factors, sym.SputumChange, "sputum_change", weightSputumChange, "copd", RiskLevelHigh, "B")
	factors = addFactor(factors, sym.DyspneaWorsening, "dyspnea_worsening", weightDyspneaWorsening, "copd", RiskLevelHigh, "A")
	factors = addFactor(factors, demo.PackYears >= heavySmokingPackYears, "heavy_smoking_history", weightHeavySmoking, "copd", RiskLevelHigh, "A")

	score := factorSum(factors)

	var indicators []string
	if sym.Dyspnea && sym.CannotSpeakSentences {
		indicators = append(indicators, IndicatorAcuteSevereAsthma)
	}
	if sym.ChronicCough && sym.SputumChange && sym.DyspneaWorsening {
		indicators = append(indicators, IndicatorCOPDExacerbation)
	}

	return DomainRiskAssessment{
		Domain:              DomainRespiratory,
		OverallScore:        score,
		RiskLevel:           e.levelFor(DomainRespiratory, score),
		TriggeredFactors:    factors,
		EmergencyIndicators: indicators,
	}, nil
}
