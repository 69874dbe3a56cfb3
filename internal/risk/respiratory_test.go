package risk

import (
	"testing"

	"github.com/google/uuid"
)

func respInput(demo Demographics, sym RespiratorySymptoms) NormalizedAssessmentInput {
	sym.Present = true
	return NormalizedAssessmentInput{UserID: uuid.New(), Demographics: demo, Respiratory: sym}
}

func TestScoreRespiratory_FullStopBang(t *testing.T) {
	e := newTestEngine(t)
	demo := Demographics{Age: 55, Gender: GenderMale, BMI: 36, NeckCircCM: 42}
	ds, err := e.ScoreRespiratory(respInput(demo, RespiratorySymptoms{
		LoudSnoring: true, DaytimeTiredness: true, ObservedApnea: true, Hypertension: true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// all eight items at 7
	if ds.OverallScore != 56 {
		t.Errorf("expected score 56, got %v", ds.OverallScore)
	}
	if ds.RiskLevel != RiskLevelHigh {
		t.Errorf("expected high, got %s", ds.RiskLevel)
	}
}

func TestScoreRespiratory_StopBangDemographicCuts(t *testing.T) {
	e := newTestEngine(t)
	// exactly at each cut: BMI 35, age 50, neck 40 do not count
	demo := Demographics{Age: 50, Gender: GenderFemale, BMI: 35, NeckCircCM: 40}
	ds, err := e.ScoreRespiratory(respInput(demo, RespiratorySymptoms{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.OverallScore != 0 {
		t.Errorf("expected score 0 at the cut points, got %v", ds.OverallScore)
	}
}

func TestScoreRespiratory_AcuteSevereAsthmaIndicator(t *testing.T) {
	e := newTestEngine(t)
	ds, err := e.ScoreRespiratory(respInput(Demographics{Age: 30}, RespiratorySymptoms{
		Dyspnea: true, CannotSpeakSentences: true, Wheezing: true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasIndicator(ds, IndicatorAcuteSevereAsthma) {
		t.Errorf("expected %s indicator, got %v", IndicatorAcuteSevereAsthma, ds.EmergencyIndicators)
	}
}

func TestScoreRespiratory_COPDExacerbation(t *testing.T) {
	e := newTestEngine(t)
	demo := Demographics{Age: 62, PackYears: 30}
	ds, err := e.ScoreRespiratory(respInput(demo, RespiratorySymptoms{
		ChronicCough: true, SputumProduction: true, SputumChange: true, DyspneaWorsening: true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cough 8 + sputum 6 + change 6 + worsening 8 + pack-years 10 + age item 7
	if ds.OverallScore != 45 {
		t.Errorf("expected score 45, got %v", ds.OverallScore)
	}
	if !hasIndicator(ds, IndicatorCOPDExacerbation) {
		t.Errorf("expected %s indicator, got %v", IndicatorCOPDExacerbation, ds.EmergencyIndicators)
	}
}

func TestScoreRespiratory_SectionNotAnswered(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ScoreRespiratory(NormalizedAssessmentInput{UserID: uuid.New()})
	var inputErr *InvalidInputError
	if !asInvalidInput(err, &inputErr) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}
