package risk

import "math"

// Combine folds the domain assessments into one composite. The single
// highest domain score anchors the composite; multiple simultaneously
// high-risk domains scale it super-linearly; pairwise synergies add
// co-morbidity amplification; socioeconomic modifiers multiply last.
// Insufficient-data domains are carried in DomainScores but excluded from
// every term.
func (e *Engine) Combine(domainScores []DomainRiskAssessment, demo Demographics) CompositeRiskAssessment {
	scored := make([]DomainRiskAssessment, 0, len(domainScores))
	for _, ds := range domainScores {
		if ds.RiskLevel != RiskLevelInsufficient {
			scored = append(scored, ds)
		}
	}

	var baseScore float64
	highRiskCount := 0
	for _, ds := range scored {
		if ds.OverallScore > baseScore {
			baseScore = ds.OverallScore
		}
		if ds.RiskLevel == RiskLevelHigh || ds.RiskLevel == RiskLevelCritical {
			highRiskCount++
		}
	}

	exponentialFactor := 1.0
	if highRiskCount > 1 {
		exponentialFactor = math.Pow(e.tables.ExponentialBase, float64(highRiskCount-1))
	}

	var synergyBonus float64
	var contributions []SynergyContribution
	for i := 0; i < len(scored); i++ {
		for j := i + 1; j < len(scored); j++ {
			a, b := scored[i], scored[j]
			if a.OverallScore == 0 || b.OverallScore == 0 {
				continue
			}
			syn, ok := e.tables.SynergyFor(a.Domain, b.Domain)
			if !ok {
				continue
			}
			contribution := a.OverallScore * b.OverallScore * syn.Correlation * syn.Factor / 100
			synergyBonus += contribution
			contributions = append(contributions, SynergyContribution{
				Pair:         pairKey(a.Domain, b.Domain),
				Multiplier:   syn.Factor,
				Contribution: round1(contribution),
			})
		}
	}

	composite := (baseScore*exponentialFactor + synergyBonus) * e.socioeconomicMultiplier(demo)

	return CompositeRiskAssessment{
		DomainScores:         domainScores,
		CompositeScore:       composite,
		DisplayScore:         int(math.Round(composite)),
		CompositeLevel:       e.tables.CompositeThresholds.Level(composite),
		SynergyContributions: contributions,
	}
}

// socioeconomicMultiplier combines the demographic modifiers. Limited
// access to care and low income amplify; strong family support is
// protective.
func (e *Engine) socioeconomicMultiplier(demo Demographics) float64 {
	mult := 1.0
	if demo.LimitedCareAccess {
		mult *= e.tables.Socioeconomic.LimitedCareAccess
	}
	if demo.LowIncome {
		mult *= e.tables.Socioeconomic.LowIncome
	}
	if demo.StrongFamilySupport {
		mult *= e.tables.Socioeconomic.StrongFamilySupport
	}
	return mult
}
