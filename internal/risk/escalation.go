package risk

import "fmt"

// Escalation time bounds in minutes.
const (
	escalationCriticalMinutes = 60
	escalationHighMinutes     = 240
	escalationMediumMinutes   = 1440
)

// Composite score cut points used by the decision table.
const (
	escalationCriticalScore = 80
	escalationHighScore     = 60
	escalationMediumScore   = 40
)

// Decide maps the assessment to an escalation decision using a fixed
// decision table evaluated top-down, first match wins. Reasons record
// every rule that matched, including below the winning tier, so an auditor
// can reconstruct the decision. An immediate emergency alert always wins
// regardless of composite score; emergency detection can override the
// score, never the reverse.
func (e *Engine) Decide(composite CompositeRiskAssessment, alerts []EmergencyAlert, temporal TemporalRiskProgression) EscalationDecision {
	var (
		immediateAlerts []EmergencyAlert
		hasCritical     bool
		hasHigh         bool
		reasons         []string
	)
	for _, a := range alerts {
		switch a.Severity {
		case SeverityImmediate:
			immediateAlerts = append(immediateAlerts, a)
			reasons = append(reasons, fmt.Sprintf("immediate emergency alert: %s", a.Condition))
		case SeverityCritical:
			hasCritical = true
			reasons = append(reasons, fmt.Sprintf("critical emergency alert: %s", a.Condition))
		case SeverityHigh:
			hasHigh = true
			reasons = append(reasons, fmt.Sprintf("high emergency alert: %s", a.Condition))
		}
	}

	score := composite.CompositeScore
	if score >= escalationCriticalScore {
		reasons = append(reasons, fmt.Sprintf("composite score %d at or above %d", composite.DisplayScore, escalationCriticalScore))
	} else if score >= escalationHighScore {
		reasons = append(reasons, fmt.Sprintf("composite score %d in high band [%d, %d)", composite.DisplayScore, escalationHighScore, escalationCriticalScore))
	} else if score >= escalationMediumScore {
		reasons = append(reasons, fmt.Sprintf("composite score %d in medium band [%d, %d)", composite.DisplayScore, escalationMediumScore, escalationHighScore))
	}
	if temporal.Trend == TrendCritical {
		reasons = append(reasons, "temporal trend critical_progression")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no escalation rule matched")
	}

	// Rule 1: any immediate emergency.
	if len(immediateAlerts) > 0 {
		tta := immediateAlerts[0].TimeToActionMinutes
		for _, a := range immediateAlerts[1:] {
			if a.TimeToActionMinutes < tta {
				tta = a.TimeToActionMinutes
			}
		}
		return EscalationDecision{
			Level:               EscalationImmediate,
			TimeToActionMinutes: &tta,
			EscalationTarget:    TargetEmergencyServices,
			Reasons:             reasons,
		}
	}

	// Rule 2: critical emergency or composite at/above the critical cut.
	if hasCritical || score >= escalationCriticalScore {
		return decision(EscalationCritical, escalationCriticalMinutes, TargetNurse, reasons)
	}

	// Rule 3: high emergency, high composite band, or critical progression.
	if hasHigh || (score >= escalationHighScore && score < escalationCriticalScore) || temporal.Trend == TrendCritical {
		return decision(EscalationHigh, escalationHighMinutes, TargetPhysician, reasons)
	}

	// Rule 4: medium composite band, preventive scheduling by the AI layer.
	if score >= escalationMediumScore && score < escalationHighScore {
		return decision(EscalationMedium, escalationMediumMinutes, TargetAI, reasons)
	}

	// Rule 5: routine, no forced deadline.
	return EscalationDecision{
		Level:            EscalationRoutine,
		EscalationTarget: TargetAI,
		Reasons:          reasons,
	}
}

func decision(level EscalationLevel, minutes int, target EscalationTarget, reasons []string) EscalationDecision {
	m := minutes
	return EscalationDecision{
		Level:               level,
		TimeToActionMinutes: &m,
		EscalationTarget:    target,
		Reasons:             reasons,
	}
}
