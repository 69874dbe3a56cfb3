package risk

import (
	"math"
	"time"
)

const hoursPerDay = 24.0

// Track computes velocity, acceleration, and trend over the caller's
// history window plus the latest assessment. The tracker performs no I/O;
// history must already be ordered oldest to newest. Velocity needs two
// assessments, acceleration three; degenerate intervals (identical
// timestamps) yield nil rather than an error.
func (e *Engine) Track(history []CompositeRiskAssessment, latest CompositeRiskAssessment) TemporalRiskProgression {
	ordered := make([]CompositeRiskAssessment, 0, len(history)+1)
	ordered = append(ordered, history...)
	ordered = append(ordered, latest)

	progression := TemporalRiskProgression{
		UserID:             latest.UserID,
		OrderedAssessments: ordered,
		Trend:              TrendStable,
	}

	velocity := velocityBetween(ordered, len(ordered)-1)
	progression.Velocity = velocity
	if velocity == nil {
		return progression
	}

	if prevVelocity := velocityBetween(ordered, len(ordered)-2); prevVelocity != nil {
		n := len(ordered)
		if days := daysBetween(ordered[n-2].Timestamp, ordered[n-1].Timestamp); days > 0 {
			accel := (*velocity - *prevVelocity) / days
			progression.Acceleration = &accel
		}
	}

	progression.Trend = e.classifyTrend(latest, *velocity, progression.Acceleration)
	return progression
}

// classifyTrend maps velocity/acceleration to a trend. critical_progression
// dominates: a composite already at critical that is still ascending or
// accelerating is the worst state this tracker can report.
func (e *Engine) classifyTrend(latest CompositeRiskAssessment, velocity float64, acceleration *float64) Trend {
	accelerating := acceleration != nil && *acceleration > e.tables.Temporal.AccelerationNotify
	ascending := velocity > e.tables.Temporal.VelocityEscalate

	if latest.CompositeLevel == RiskLevelCritical && (ascending || accelerating) {
		return TrendCritical
	}
	if accelerating {
		return TrendAccelerating
	}
	if ascending {
		return TrendAscending
	}
	if math.Abs(velocity) <= e.tables.Temporal.VelocityEscalate {
		return TrendStable
	}
	// Falling faster than the threshold is still stable for escalation
	// purposes; only upward movement escalates.
	return TrendStable
}

// velocityBetween returns the score change per day ending at index i, or
// nil when there is no prior assessment or the interval is degenerate.
// Velocity uses the unrounded composite scores so repeated assessments do
// not compound rounding error.
func velocityBetween(ordered []CompositeRiskAssessment, i int) *float64 {
	if i < 1 || i >= len(ordered) {
		return nil
	}
	prev, cur := ordered[i-1], ordered[i]
	days := daysBetween(prev.Timestamp, cur.Timestamp)
	if days <= 0 {
		return nil
	}
	v := (cur.CompositeScore - prev.CompositeScore) / days
	return &v
}

func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}
