package risk

import (
	"fmt"

	"github.com/spf13/viper"
)

// Thresholds are the score cut points for the four risk levels.
// A score s maps to: low s<Moderate, moderate s<High, high s<Critical,
// critical s>=Critical.
type Thresholds struct {
	Moderate float64 `mapstructure:"moderate" json:"moderate"`
	High     float64 `mapstructure:"high" json:"high"`
	Critical float64 `mapstructure:"critical" json:"critical"`
}

// Level maps a score against the thresholds.
func (t Thresholds) Level(score float64) RiskLevel {
	switch {
	case score >= t.Critical:
		return RiskLevelCritical
	case score >= t.High:
		return RiskLevelHigh
	case score >= t.Moderate:
		return RiskLevelModerate
	default:
		return RiskLevelLow
	}
}

// Synergy is one pairwise co-morbidity amplification entry. Contribution to
// the composite is score_a * score_b * Correlation * Factor / 100.
type Synergy struct {
	A           Domain  `mapstructure:"a" json:"a"`
	B           Domain  `mapstructure:"b" json:"b"`
	Correlation float64 `mapstructure:"correlation" json:"correlation"`
	Factor      float64 `mapstructure:"factor" json:"factor"`
	Evidence    string  `mapstructure:"evidence" json:"evidence"`
}

// SocioeconomicMultipliers are applied multiplicatively to the composite
// when the corresponding demographic flag is set. Values below 1 are
// protective.
type SocioeconomicMultipliers struct {
	LimitedCareAccess   float64 `mapstructure:"limited_care_access" json:"limited_care_access"`
	LowIncome           float64 `mapstructure:"low_income" json:"low_income"`
	StrongFamilySupport float64 `mapstructure:"strong_family_support" json:"strong_family_support"`
}

// TemporalThresholds govern trend classification.
type TemporalThresholds struct {
	// VelocityEscalate: composite points per day above which the trend is
	// ascending and the high-emergency feedback rule fires.
	VelocityEscalate float64 `mapstructure:"velocity_escalate" json:"velocity_escalate"`
	// AccelerationNotify: points per day^2 above which the trend is
	// accelerating.
	AccelerationNotify float64 `mapstructure:"acceleration_notify" json:"acceleration_notify"`
}

// Tables holds every tunable scoring constant. Loaded once at startup,
// validated, then passed read-only into the engine; there is no process-wide
// mutable state.
type Tables struct {
	DomainThresholds    map[Domain]Thresholds    `mapstructure:"domain_thresholds" json:"domain_thresholds"`
	CompositeThresholds Thresholds               `mapstructure:"composite_thresholds" json:"composite_thresholds"`
	ExponentialBase     float64                  `mapstructure:"exponential_base" json:"exponential_base"`
	Synergies           []Synergy                `mapstructure:"synergies" json:"synergies"`
	Socioeconomic       SocioeconomicMultipliers `mapstructure:"socioeconomic" json:"socioeconomic"`
	Temporal            TemporalThresholds       `mapstructure:"temporal" json:"temporal"`

	// DepressionSevereCut is the depression subscale score that, together
	// with psychotic features, constitutes the severe depression emergency.
	DepressionSevereCut float64 `mapstructure:"depression_severe_cut" json:"depression_severe_cut"`
}

// DefaultTables returns the canonical table. The synergy multipliers are
// evidence-graded constants reviewed with clinical advisors; changing them
// requires the same review, which is why overrides are validated and
// failures are fatal.
func DefaultTables() *Tables {
	domainCuts := Thresholds{Moderate: 25, High: 40, Critical: 60}
	return &Tables{
		DomainThresholds: map[Domain]Thresholds{
			DomainCardiovascular: domainCuts,
			DomainDiabetes:       domainCuts,
			DomainMentalHealth:   domainCuts,
			DomainRespiratory:    domainCuts,
		},
		CompositeThresholds: Thresholds{Moderate: 40, High: 60, Critical: 80},
		ExponentialBase:     1.3,
		Synergies: []Synergy{
			{A: DomainDiabetes, B: DomainCardiovascular, Correlation: 0.30, Factor: 2.5, Evidence: "A"},
			{A: DomainMentalHealth, B: DomainCardiovascular, Correlation: 0.25, Factor: 1.6, Evidence: "B"},
			{A: DomainMentalHealth, B: DomainDiabetes, Correlation: 0.25, Factor: 1.6, Evidence: "B"},
			{A: DomainRespiratory, B: DomainCardiovascular, Correlation: 0.28, Factor: 1.8, Evidence: "A"},
			{A: DomainRespiratory, B: DomainDiabetes, Correlation: 0.20, Factor: 1.4, Evidence: "C"},
			{A: DomainMentalHealth, B: DomainRespiratory, Correlation: 0.15, Factor: 1.2, Evidence: "C"},
		},
		Socioeconomic: SocioeconomicMultipliers{
			LimitedCareAccess:   1.3,
			LowIncome:           1.2,
			StrongFamilySupport: 0.85,
		},
		Temporal: TemporalThresholds{
			VelocityEscalate:   5,
			AccelerationNotify: 2,
		},
		DepressionSevereCut: 35,
	}
}

// LoadTables returns DefaultTables when path is empty, otherwise reads the
// override file (YAML or JSON) on top of the defaults. Any validation
// failure is returned as a *ConfigurationError and must abort startup.
func LoadTables(path string) (*Tables, error) {
	tables := DefaultTables()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigurationError{Field: "tables_file", Reason: fmt.Sprintf("read %s: %v", path, err)}
		}
		if err := v.Unmarshal(tables); err != nil {
			return nil, &ConfigurationError{Field: "tables_file", Reason: fmt.Sprintf("unmarshal %s: %v", path, err)}
		}
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Validate checks internal consistency of the tables.
func (t *Tables) Validate() error {
	for _, d := range Domains {
		th, ok := t.DomainThresholds[d]
		if !ok {
			return &ConfigurationError{Field: fmt.Sprintf("domain_thresholds.%s", d), Reason: "missing"}
		}
		if err := validateThresholds(fmt.Sprintf("domain_thresholds.%s", d), th); err != nil {
			return err
		}
	}
	if err := validateThresholds("composite_thresholds", t.CompositeThresholds); err != nil {
		return err
	}
	if t.ExponentialBase <= 1 {
		return &ConfigurationError{Field: "exponential_base", Reason: "must be greater than 1"}
	}
	seen := make(map[[2]Domain]bool)
	for i, s := range t.Synergies {
		field := fmt.Sprintf("synergies[%d]", i)
		if !validDomain(s.A) || !validDomain(s.B) || s.A == s.B {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid domain pair (%s, %s)", s.A, s.B)}
		}
		key := pairKey(s.A, s.B)
		if seen[key] {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("duplicate pair (%s, %s)", s.A, s.B)}
		}
		seen[key] = true
		if s.Correlation <= 0 || s.Correlation > 1 {
			return &ConfigurationError{Field: field, Reason: "correlation must be in (0, 1]"}
		}
		if s.Factor <= 0 {
			return &ConfigurationError{Field: field, Reason: "factor must be positive"}
		}
	}
	// Every domain pair must be covered so a missing entry can never
	// silently zero out a known co-morbidity.
	for i, a := range Domains {
		for _, b := range Domains[i+1:] {
			if !seen[pairKey(a, b)] {
				return &ConfigurationError{Field: "synergies", Reason: fmt.Sprintf("no entry for pair (%s, %s)", a, b)}
			}
		}
	}
	if t.Socioeconomic.LimitedCareAccess <= 0 || t.Socioeconomic.LowIncome <= 0 || t.Socioeconomic.StrongFamilySupport <= 0 {
		return &ConfigurationError{Field: "socioeconomic", Reason: "multipliers must be positive"}
	}
	if t.Temporal.VelocityEscalate <= 0 {
		return &ConfigurationError{Field: "temporal.velocity_escalate", Reason: "must be positive"}
	}
	if t.Temporal.AccelerationNotify <= 0 {
		return &ConfigurationError{Field: "temporal.acceleration_notify", Reason: "must be positive"}
	}
	if t.DepressionSevereCut <= 0 {
		return &ConfigurationError{Field: "depression_severe_cut", Reason: "must be positive"}
	}
	return nil
}

// SynergyFor returns the synergy entry covering the pair, regardless of
// order. Validation guarantees an entry exists for every pair.
func (t *Tables) SynergyFor(a, b Domain) (Synergy, bool) {
	for _, s := range t.Synergies {
		if (s.A == a && s.B == b) || (s.A == b && s.B == a) {
			return s, true
		}
	}
	return Synergy{}, false
}

func validateThresholds(field string, th Thresholds) error {
	if th.Moderate <= 0 {
		return &ConfigurationError{Field: field, Reason: "moderate threshold must be positive"}
	}
	if th.High <= th.Moderate {
		return &ConfigurationError{Field: field, Reason: "high threshold must exceed moderate"}
	}
	if th.Critical <= th.High {
		return &ConfigurationError{Field: field, Reason: "critical threshold must exceed high"}
	}
	return nil
}

func validDomain(d Domain) bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

func pairKey(a, b Domain) [2]Domain {
	if a > b {
		a, b = b, a
	}
	return [2]Domain{a, b}
}
