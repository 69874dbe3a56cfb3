package risk

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTables_Valid(t *testing.T) {
	if err := DefaultTables().Validate(); err != nil {
		t.Fatalf("default tables must validate: %v", err)
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	tables := DefaultTables()
	tables.CompositeThresholds = Thresholds{Moderate: 40, High: 40, Critical: 80}
	assertConfigError(t, tables.Validate())

	tables = DefaultTables()
	tables.DomainThresholds[DomainDiabetes] = Thresholds{Moderate: 0, High: 40, Critical: 60}
	assertConfigError(t, tables.Validate())
}

func TestValidate_ExponentialBase(t *testing.T) {
	tables := DefaultTables()
	tables.ExponentialBase = 1
	assertConfigError(t, tables.Validate())
}

func TestValidate_SynergyPairCoverage(t *testing.T) {
	tables := DefaultTables()
	tables.Synergies = tables.Synergies[:len(tables.Synergies)-1]
	assertConfigError(t, tables.Validate())
}

func TestValidate_SynergyCorrelationRange(t *testing.T) {
	tables := DefaultTables()
	tables.Synergies[0].Correlation = 1.2
	assertConfigError(t, tables.Validate())
}

func TestValidate_DuplicateSynergyPair(t *testing.T) {
	tables := DefaultTables()
	dup := tables.Synergies[0]
	dup.A, dup.B = dup.B, dup.A
	tables.Synergies = append(tables.Synergies, dup)
	assertConfigError(t, tables.Validate())
}

func TestValidate_SocioeconomicPositive(t *testing.T) {
	tables := DefaultTables()
	tables.Socioeconomic.StrongFamilySupport = 0
	assertConfigError(t, tables.Validate())
}

func TestSynergyFor_OrderIndependent(t *testing.T) {
	tables := DefaultTables()
	ab, ok := tables.SynergyFor(DomainDiabetes, DomainCardiovascular)
	if !ok {
		t.Fatal("expected synergy entry")
	}
	ba, ok := tables.SynergyFor(DomainCardiovascular, DomainDiabetes)
	if !ok {
		t.Fatal("expected synergy entry in reverse order")
	}
	if ab != ba {
		t.Errorf("order-dependent lookup: %v vs %v", ab, ba)
	}
}

func TestLoadTables_EmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.ExponentialBase != 1.3 {
		t.Errorf("expected default base 1.3, got %v", tables.ExponentialBase)
	}
}

func TestLoadTables_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte("exponential_base: 1.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.ExponentialBase != 1.5 {
		t.Errorf("expected overridden base 1.5, got %v", tables.ExponentialBase)
	}
	// untouched fields keep their defaults
	if tables.Temporal.VelocityEscalate != 5 {
		t.Errorf("expected default velocity threshold, got %v", tables.Temporal.VelocityEscalate)
	}
}

func TestLoadTables_InvalidOverrideIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte("exponential_base: 0.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTables(path)
	assertConfigError(t, err)
}

func TestLoadTables_MissingFileIsFatal(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "absent.yaml"))
	assertConfigError(t, err)
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
	}
}
