package config

import (
	"testing"
	"time"

	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/skills"
)

func TestDefaultTablesValidate(t *testing.T) {
	tables := DefaultTables()
	if err := tables.Validate(skills.Default()); err != nil {
		t.Fatalf("default tables must validate: %v", err)
	}
}

func TestScoreTableLookupDefault(t *testing.T) {
	tables := DefaultTables()
	got := tables.BaseConfidence.Lookup("system-diagnostics", core.CategoryResearch)
	if got != tables.BaseConfidence.Default {
		t.Fatalf("missing entry must resolve to default, got %v", got)
	}
	got = tables.BaseConfidence.Lookup("code-analysis", core.CategoryCodeAnalysis)
	if got != 0.85 {
		t.Fatalf("unexpected explicit value: %v", got)
	}
}

func TestMatrixSymmetryAndDiagonal(t *testing.T) {
	m := DefaultTables().Compatibility
	if m.Lookup("code-analysis", "code-analysis") != 1.0 {
		t.Fatal("diagonal must be 1.0")
	}
	ab := m.Lookup("code-analysis", "content-analysis")
	ba := m.Lookup("content-analysis", "code-analysis")
	if ab != ba {
		t.Fatalf("matrix must be symmetric: %v vs %v", ab, ba)
	}
	if m.Lookup("pattern-learning", "system-diagnostics") != m.Default {
		t.Fatal("missing pair must resolve to default")
	}
}

func TestValidateRejectsUnknownSkill(t *testing.T) {
	tables := DefaultTables()
	tables.Categories["research"] = []string{"quantum-divination"}
	err := tables.Validate(skills.Default())
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if errors.AsMetisError(err).Code != errors.CodeInvalidConfig {
		t.Fatalf("unexpected code: %v", err)
	}
}

func TestValidateRejectsMissingCategory(t *testing.T) {
	tables := DefaultTables()
	delete(tables.Categories, "optimization")
	if err := tables.Validate(skills.Default()); err == nil {
		t.Fatal("expected validation failure for missing category")
	}
}

func TestValidateRejectsOutOfRangeScore(t *testing.T) {
	tables := DefaultTables()
	tables.BasePriority.Values["code-analysis"]["code-analysis"] = 1.4
	if err := tables.Validate(skills.Default()); err == nil {
		t.Fatal("expected validation failure for out-of-range score")
	}
}

func TestValidateRejectsAsymmetricMatrix(t *testing.T) {
	tables := DefaultTables()
	tables.Compatibility.Pairs["content-analysis"]["code-analysis"] = 0.2
	if err := tables.Validate(skills.Default()); err == nil {
		t.Fatal("expected validation failure for asymmetric matrix")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tables := DefaultTables()
	tables.Thresholds.High = 0.9 // above extreme
	if err := tables.Validate(skills.Default()); err == nil {
		t.Fatal("expected validation failure for unordered thresholds")
	}
}

func TestThresholdGrading(t *testing.T) {
	th := DefaultTables().Thresholds
	cases := []struct {
		score float64
		want  core.Complexity
	}{
		{0.75, core.ComplexityExtreme},
		{0.7, core.ComplexityExtreme},
		{0.5, core.ComplexityHigh},
		{0.35, core.ComplexityMedium},
		{0.1, core.ComplexityLow},
	}
	for _, tc := range cases {
		if got := th.Grade(tc.score); got != tc.want {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.want, got)
		}
	}
	if th.Load(core.ComplexityExtreme) != 0.9 {
		t.Fatalf("unexpected extreme load: %v", th.Load(core.ComplexityExtreme))
	}
	if th.Penalty(core.ComplexityHigh) != -0.15 {
		t.Fatalf("unexpected high penalty: %v", th.Penalty(core.ComplexityHigh))
	}
}

func TestDurationAndLoadDefaults(t *testing.T) {
	tables := DefaultTables()
	if tables.Duration("unknown-skill") != 400*time.Millisecond {
		t.Fatal("unknown skill must get default duration")
	}
	if tables.Load("unknown-skill") != 0.35 {
		t.Fatal("unknown skill must get default load")
	}
}
