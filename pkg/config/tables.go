package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/skills"
)

// ScoreTable is a total function over (skillID, category). Missing entries
// resolve to the documented Default, never to a silent zero.
type ScoreTable struct {
	Default float64                       `koanf:"default"`
	Values  map[string]map[string]float64 `koanf:"values"`
}

// Lookup returns the score for a skill in a category.
func (t ScoreTable) Lookup(skillID string, category core.TaskCategory) float64 {
	if byCategory, ok := t.Values[skillID]; ok {
		if score, ok := byCategory[string(category)]; ok {
			return score
		}
	}
	return t.Default
}

// Matrix is a symmetric skill-compatibility lookup with diagonal 1.0 and a
// documented default for missing pairs.
type Matrix struct {
	Default float64                       `koanf:"default"`
	Pairs   map[string]map[string]float64 `koanf:"pairs"`
}

// Lookup returns the compatibility of two skills, in either key order.
func (m Matrix) Lookup(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if row, ok := m.Pairs[a]; ok {
		if score, ok := row[b]; ok {
			return score
		}
	}
	if row, ok := m.Pairs[b]; ok {
		if score, ok := row[a]; ok {
			return score
		}
	}
	return m.Default
}

// Thresholds holds the complexity score cut-offs and per-band values.
type Thresholds struct {
	Extreme float64 `koanf:"extreme"` // score >= Extreme -> extreme
	High    float64 `koanf:"high"`
	Medium  float64 `koanf:"medium"`

	// Loads maps each complexity band to its cognitive-load estimate.
	Loads map[string]float64 `koanf:"loads"`
	// Penalties maps each complexity band to its confidence adjustment.
	Penalties map[string]float64 `koanf:"penalties"`
}

// Load returns the cognitive-load estimate for a complexity band.
func (t Thresholds) Load(c core.Complexity) float64 {
	if v, ok := t.Loads[string(c)]; ok {
		return v
	}
	return t.Loads[string(core.ComplexityLow)]
}

// Penalty returns the confidence adjustment for a complexity band.
func (t Thresholds) Penalty(c core.Complexity) float64 {
	return t.Penalties[string(c)]
}

// Grade maps a complexity score to its band.
func (t Thresholds) Grade(score float64) core.Complexity {
	switch {
	case score >= t.Extreme:
		return core.ComplexityExtreme
	case score >= t.High:
		return core.ComplexityHigh
	case score >= t.Medium:
		return core.ComplexityMedium
	default:
		return core.ComplexityLow
	}
}

// Tables bundles every static policy table the engine consumes. All lookups
// are total functions with documented defaults; Validate enforces totality
// and range at startup.
type Tables struct {
	// Categories maps each task category to its base skill set.
	Categories map[string][]string `koanf:"categories"`

	BaseConfidence ScoreTable `koanf:"base_confidence"`
	BasePriority   ScoreTable `koanf:"base_priority"`
	Contribution   ScoreTable `koanf:"contribution"`

	// Durations holds static per-skill duration estimates.
	Durations       map[string]time.Duration `koanf:"durations"`
	DefaultDuration time.Duration            `koanf:"default_duration"`

	// LoadEstimates holds static per-skill cognitive-load estimates.
	LoadEstimates map[string]float64 `koanf:"load_estimates"`
	DefaultLoad   float64            `koanf:"default_load"`

	// Dependencies maps a skill to the artifact names it consumes.
	Dependencies map[string][]string `koanf:"dependencies"`

	Compatibility Matrix     `koanf:"compatibility"`
	Thresholds    Thresholds `koanf:"thresholds"`
}

// SkillsFor returns the base skill set for a category.
func (t *Tables) SkillsFor(category core.TaskCategory) []string {
	return append([]string(nil), t.Categories[string(category)]...)
}

// Duration returns the static duration estimate for a skill.
func (t *Tables) Duration(skillID string) time.Duration {
	if d, ok := t.Durations[skillID]; ok {
		return d
	}
	return t.DefaultDuration
}

// Load returns the static cognitive-load estimate for a skill.
func (t *Tables) Load(skillID string) float64 {
	if v, ok := t.LoadEstimates[skillID]; ok {
		return v
	}
	return t.DefaultLoad
}

// DependenciesFor returns the artifact names a skill declares as inputs.
func (t *Tables) DependenciesFor(skillID string) []string {
	return append([]string(nil), t.Dependencies[skillID]...)
}

// Validate checks totality and ranges against the catalog. A failed check is
// an INVALID_CONFIG structural error: the orchestrator refuses to start.
func (t *Tables) Validate(catalog *skills.Catalog) error {
	for _, category := range core.Categories() {
		ids, ok := t.Categories[string(category)]
		if !ok || len(ids) == 0 {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("category %q has no skill set", category), nil)
		}
		for _, id := range ids {
			if _, ok := catalog.Get(id); !ok {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("category %q references unknown skill %q", category, id), nil)
			}
		}
	}

	for name, table := range map[string]ScoreTable{
		"base_confidence": t.BaseConfidence,
		"base_priority":   t.BasePriority,
		"contribution":    t.Contribution,
	} {
		if err := validateScoreTable(name, table, catalog); err != nil {
			return err
		}
	}

	if t.DefaultDuration <= 0 {
		return errors.New(errors.CodeInvalidConfig, "default_duration must be positive", nil)
	}
	for id, d := range t.Durations {
		if d <= 0 {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("duration for %q must be positive", id), nil)
		}
	}
	if t.DefaultLoad < 0 || t.DefaultLoad > 1 {
		return errors.New(errors.CodeInvalidConfig, "default_load out of range [0,1]", nil)
	}
	for id, v := range t.LoadEstimates {
		if v < 0 || v > 1 {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("load estimate for %q out of range [0,1]", id), nil)
		}
	}

	for id, deps := range t.Dependencies {
		if _, ok := catalog.Get(id); !ok {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("dependency entry for unknown skill %q", id), nil)
		}
		for _, artifact := range deps {
			producer := skills.SkillForArtifact(artifact)
			if _, ok := catalog.Get(producer); !ok {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("skill %q depends on artifact %q with no known producer", id, artifact), nil)
			}
		}
	}

	if err := validateMatrix(t.Compatibility); err != nil {
		return err
	}
	return validateThresholds(t.Thresholds)
}

func validateScoreTable(name string, table ScoreTable, catalog *skills.Catalog) error {
	if table.Default < 0 || table.Default > 1 {
		return errors.New(errors.CodeInvalidConfig,
			fmt.Sprintf("%s default out of range [0,1]", name), nil)
	}
	known := make(map[string]bool)
	for _, category := range core.Categories() {
		known[string(category)] = true
	}
	for skillID, byCategory := range table.Values {
		if _, ok := catalog.Get(skillID); !ok {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("%s references unknown skill %q", name, skillID), nil)
		}
		for category, score := range byCategory {
			if !known[category] {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("%s[%s] references unknown category %q", name, skillID, category), nil)
			}
			if score < 0 || score > 1 {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("%s[%s][%s] out of range [0,1]", name, skillID, category), nil)
			}
		}
	}
	return nil
}

func validateMatrix(m Matrix) error {
	if m.Default < 0 || m.Default > 1 {
		return errors.New(errors.CodeInvalidConfig, "compatibility default out of range [0,1]", nil)
	}
	for a, row := range m.Pairs {
		for b, score := range row {
			if score < 0 || score > 1 {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("compatibility[%s][%s] out of range [0,1]", a, b), nil)
			}
			if a == b && score != 1.0 {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("compatibility diagonal for %q must be 1.0", a), nil)
			}
			if mirror, ok := m.Pairs[b][a]; ok && mirror != score {
				return errors.New(errors.CodeInvalidConfig,
					fmt.Sprintf("compatibility[%s][%s] is asymmetric", a, b), nil)
			}
		}
	}
	return nil
}

func validateThresholds(t Thresholds) error {
	if !(t.Extreme > t.High && t.High > t.Medium && t.Medium > 0) {
		return errors.New(errors.CodeInvalidConfig, "complexity thresholds must be strictly decreasing and positive", nil)
	}
	for _, band := range []core.Complexity{core.ComplexityLow, core.ComplexityMedium, core.ComplexityHigh, core.ComplexityExtreme} {
		load, ok := t.Loads[string(band)]
		if !ok {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("missing load for complexity %q", band), nil)
		}
		if load < 0 || load > 1 {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("load for complexity %q out of range [0,1]", band), nil)
		}
		if _, ok := t.Penalties[string(band)]; !ok {
			return errors.New(errors.CodeInvalidConfig,
				fmt.Sprintf("missing confidence penalty for complexity %q", band), nil)
		}
	}
	return nil
}

// LoadTables reads policy tables from a YAML file layered over the defaults.
func LoadTables(path string) (*Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig, "load tables file", err)
	}
	if err := k.Unmarshal("", tables); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig, "parse tables file", err)
	}
	return tables, nil
}
