package config

import "time"

// DefaultTables returns the built-in policy tables covering the default
// skill catalog. Callers may layer overrides on top via LoadTables.
func DefaultTables() *Tables {
	return &Tables{
		Categories: map[string][]string{
			"code-analysis":     {"code-analysis", "content-analysis", "structured-reasoning"},
			"problem-solving":   {"structured-reasoning", "system-diagnostics", "code-analysis"},
			"optimization":      {"load-optimization", "system-diagnostics"},
			"learning":          {"pattern-learning", "content-analysis"},
			"complex-multistep": {"content-analysis", "code-analysis", "structured-reasoning", "load-optimization", "pattern-learning"},
			"research":          {"content-analysis", "structured-reasoning"},
		},

		BaseConfidence: ScoreTable{
			Default: 0.6,
			Values: map[string]map[string]float64{
				"code-analysis": {
					"code-analysis":     0.85,
					"problem-solving":   0.65,
					"complex-multistep": 0.8,
				},
				"content-analysis": {
					"research":          0.8,
					"code-analysis":     0.7,
					"learning":          0.75,
					"complex-multistep": 0.75,
				},
				"system-diagnostics": {
					"problem-solving": 0.75,
					"optimization":    0.7,
				},
				"structured-reasoning": {
					"problem-solving":   0.85,
					"research":          0.7,
					"code-analysis":     0.65,
					"complex-multistep": 0.75,
				},
				"load-optimization": {
					"optimization":      0.8,
					"complex-multistep": 0.7,
				},
				"pattern-learning": {
					"learning":          0.85,
					"complex-multistep": 0.7,
				},
			},
		},

		BasePriority: ScoreTable{
			Default: 0.5,
			Values: map[string]map[string]float64{
				"code-analysis": {
					"code-analysis":     0.9,
					"problem-solving":   0.6,
					"complex-multistep": 0.8,
				},
				"content-analysis": {
					"research":          0.85,
					"code-analysis":     0.7,
					"learning":          0.6,
					"complex-multistep": 0.75,
				},
				"system-diagnostics": {
					"problem-solving": 0.75,
					"optimization":    0.7,
				},
				"structured-reasoning": {
					"problem-solving":   0.9,
					"research":          0.7,
					"code-analysis":     0.6,
					"complex-multistep": 0.7,
				},
				"load-optimization": {
					"optimization":      0.9,
					"complex-multistep": 0.6,
				},
				"pattern-learning": {
					"learning":          0.9,
					"complex-multistep": 0.65,
				},
			},
		},

		Contribution: ScoreTable{
			Default: 0.5,
			Values: map[string]map[string]float64{
				"code-analysis":        {"code-analysis": 0.9, "complex-multistep": 0.7},
				"content-analysis":     {"research": 0.85, "complex-multistep": 0.65},
				"system-diagnostics":   {"problem-solving": 0.8, "optimization": 0.7},
				"structured-reasoning": {"problem-solving": 0.85, "complex-multistep": 0.7},
				"load-optimization":    {"optimization": 0.9},
				"pattern-learning":     {"learning": 0.9},
			},
		},

		Durations: map[string]time.Duration{
			"code-analysis":        500 * time.Millisecond,
			"content-analysis":     400 * time.Millisecond,
			"system-diagnostics":   600 * time.Millisecond,
			"structured-reasoning": 800 * time.Millisecond,
			"load-optimization":    300 * time.Millisecond,
			"pattern-learning":     350 * time.Millisecond,
		},
		DefaultDuration: 400 * time.Millisecond,

		LoadEstimates: map[string]float64{
			"code-analysis":        0.4,
			"content-analysis":     0.3,
			"system-diagnostics":   0.45,
			"structured-reasoning": 0.5,
			"load-optimization":    0.25,
			"pattern-learning":     0.3,
		},
		DefaultLoad: 0.35,

		Dependencies: map[string][]string{
			"structured-reasoning": {"content-analysis.result"},
			"load-optimization":    {"system-diagnostics.result"},
			"pattern-learning":     {"structured-reasoning.result"},
		},

		Compatibility: Matrix{
			Default: 0.5,
			Pairs: map[string]map[string]float64{
				"code-analysis": {
					"content-analysis":     0.85,
					"system-diagnostics":   0.7,
					"structured-reasoning": 0.65,
				},
				"content-analysis": {
					"system-diagnostics":   0.8,
					"structured-reasoning": 0.75,
				},
				"structured-reasoning": {
					"load-optimization": 0.8,
					"pattern-learning":  0.6,
				},
				"load-optimization": {
					"pattern-learning": 0.55,
				},
			},
		},

		Thresholds: Thresholds{
			Extreme: 0.7,
			High:    0.5,
			Medium:  0.3,
			Loads: map[string]float64{
				"low":     0.2,
				"medium":  0.5,
				"high":    0.7,
				"extreme": 0.9,
			},
			Penalties: map[string]float64{
				"low":     0.10,
				"medium":  0.0,
				"high":    -0.15,
				"extreme": -0.25,
			},
		},
	}
}
