// Package planner turns optimized skill groups into a validated execution
// plan and records the execution audit trail.
package planner

import (
	"fmt"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/optimizer"
	"github.com/metislabs/metis/pkg/skills"
)

const (
	mitigationLoadBalance = "monitor and load-balance"
	mitigationFallback    = "implement fallback strategy for bottleneck"
)

// Planner builds execution plans. Plan construction is a pure function of its
// inputs: identical inputs yield identical plans.
type Planner struct {
	tables *config.Tables
}

// New creates a planner over the given policy tables.
func New(tables *config.Tables) *Planner {
	return &Planner{tables: tables}
}

// BuildPlan produces an execution plan for the optimized groups. Phases are
// emitted in group order and chained, so the list is topologically ordered by
// construction. Structural problems (cycles, empty selections) are the only
// errors.
func (p *Planner) BuildPlan(analysis core.TaskAnalysis, recs []core.SkillRecommendation, groups []optimizer.Group) (core.ExecutionPlan, error) {
	if len(groups) == 0 {
		return core.ExecutionPlan{}, errors.New(errors.CodeStructural,
			"no skill groups to plan", nil)
	}
	if _, err := BuildDependencyGraph(recs); err != nil {
		return core.ExecutionPlan{}, err
	}

	plan := core.ExecutionPlan{
		Phases:          make([]core.CognitivePhase, 0, len(groups)),
		ConfidenceScore: meanConfidence(recs),
		RiskMitigation:  p.riskMitigation(analysis, recs),
	}

	prevID := ""
	for i, group := range groups {
		phase := core.CognitivePhase{
			ID:       fmt.Sprintf("phase-%d", i+1),
			Name:     group.Name,
			SkillIDs: append([]string(nil), group.SkillIDs...),
			Parallel: group.Parallel,
		}
		for _, skillID := range group.SkillIDs {
			duration := p.tables.Duration(skillID)
			if group.Parallel {
				if duration > phase.EstimatedTime {
					phase.EstimatedTime = duration
				}
			} else {
				phase.EstimatedTime += duration
			}
			phase.Outputs = append(phase.Outputs, skills.Artifact(skillID))
		}
		if prevID != "" {
			phase.DependsOn = []string{prevID}
		}
		prevID = phase.ID

		plan.Phases = append(plan.Phases, phase)
		plan.TotalEstimatedTime += phase.EstimatedTime
	}

	if err := ValidatePlan(plan); err != nil {
		return core.ExecutionPlan{}, err
	}
	return plan, nil
}

func (p *Planner) riskMitigation(analysis core.TaskAnalysis, recs []core.SkillRecommendation) []string {
	var out []string
	if analysis.EstimatedCognitiveLoad > 0.8 {
		out = append(out, mitigationLoadBalance)
	}
	for _, rec := range recs {
		if p.tables.Load(rec.SkillID) > 0.3 && rec.Confidence < 0.7 {
			out = append(out, mitigationFallback)
			break
		}
	}
	return out
}

func meanConfidence(recs []core.SkillRecommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range recs {
		sum += rec.Confidence
	}
	return sum / float64(len(recs))
}

// ValidatePlan checks that every phase dependency refers to an earlier phase,
// which also rules out cycles.
func ValidatePlan(plan core.ExecutionPlan) error {
	seen := make(map[string]bool, len(plan.Phases))
	for _, phase := range plan.Phases {
		if phase.ID == "" {
			return errors.New(errors.CodeStructural, "phase without id", nil)
		}
		if seen[phase.ID] {
			return errors.New(errors.CodeStructural,
				fmt.Sprintf("duplicate phase id %q", phase.ID), nil)
		}
		for _, dep := range phase.DependsOn {
			if !seen[dep] {
				return errors.New(errors.CodeStructural,
					fmt.Sprintf("phase %q depends on %q which does not appear earlier", phase.ID, dep), nil)
			}
		}
		seen[phase.ID] = true
	}
	return nil
}
