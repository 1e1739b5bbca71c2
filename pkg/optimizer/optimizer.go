// Package optimizer reorders skill recommendations and partitions them into
// parallelizable groups using the skill compatibility model.
package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/skills"
)

// CompatibilityThreshold is the minimum pairwise compatibility for two skills
// to share one parallel group. Pairs below it run in sequential sub-groups.
const CompatibilityThreshold = 0.75

// tieWindow is the score distance under which two recommendations are
// considered tied and reordered by ascending risk-factor count.
const tieWindow = 0.1

// Group names a set of skills that the planner turns into one phase.
type Group struct {
	Name     string
	SkillIDs []string
	Parallel bool
}

// Optimizer applies ordering and grouping policy to recommendation lists.
type Optimizer struct {
	tables  *config.Tables
	catalog *skills.Catalog
}

// New creates an optimizer over the given policy tables and skill catalog.
func New(tables *config.Tables, catalog *skills.Catalog) *Optimizer {
	return &Optimizer{tables: tables, catalog: catalog}
}

// Optimize returns the recommendations in execution-preference order together
// with named groups. Grouping is three-tier: zero-dependency analysis skills
// first (parallel), dependent skills next, learning skills always last.
func (o *Optimizer) Optimize(recs []core.SkillRecommendation, analysis core.TaskAnalysis) ([]core.SkillRecommendation, []Group) {
	ordered := o.order(recs, analysis)
	return ordered, o.group(ordered)
}

func (o *Optimizer) order(recs []core.SkillRecommendation, analysis core.TaskAnalysis) []core.SkillRecommendation {
	ordered := append([]core.SkillRecommendation(nil), recs...)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.Score()-b.Score()) < tieWindow {
			if len(a.RiskFactors) != len(b.RiskFactors) {
				return len(a.RiskFactors) < len(b.RiskFactors)
			}
			return false
		}
		return a.Score() > b.Score()
	})

	// Category affinity: skills whose class the category favors move to the
	// front, preserving relative order within each band.
	ranks := affinity[analysis.Category]
	sort.SliceStable(ordered, func(i, j int) bool {
		return o.classRank(ordered[i].SkillID, ranks) < o.classRank(ordered[j].SkillID, ranks)
	})
	return ordered
}

// affinity lists, per task category, the skill classes to pull forward.
// Classes absent from a category's list keep their score order behind them.
var affinity = map[core.TaskCategory][]skills.Class{
	core.CategoryCodeAnalysis:   {skills.ClassAnalysis},
	core.CategoryProblemSolving: {skills.ClassReasoning, skills.ClassAnalysis},
	core.CategoryOptimization:   {skills.ClassOptimization, skills.ClassAnalysis},
	core.CategoryLearning:       {skills.ClassLearning, skills.ClassAnalysis},
	core.CategoryComplexMulti:   {skills.ClassAnalysis, skills.ClassReasoning},
	core.CategoryResearch:       {skills.ClassAnalysis},
}

func (o *Optimizer) classRank(skillID string, ranks []skills.Class) int {
	class := o.catalog.Class(skillID)
	for i, want := range ranks {
		if class == want {
			return i
		}
	}
	return len(ranks)
}

func (o *Optimizer) group(ordered []core.SkillRecommendation) []Group {
	var analysisRecs, dependentRecs, learningRecs []core.SkillRecommendation
	for _, rec := range ordered {
		switch {
		case o.catalog.Class(rec.SkillID) == skills.ClassLearning:
			learningRecs = append(learningRecs, rec)
		case len(rec.Dependencies) == 0 && o.catalog.Class(rec.SkillID) == skills.ClassAnalysis:
			analysisRecs = append(analysisRecs, rec)
		default:
			dependentRecs = append(dependentRecs, rec)
		}
	}

	var groups []Group
	groups = append(groups, o.splitByCompatibility("parallel-analysis", analysisRecs)...)
	groups = append(groups, o.splitByCompatibility("post-analysis", dependentRecs)...)
	if len(learningRecs) > 0 {
		groups = append(groups, Group{
			Name:     "learning-phase",
			SkillIDs: ids(learningRecs),
			Parallel: false,
		})
	}
	return groups
}

// splitByCompatibility greedily assigns each skill to the first group whose
// members it is compatible with, opening a new sequential sub-group otherwise.
func (o *Optimizer) splitByCompatibility(name string, recs []core.SkillRecommendation) []Group {
	if len(recs) == 0 {
		return nil
	}
	var buckets [][]string
	for _, rec := range recs {
		placed := false
		for i, bucket := range buckets {
			if o.compatibleWithAll(rec.SkillID, bucket) {
				buckets[i] = append(bucket, rec.SkillID)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, []string{rec.SkillID})
		}
	}

	groups := make([]Group, 0, len(buckets))
	for i, bucket := range buckets {
		groupName := name
		if i > 0 {
			groupName = fmt.Sprintf("%s-%d", name, i+1)
		}
		groups = append(groups, Group{
			Name:     groupName,
			SkillIDs: bucket,
			Parallel: len(bucket) > 1,
		})
	}
	return groups
}

func (o *Optimizer) compatibleWithAll(skillID string, members []string) bool {
	for _, member := range members {
		if o.tables.Compatibility.Lookup(skillID, member) < CompatibilityThreshold {
			return false
		}
	}
	return true
}

func ids(recs []core.SkillRecommendation) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.SkillID)
	}
	return out
}
