package planner

import (
	"fmt"
	"sort"

	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/skills"
)

// DependencyGraph is the validated artifact-dependency graph over a skill
// selection. Edges run from producer to consumer. Built before planning so
// malformed declarations surface as structural errors, not runtime surprises.
type DependencyGraph struct {
	nodes      []string
	edges      map[string][]string
	unresolved map[string][]string
}

// BuildDependencyGraph resolves each recommendation's declared artifact
// dependencies against the selection and rejects cycles. Dependencies on
// skills outside the selection are kept as unresolved; the execution engine
// reports them as missing artifacts rather than refusing to run.
func BuildDependencyGraph(recs []core.SkillRecommendation) (*DependencyGraph, error) {
	g := &DependencyGraph{
		edges:      make(map[string][]string, len(recs)),
		unresolved: make(map[string][]string),
	}
	selected := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if selected[rec.SkillID] {
			return nil, errors.New(errors.CodeStructural,
				fmt.Sprintf("duplicate skill %q in selection", rec.SkillID), nil)
		}
		selected[rec.SkillID] = true
		g.nodes = append(g.nodes, rec.SkillID)
	}

	for _, rec := range recs {
		for _, artifact := range rec.Dependencies {
			producer := skills.SkillForArtifact(artifact)
			if producer == rec.SkillID {
				return nil, errors.New(errors.CodeStructural,
					fmt.Sprintf("skill %q depends on its own output", rec.SkillID), nil)
			}
			if !selected[producer] {
				g.unresolved[rec.SkillID] = append(g.unresolved[rec.SkillID], artifact)
				continue
			}
			g.edges[producer] = append(g.edges[producer], rec.SkillID)
		}
	}

	if cycle := g.findCycle(); len(cycle) > 0 {
		return nil, errors.New(errors.CodeStructural,
			fmt.Sprintf("dependency cycle: %v", cycle), nil)
	}
	return g, nil
}

// Dependents returns the skills consuming the given skill's artifact.
func (g *DependencyGraph) Dependents(skillID string) []string {
	return g.edges[skillID]
}

// Unresolved returns artifact names a skill declares but no selected skill
// produces, sorted for determinism.
func (g *DependencyGraph) Unresolved(skillID string) []string {
	out := append([]string(nil), g.unresolved[skillID]...)
	sort.Strings(out)
	return out
}

// findCycle runs a three-color depth-first search and returns one cycle if any.
func (g *DependencyGraph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string)

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = gray
		for _, next := range g.edges[node] {
			switch color[next] {
			case white:
				parent[next] = node
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			case gray:
				cycle := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				return cycle
			}
		}
		color[node] = black
		return nil
	}

	for _, node := range g.nodes {
		if color[node] == white {
			if cycle := visit(node); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
