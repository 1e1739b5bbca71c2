// Package skills defines the skill catalog and executor registry.
package skills

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Class tags a skill for scheduling. The optimizer groups analysis-class
// skills into the parallel-analysis phase and learning-class skills into the
// final learning phase.
type Class string

const (
	ClassAnalysis     Class = "analysis"
	ClassReasoning    Class = "reasoning"
	ClassOptimization Class = "optimization"
	ClassLearning     Class = "learning"
)

// Skill describes one catalog entry. Executors are registered separately.
type Skill struct {
	ID          string
	Name        string
	Class       Class
	Domains     []string
	Description string
}

// Artifact returns the artifact name the skill produces.
func Artifact(skillID string) string {
	return skillID + ".result"
}

// SkillForArtifact returns the skill id an artifact name refers to.
func SkillForArtifact(artifact string) string {
	return strings.TrimSuffix(artifact, ".result")
}

const (
	maxIDLen          = 64
	maxDescriptionLen = 1024
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate checks a single skill definition.
func (s Skill) Validate() error {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return errors.New("skill id is required")
	}
	if utf8.RuneCountInString(id) > maxIDLen {
		return fmt.Errorf("skill id exceeds %d characters", maxIDLen)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("skill id must match %s", idPattern.String())
	}
	switch s.Class {
	case ClassAnalysis, ClassReasoning, ClassOptimization, ClassLearning:
	default:
		return fmt.Errorf("skill %q has unknown class %q", id, s.Class)
	}
	if utf8.RuneCountInString(s.Description) > maxDescriptionLen {
		return fmt.Errorf("skill %q description exceeds %d characters", id, maxDescriptionLen)
	}
	return nil
}

// SpecializesIn reports whether the skill declares any of the given domains.
func (s Skill) SpecializesIn(domains []string) bool {
	for _, want := range domains {
		for _, have := range s.Domains {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

// Catalog is an ordered, validated set of skills.
type Catalog struct {
	ordered []Skill
	byID    map[string]Skill
}

// NewCatalog builds a catalog, rejecting duplicates and invalid entries.
func NewCatalog(entries []Skill) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Skill, len(entries))}
	for _, skill := range entries {
		if err := skill.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[skill.ID]; dup {
			return nil, fmt.Errorf("duplicate skill id %q", skill.ID)
		}
		c.byID[skill.ID] = skill
		c.ordered = append(c.ordered, skill)
	}
	return c, nil
}

// Get returns the skill with the given id.
func (c *Catalog) Get(id string) (Skill, bool) {
	skill, ok := c.byID[id]
	return skill, ok
}

// Class returns the declared class of a skill, or empty when unknown.
func (c *Catalog) Class(id string) Class {
	if skill, ok := c.byID[id]; ok {
		return skill.Class
	}
	return ""
}

// All returns the catalog entries in declaration order.
func (c *Catalog) All() []Skill {
	return append([]Skill(nil), c.ordered...)
}

// IDs returns every skill id in declaration order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.ordered))
	for _, skill := range c.ordered {
		out = append(out, skill.ID)
	}
	return out
}

// Default builds the built-in catalog.
func Default() *Catalog {
	catalog, err := NewCatalog([]Skill{
		{ID: "code-analysis", Name: "Code Analysis", Class: ClassAnalysis,
			Domains:     []string{"software"},
			Description: "Static inspection of source fragments supplied in the task context."},
		{ID: "content-analysis", Name: "Content Analysis", Class: ClassAnalysis,
			Domains:     []string{"general", "research"},
			Description: "Structural and semantic analysis of free-form task content."},
		{ID: "system-diagnostics", Name: "System Diagnostics", Class: ClassAnalysis,
			Domains:     []string{"systems"},
			Description: "Telemetry-backed inspection of runtime behavior."},
		{ID: "structured-reasoning", Name: "Structured Reasoning", Class: ClassReasoning,
			Domains:     []string{"general"},
			Description: "Deliberate multi-step reasoning over analysis outputs."},
		{ID: "load-optimization", Name: "Load Optimization", Class: ClassOptimization,
			Domains:     []string{"performance", "systems"},
			Description: "Rebalancing recommendations when cognitive load runs high."},
		{ID: "pattern-learning", Name: "Pattern Learning", Class: ClassLearning,
			Domains:     []string{"general"},
			Description: "Distills reusable patterns from completed executions."},
	})
	if err != nil {
		// The built-in catalog is static; a failure here is a programming error.
		panic(err)
	}
	return catalog
}
