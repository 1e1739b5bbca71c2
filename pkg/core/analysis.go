package core

import "time"

// TaskCategory classifies what kind of work a task asks for.
type TaskCategory string

const (
	CategoryCodeAnalysis    TaskCategory = "code-analysis"
	CategoryProblemSolving  TaskCategory = "problem-solving"
	CategoryOptimization    TaskCategory = "optimization"
	CategoryLearning        TaskCategory = "learning"
	CategoryComplexMulti    TaskCategory = "complex-multistep"
	CategoryResearch        TaskCategory = "research"
)

// Categories lists every task category.
func Categories() []TaskCategory {
	return []TaskCategory{
		CategoryCodeAnalysis,
		CategoryProblemSolving,
		CategoryOptimization,
		CategoryLearning,
		CategoryComplexMulti,
		CategoryResearch,
	}
}

// Complexity grades the estimated difficulty of a task.
type Complexity string

const (
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
	ComplexityExtreme Complexity = "extreme"
)

// TaskAnalysis is the analyzer's classification of a task. It is immutable
// once computed.
type TaskAnalysis struct {
	Category               TaskCategory
	Complexity             Complexity
	Domains                []string
	RequiredSkills         []string
	EstimatedCognitiveLoad float64
	Confidence             float64
	Reasoning              string
}

// SkillRecommendation proposes one skill for a task, scored against the
// confidence model.
type SkillRecommendation struct {
	SkillID              string
	Priority             float64
	Confidence           float64
	ExpectedContribution float64
	RiskFactors          []string
	// Dependencies names the artifacts that must exist before the skill runs.
	Dependencies []string
}

// Score is the ranking key for recommendations.
func (r SkillRecommendation) Score() float64 {
	return r.Priority * r.Confidence
}

// CognitivePhase is one scheduling step of an execution plan. Phases form a
// DAG and are emitted in dependency order.
type CognitivePhase struct {
	ID            string
	Name          string
	SkillIDs      []string
	Parallel      bool
	EstimatedTime time.Duration
	// DependsOn lists phase IDs that must complete before this phase starts.
	DependsOn []string
	// Outputs names the artifacts the phase produces.
	Outputs []string
}

// ExecutionPlan is an ordered, validated sequence of cognitive phases.
// Plan construction is a pure function of its inputs.
type ExecutionPlan struct {
	Phases             []CognitivePhase
	TotalEstimatedTime time.Duration
	ConfidenceScore    float64
	RiskMitigation     []string
}

// SkillExecutionResult is the outcome of one skill invocation as reported by
// its executor.
type SkillExecutionResult struct {
	SkillID       string
	Success       bool
	Payload       any
	ExecutionTime time.Duration
	Confidence    float64
	Insights      []string
	Errors        []string
}

// OrchestrationResult is the full outcome of one Orchestrate call. A result
// with per-skill errors is a partial success, not a failure.
type OrchestrationResult struct {
	TaskID          string
	Status          TaskStatus
	Analysis        TaskAnalysis
	Recommendations []SkillRecommendation
	Plan            *ExecutionPlan
	Results         []SkillExecutionResult
	Insights        []string
	Duration        time.Duration
}

// Succeeded reports whether every executed skill completed without errors.
func (r *OrchestrationResult) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}
