package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/resilience"
)

// ToolCaller abstracts MCP tool execution for the executor adapter.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

// MCPExecutor wraps an MCP tool as a core.SkillExecutor. It honors the
// executor contract: transport and tool errors are returned as failed results,
// never raised.
type MCPExecutor struct {
	skill  Skill
	tool   string
	caller ToolCaller
	retry  resilience.RetryConfig
}

// NewMCPExecutor builds an executor backed by the named MCP tool.
func NewMCPExecutor(skill Skill, toolName string, caller ToolCaller) (*MCPExecutor, error) {
	if err := skill.Validate(); err != nil {
		return nil, err
	}
	if toolName == "" {
		return nil, errors.New("mcp tool name is required")
	}
	if caller == nil {
		return nil, errors.New("tool caller is required")
	}
	return &MCPExecutor{
		skill:  skill,
		tool:   toolName,
		caller: caller,
		retry:  resilience.DefaultRetryConfig(),
	}, nil
}

// WithRetry overrides the transport retry policy.
func (e *MCPExecutor) WithRetry(retry resilience.RetryConfig) *MCPExecutor {
	e.retry = retry
	return e
}

// SkillID returns the catalog id of the wrapped skill.
func (e *MCPExecutor) SkillID() string { return e.skill.ID }

// Execute invokes the MCP tool with the execution input and converts the
// outcome to a skill execution result.
func (e *MCPExecutor) Execute(ctx context.Context, input core.ExecutionInput) core.SkillExecutionResult {
	start := time.Now()
	args := map[string]any{
		"task_id": input.TaskID,
		"context": input.TaskContext,
	}
	if len(input.Artifacts) > 0 {
		args["artifacts"] = input.Artifacts
	}
	if len(input.Missing) > 0 {
		args["missing_artifacts"] = input.Missing
	}

	var result *mcp.CallToolResult
	err := e.retry.Do(ctx, func() error {
		var callErr error
		result, callErr = e.caller.CallTool(ctx, e.tool, args)
		return callErr
	})
	elapsed := time.Since(start)
	if err != nil {
		return failedResult(e.skill.ID, elapsed, fmt.Sprintf("mcp call failed: %v", err))
	}
	return e.convert(result, elapsed)
}

func (e *MCPExecutor) convert(result *mcp.CallToolResult, elapsed time.Duration) core.SkillExecutionResult {
	if result == nil {
		return failedResult(e.skill.ID, elapsed, "mcp tool returned no result")
	}
	if result.IsError {
		return failedResult(e.skill.ID, elapsed, "mcp tool error: "+extractText(result.Content))
	}

	out := core.SkillExecutionResult{
		SkillID:       e.skill.ID,
		Success:       true,
		ExecutionTime: elapsed,
		Confidence:    0.75,
	}
	if result.StructuredContent != nil {
		out.Payload = result.StructuredContent
		if fields, ok := result.StructuredContent.(map[string]any); ok {
			if conf, ok := fields["confidence"].(float64); ok && conf >= 0 && conf <= 1 {
				out.Confidence = conf
			}
			if raw, ok := fields["insights"].([]any); ok {
				for _, item := range raw {
					if s, ok := item.(string); ok {
						out.Insights = append(out.Insights, s)
					}
				}
			}
		}
	} else if text := extractText(result.Content); text != "" {
		out.Payload = text
	}
	return out
}

func failedResult(skillID string, elapsed time.Duration, msg string) core.SkillExecutionResult {
	return core.SkillExecutionResult{
		SkillID:       skillID,
		Success:       false,
		ExecutionTime: elapsed,
		Confidence:    0,
		Errors:        []string{msg},
	}
}

func extractText(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ core.SkillExecutor = (*MCPExecutor)(nil)
