// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/skills"
)

// demoExecutor builds a deterministic local executor for a catalog skill.
// It stands in for a real MCP tool server so the pipeline can be exercised
// end to end from the command line.
func demoExecutor(skill skills.Skill) core.SkillExecutor {
	return core.ExecutorFunc{
		ID: skill.ID,
		Fn: func(_ context.Context, input core.ExecutionInput) core.SkillExecutionResult {
			description, _ := input.TaskContext["description"].(string)
			payload := map[string]any{
				"skill":   skill.ID,
				"summary": demoSummary(skill, description),
			}
			if len(input.Artifacts) > 0 {
				consumed := make([]string, 0, len(input.Artifacts))
				for name := range input.Artifacts {
					consumed = append(consumed, name)
				}
				payload["consumed"] = consumed
			}

			confidence := 0.8
			var insights []string
			if len(input.Missing) > 0 {
				confidence = 0.6
				insights = append(insights,
					fmt.Sprintf("ran without inputs: %s", strings.Join(input.Missing, ", ")))
			}
			return core.SkillExecutionResult{
				SkillID:    skill.ID,
				Success:    true,
				Payload:    payload,
				Confidence: confidence,
				Insights:   insights,
			}
		},
	}
}

func demoSummary(skill skills.Skill, description string) string {
	switch skill.Class {
	case skills.ClassAnalysis:
		return fmt.Sprintf("%s examined %d characters of input", skill.Name, len(description))
	case skills.ClassReasoning:
		return fmt.Sprintf("%s derived a conclusion chain for the task", skill.Name)
	case skills.ClassOptimization:
		return fmt.Sprintf("%s proposed a reduced-load schedule", skill.Name)
	case skills.ClassLearning:
		return fmt.Sprintf("%s extracted recurring patterns from the run", skill.Name)
	default:
		return skill.Name + " completed"
	}
}

// registerExecutors fills the registry for every catalog skill. When an MCP
// client is available, skills whose ID matches a server tool are backed by
// the server; everything else gets a local demo executor.
func registerExecutors(ctx context.Context, registry *skills.Registry, catalog *skills.Catalog, mcpClient *skills.MCPClient) error {
	remote := map[string]bool{}
	if mcpClient != nil {
		tools, err := mcpClient.ListTools(ctx)
		if err != nil {
			return fmt.Errorf("list mcp tools: %w", err)
		}
		for _, tool := range tools {
			remote[tool.Name] = true
		}
	}

	for _, skill := range catalog.All() {
		var exec core.SkillExecutor
		if remote[skill.ID] {
			mcpExec, err := skills.NewMCPExecutor(skill, skill.ID, mcpClient)
			if err != nil {
				return err
			}
			exec = mcpExec
		} else {
			exec = demoExecutor(skill)
		}
		if err := registry.Register(exec); err != nil {
			return err
		}
	}
	return nil
}
