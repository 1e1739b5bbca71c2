// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements the metis CLI: it analyzes, plans, and executes a
// task through the orchestration pipeline from the command line.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/orchestrator"
	"github.com/metislabs/metis/pkg/planner"
	"github.com/metislabs/metis/pkg/skills"
	"github.com/metislabs/metis/pkg/telemetry"

	_ "modernc.org/sqlite"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}

	switch args[0] {
	case "run":
		runTask(ctx, cfg, args[1:], core.ModeExecute)
	case "analyze":
		runTask(ctx, cfg, args[1:], core.ModeAnalyzeOnly)
	case "skills":
		runSkills(cfg)
	case "version":
		fmt.Println("metis " + version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var global globalFlags
	fs := flag.NewFlagSet("metis", flag.ContinueOnError)
	fs.StringVar(&global.ConfigPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&global.Help, "help", false, "show usage")
	if err := fs.Parse(args); err != nil {
		return global, nil, err
	}
	return global, fs.Args(), nil
}

// contextValues collects repeated -context key=value flags.
type contextValues map[string]any

func (c contextValues) String() string { return fmt.Sprintf("%v", map[string]any(c)) }

func (c contextValues) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("context entry %q is not key=value", value)
	}
	c[key] = val
	return nil
}

func runTask(ctx context.Context, cfg *config.Config, args []string, mode core.TaskMode) {
	taskContext := contextValues{}
	fs := flag.NewFlagSet("metis run", flag.ContinueOnError)
	modeFlag := fs.String("mode", string(mode), "task mode: analyze-only, execute, analyze-and-execute")
	jsonOut := fs.Bool("json", false, "print the full result as JSON")
	maxLoad := fs.Float64("max-load", 0, "cap the aggregate cognitive load of the plan (0 = no cap)")
	preferSpeed := fs.Bool("prefer-speed", false, "trim the skill selection to the strongest candidates")
	preferAccuracy := fs.Bool("prefer-accuracy", false, "keep the full eligible skill selection")
	noLearning := fs.Bool("no-learning", false, "skip the post-execution learning update")
	noInsights := fs.Bool("no-insights", false, "skip meta-insight generation")
	mcpServer := fs.String("mcp-server", "", "MCP server command to back skill execution, e.g. \"npx my-tools\"")
	currentLoad := fs.Float64("load", 0, "current system cognitive load reported to the recommender")
	fs.Var(taskContext, "context", "task context entry as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	description := strings.Join(fs.Args(), " ")

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.Exporter != "none" {
		shutdown, err := telemetry.Init("metis", version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			fatal(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
			}
		}()
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		fatal(err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithCatalog(catalog),
		orchestrator.WithLogger(logger),
	}

	if cfg.Orchestrator.TablesFile != "" {
		tables, err := config.LoadTables(cfg.Orchestrator.TablesFile)
		if err != nil {
			fatal(err)
		}
		opts = append(opts, orchestrator.WithTables(tables))
	}
	if cfg.Orchestrator.ConfidenceHistoryLimit > 0 {
		opts = append(opts, orchestrator.WithConfidenceHistoryLimit(cfg.Orchestrator.ConfidenceHistoryLimit))
	}
	if cfg.Orchestrator.TaskHistoryLimit > 0 {
		opts = append(opts, orchestrator.WithTaskHistoryLimit(cfg.Orchestrator.TaskHistoryLimit))
	}
	if cfg.Orchestrator.AuditDSN != "" {
		db, err := sql.Open("sqlite", cfg.Orchestrator.AuditDSN)
		if err != nil {
			fatal(err)
		}
		defer db.Close()
		store, err := planner.NewSQLiteAuditStore(db)
		if err != nil {
			fatal(err)
		}
		opts = append(opts, orchestrator.WithAudit(store))
	}
	if *currentLoad > 0 {
		opts = append(opts, orchestrator.WithMetricsProvider(core.StaticMetrics{Load: *currentLoad}))
	}

	metrics, err := telemetry.NewOrchestrationMetrics()
	if err != nil {
		fatal(err)
	}
	opts = append(opts, orchestrator.WithOrchestrationMetrics(metrics))

	var mcpClient *skills.MCPClient
	if *mcpServer != "" {
		parts := strings.Fields(*mcpServer)
		mcpClient, err = skills.NewStdioMCPClient(ctx, parts[0], parts[1:])
		if err != nil {
			fatal(err)
		}
		defer mcpClient.Close()
	}

	registry := skills.NewRegistry()
	if err := registerExecutors(ctx, registry, catalog, mcpClient); err != nil {
		fatal(err)
	}
	opts = append(opts, orchestrator.WithRegistry(registry))

	o, err := orchestrator.New(opts...)
	if err != nil {
		fatal(err)
	}

	taskMode := core.TaskMode(*modeFlag)
	switch taskMode {
	case core.ModeAnalyzeOnly, core.ModeExecute, core.ModeAnalyzeAndExecute:
	default:
		fatal(fmt.Errorf("unknown mode %q", *modeFlag))
	}

	task := core.NewTask(description, taskMode)
	for key, val := range taskContext {
		task.Context[key] = val
	}
	task.Preferences.MaxCognitiveLoad = *maxLoad
	task.Preferences.PreferSpeed = *preferSpeed
	task.Preferences.PreferAccuracy = *preferAccuracy
	task.Preferences.EnableLearning = !*noLearning
	task.Preferences.EnableInsights = !*noInsights

	result, err := o.Orchestrate(ctx, task)
	if err != nil {
		fatal(err)
	}

	if *jsonOut {
		printJSON(result)
		return
	}
	printResult(result)
}

func loadCatalog(cfg *config.Config) (*skills.Catalog, error) {
	if cfg.Orchestrator.SkillsDir == "" {
		return skills.Default(), nil
	}
	entries, err := skills.LoadDir(cfg.Orchestrator.SkillsDir)
	if err != nil {
		return nil, err
	}
	return skills.NewCatalog(entries)
}

func runSkills(cfg *config.Config) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		fatal(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCLASS\tDOMAINS")
	for _, skill := range catalog.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			skill.ID, skill.Name, skill.Class, strings.Join(skill.Domains, ","))
	}
	w.Flush()
}

func printResult(result *core.OrchestrationResult) {
	fmt.Printf("task %s: %s\n", result.TaskID, result.Status)
	fmt.Printf("  category:   %s (%s complexity, load %.2f, confidence %.2f)\n",
		result.Analysis.Category, result.Analysis.Complexity,
		result.Analysis.EstimatedCognitiveLoad, result.Analysis.Confidence)
	if len(result.Analysis.Domains) > 0 {
		fmt.Printf("  domains:    %s\n", strings.Join(result.Analysis.Domains, ", "))
	}
	fmt.Printf("  reasoning:  %s\n", result.Analysis.Reasoning)

	if len(result.Recommendations) > 0 {
		fmt.Println("  skills:")
		for _, rec := range result.Recommendations {
			fmt.Printf("    %-22s priority %.2f  confidence %.2f\n",
				rec.SkillID, rec.Priority, rec.Confidence)
		}
	}
	if result.Plan != nil {
		fmt.Printf("  plan:       %d phases, estimated %s, confidence %.2f\n",
			len(result.Plan.Phases), result.Plan.TotalEstimatedTime, result.Plan.ConfidenceScore)
		for _, phase := range result.Plan.Phases {
			kind := "sequential"
			if phase.Parallel {
				kind = "parallel"
			}
			fmt.Printf("    %-10s %-20s %-10s %s\n",
				phase.ID, phase.Name, kind, strings.Join(phase.SkillIDs, ", "))
		}
	}
	if len(result.Results) > 0 {
		fmt.Println("  execution:")
		for _, res := range result.Results {
			status := "ok"
			if !res.Success {
				status = "failed: " + strings.Join(res.Errors, "; ")
			}
			fmt.Printf("    %-22s %-8s confidence %.2f\n", res.SkillID, status, res.Confidence)
		}
	}
	for _, insight := range result.Insights {
		fmt.Printf("  insight:    %s\n", insight)
	}
	fmt.Printf("  duration:   %s\n", result.Duration)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	if me := errors.AsMetisError(err); me != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", me.Code, me.Message)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`metis - meta-cognitive task orchestration engine

Usage:
  metis [global flags] <command> [command flags] [arguments]

Commands:
  run <description>      analyze, plan, and execute a task
  analyze <description>  analyze and plan without executing
  skills                 list the skill catalog
  version                print the version
  help                   show this message

Global flags:
  -config string         path to a YAML config file (env: METIS_*)

Run flags:
  -mode string           analyze-only, execute, or analyze-and-execute
  -context key=value     add a task context entry (repeatable)
  -max-load float        cap the plan's aggregate cognitive load
  -prefer-speed          trim the skill selection to the strongest candidates
  -prefer-accuracy       keep the full eligible skill selection
  -no-learning           skip the post-execution learning update
  -no-insights           skip meta-insight generation
  -mcp-server string     back skill execution with an MCP server command
  -load float            current system cognitive load for the recommender
  -json                  print the full result as JSON

Examples:
  metis run -context code=@main.go "Analyze the quality of this function"
  metis analyze "Debug intermittent 500 errors in production"
  metis run -prefer-speed "Analyze, optimize, and learn from this process"
`)
}
