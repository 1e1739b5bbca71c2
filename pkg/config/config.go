// Package config loads Metis configuration and the static policy tables.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log          LogConfig          `koanf:"log"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp, none
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type OrchestratorConfig struct {
	// ConfidenceHistoryLimit bounds each skill's confidence history.
	ConfidenceHistoryLimit int `koanf:"confidence_history_limit"`
	// TaskHistoryLimit bounds the learning loop's task summary ring buffer.
	TaskHistoryLimit int `koanf:"task_history_limit"`
	// SkillsDir optionally points at a directory of SKILL.md catalog entries.
	SkillsDir string `koanf:"skills_dir"`
	// TablesFile optionally overrides the built-in policy tables.
	TablesFile string `koanf:"tables_file"`
	// AuditDSN enables the SQLite audit store when non-empty.
	AuditDSN string `koanf:"audit_dsn"`
}

// Load reads configuration from an optional YAML file and METIS_-prefixed
// environment variables, over built-in defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "stdout")
	k.Set("orchestrator.confidence_history_limit", 20)
	k.Set("orchestrator.task_history_limit", 256)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// METIS_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider("METIS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "METIS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
