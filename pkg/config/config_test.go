package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Orchestrator.ConfidenceHistoryLimit != 20 {
		t.Fatalf("unexpected history limit: %d", cfg.Orchestrator.ConfidenceHistoryLimit)
	}
	if cfg.Orchestrator.TaskHistoryLimit != 256 {
		t.Fatalf("unexpected task history limit: %d", cfg.Orchestrator.TaskHistoryLimit)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metis.yaml")
	content := `
log:
  level: debug
  format: json
telemetry:
  exporter: otlp
  otlp_endpoint: localhost:4317
  otlp_insecure: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("file values not applied: %+v", cfg.Log)
	}
	if cfg.Telemetry.Exporter != "otlp" || cfg.Telemetry.OTLPEndpoint != "localhost:4317" {
		t.Fatalf("telemetry values not applied: %+v", cfg.Telemetry)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("METIS_LOG_LEVEL", "warn")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("env override not applied: %s", cfg.Log.Level)
	}
}

func TestLoadTablesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `
base_confidence:
  default: 0.55
compatibility:
  default: 0.45
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	if tables.BaseConfidence.Default != 0.55 {
		t.Fatalf("override not applied: %v", tables.BaseConfidence.Default)
	}
	if tables.Compatibility.Default != 0.45 {
		t.Fatalf("override not applied: %v", tables.Compatibility.Default)
	}
	// Untouched sections keep their defaults.
	if len(tables.Categories) != 6 {
		t.Fatalf("defaults lost: %d categories", len(tables.Categories))
	}
}
