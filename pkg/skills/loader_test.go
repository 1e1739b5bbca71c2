package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSkillFile(t *testing.T, root, dir, content string) {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeSkillFile(t, root, "graph-analysis", `---
id: graph-analysis
name: Graph Analysis
class: analysis
domains: [Software, software, data]
---
Analyzes dependency graphs.
`)
	skill, err := LoadFile(filepath.Join(root, "graph-analysis", "SKILL.md"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if skill.ID != "graph-analysis" || skill.Class != ClassAnalysis {
		t.Fatalf("unexpected skill %+v", skill)
	}
	if len(skill.Domains) != 2 {
		t.Fatalf("domains must be lowercased and deduplicated: %v", skill.Domains)
	}
	if skill.Description != "Analyzes dependency graphs." {
		t.Fatalf("body should be used as description: %q", skill.Description)
	}
}

func TestLoadFileRejectsDirMismatch(t *testing.T) {
	root := t.TempDir()
	writeSkillFile(t, root, "wrong-dir", `---
id: graph-analysis
class: analysis
---
`)
	if _, err := LoadFile(filepath.Join(root, "wrong-dir", "SKILL.md")); err == nil {
		t.Fatal("expected directory mismatch error")
	}
}

func TestLoadFileRejectsMissingFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeSkillFile(t, root, "no-front", "just a markdown body\n")
	if _, err := LoadFile(filepath.Join(root, "no-front", "SKILL.md")); err == nil {
		t.Fatal("expected frontmatter error")
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeSkillFile(t, root, "alpha-skill", `---
id: alpha-skill
class: reasoning
description: First.
---
`)
	writeSkillFile(t, root, "beta-skill", `---
id: beta-skill
class: optimization
description: Second.
---
`)
	// Directories without SKILL.md are skipped.
	if err := os.MkdirAll(filepath.Join(root, "not-a-skill"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	loaded, err := LoadDir(root)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(loaded))
	}
	if loaded[0].Name != "alpha-skill" {
		t.Fatalf("name should default to id: %q", loaded[0].Name)
	}
}
