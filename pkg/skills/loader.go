package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir scans a directory for skill subdirectories containing SKILL.md and
// returns the catalog entries found there.
func LoadDir(root string) ([]Skill, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var out []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name(), "SKILL.md")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		skill, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, skill)
	}
	return out, nil
}

// LoadFile parses a single SKILL.md file with YAML frontmatter.
func LoadFile(path string) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, err
	}
	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return Skill{}, fmt.Errorf("%s: %w", path, err)
	}
	var parsed frontmatter
	if err := yaml.Unmarshal([]byte(fm), &parsed); err != nil {
		return Skill{}, fmt.Errorf("%s: parse frontmatter: %w", path, err)
	}
	skill := Skill{
		ID:          strings.TrimSpace(parsed.ID),
		Name:        strings.TrimSpace(parsed.Name),
		Class:       Class(strings.TrimSpace(parsed.Class)),
		Domains:     normalizeDomains(parsed.Domains),
		Description: strings.TrimSpace(parsed.Description),
	}
	if skill.Description == "" {
		skill.Description = strings.TrimSpace(body)
	}
	if skill.Name == "" {
		skill.Name = skill.ID
	}
	if err := skill.Validate(); err != nil {
		return Skill{}, fmt.Errorf("%s: %w", path, err)
	}
	if dir := filepath.Base(filepath.Dir(path)); dir != skill.ID {
		return Skill{}, fmt.Errorf("%s: skill id must match directory name (%s)", path, dir)
	}
	return skill, nil
}

type frontmatter struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Class       string   `yaml:"class"`
	Domains     []string `yaml:"domains"`
	Description string   `yaml:"description"`
}

func splitFrontmatter(content string) (string, string, error) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "---") {
		return "", "", errors.New("missing frontmatter")
	}
	parts := strings.SplitN(trimmed, "---", 3)
	if len(parts) < 3 {
		return "", "", errors.New("invalid frontmatter")
	}
	return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

func normalizeDomains(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true
		out = append(out, domain)
	}
	return out
}
