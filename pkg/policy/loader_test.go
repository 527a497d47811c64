package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const customRule = `# Deployments to the local sink must stay under one kilobyte.
# severity: error
package custom.policies.tiny

import rego.v1

deny contains violation if {
	input.sink == "local"
	input.payload_size > 1024
	violation := {
		"message": "local payloads are capped at 1 KiB",
		"severity": "error",
	}
}
`

func writeRule(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing rule file: %v", err)
	}
	return path
}

func TestLoadRulesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "tiny-local.rego", customRule)

	rules, err := LoadRules([]string{dir})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}

	rule := rules[0]
	if rule.Name != "tiny-local" {
		t.Errorf("name = %s, want tiny-local", rule.Name)
	}
	if rule.Severity != SeverityError {
		t.Errorf("severity = %s, want error", rule.Severity)
	}
	if rule.Description != "Deployments to the local sink must stay under one kilobyte." {
		t.Errorf("description = %q", rule.Description)
	}
	if !rule.Enabled {
		t.Error("loaded rules should start enabled")
	}
}

func TestLoadedRuleBlocksThroughGate(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "tiny-local.rego", customRule)

	gate, err := NewGate(Config{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	decision, err := gate.Admit(context.Background(), Input{Sink: "local", PayloadSize: 4096})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if decision.Allowed {
		t.Fatal("oversized local payload was allowed")
	}
	blocking, ok := decision.Blocking()
	if !ok {
		t.Fatal("no blocking violation")
	}
	if blocking.Rule != "tiny-local" {
		t.Errorf("blocking rule = %s, want tiny-local", blocking.Rule)
	}

	small, err := gate.Admit(context.Background(), Input{Sink: "local", PayloadSize: 512})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !small.Allowed {
		t.Errorf("small payload blocked: %v", small.Violations)
	}
}

func TestLoadRulesDefaultsSeverity(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "plain.rego", "package custom.plain\n\nimport rego.v1\n\ndeny contains msg if {\n\tfalse\n\tmsg := \"never\"\n}\n")

	rules, err := LoadRules([]string{dir})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if rules[0].Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning default", rules[0].Severity)
	}
	if rules[0].Description != "" {
		t.Errorf("description = %q, want empty", rules[0].Description)
	}
}

func TestLoadRulesSkipsNonRego(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "rule.rego", customRule)
	writeRule(t, dir, "notes.txt", "not a rule")
	writeRule(t, dir, "bundle.json", "{}")

	rules, err := LoadRules([]string{dir})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1 (.rego only)", len(rules))
	}
}

func TestLoadRulesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRule(t, dir, "one.rego", customRule)

	rules, err := LoadRules([]string{path})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "one" {
		t.Fatalf("rules = %+v, want single rule named one", rules)
	}
}

func TestLoadRulesMissingPath(t *testing.T) {
	if _, err := LoadRules([]string{"/does/not/exist"}); err == nil {
		t.Fatal("expected error for missing path")
	}
}
