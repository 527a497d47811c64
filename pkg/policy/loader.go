package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadRules reads admission rules from .rego files. Each path may be a
// single file or a directory walked recursively. Non-rego files are
// skipped.
func LoadRules(paths []string) ([]Rule, error) {
	var rules []Rule
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			rule, err := loadRuleFile(path)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
			continue
		}

		err = filepath.WalkDir(path, func(file string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(file, ".rego") {
				return nil
			}
			rule, err := loadRuleFile(file)
			if err != nil {
				return err
			}
			rules = append(rules, rule)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return rules, nil
}

func loadRuleFile(path string) (Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rule{}, fmt.Errorf("reading rule %s: %w", path, err)
	}

	source := string(data)
	rule := Rule{
		Name:        strings.TrimSuffix(filepath.Base(path), ".rego"),
		Description: ruleDescription(source),
		Rego:        source,
		Severity:    SeverityWarning,
		Enabled:     true,
	}
	if sev := ruleSeverity(source); sev != "" {
		rule.Severity = sev
	}
	return rule, nil
}

// ruleDescription collects the leading comment block, stopping at the
// first non-comment line. A "severity:" comment is metadata, not prose.
func ruleDescription(source string) string {
	var description strings.Builder
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if comment == "" || strings.HasPrefix(comment, "severity:") {
			continue
		}
		if description.Len() > 0 {
			description.WriteString(" ")
		}
		description.WriteString(comment)
	}
	return description.String()
}

// ruleSeverity honors a "# severity: error" style comment.
func ruleSeverity(source string) Severity {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if value, ok := strings.CutPrefix(comment, "severity:"); ok {
			switch sev := Severity(strings.TrimSpace(value)); sev {
			case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
				return sev
			}
		}
	}
	return ""
}
