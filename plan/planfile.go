package plan

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ReadFile loads a plan artifact from disk.
func ReadFile(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return p, nil
}

// WriteFile writes a plan artifact in the tools' plan-line syntax. When the
// destination already exists with different content, the returned string is
// a unified diff of the replacement; otherwise it is empty.
func WriteFile(path string, p Plan) (string, error) {
	newText := p.String()
	if len(p) > 0 {
		newText += "\n"
	}

	var diffText string
	if oldBytes, err := os.ReadFile(path); err == nil {
		diff := difflib.UnifiedDiff{
			A:        strings.Split(string(oldBytes), "\n"),
			B:        strings.Split(newText, "\n"),
			FromFile: path,
			ToFile:   path + " (new)",
			Context:  3,
		}
		diffText, err = difflib.GetUnifiedDiffString(diff)
		if err != nil {
			return "", fmt.Errorf("diff plan %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(newText), 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return diffText, nil
}

// FilterComments copies a plan file to dst with comment and blank lines
// removed. VAL rejects files containing ';' comment lines, so adapters hand
// it a filtered copy and leave the original untouched.
func FilterComments(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write filtered plan: %w", err)
	}
	return nil
}
