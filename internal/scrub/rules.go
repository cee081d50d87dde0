package scrub

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/scrub/internal/secrets"
)

const (
	ruleFilePermissionsConstant        = 0o600
	ruleFileWriteErrorTemplateConstant = "unable to write replacement rules to %s: %w"
)

// RuleFileWriter serializes replacement rules for the history rewriting tools.
type RuleFileWriter struct {
	patterns []secrets.Pattern
}

// NewRuleFileWriter constructs a RuleFileWriter over the provided patterns.
func NewRuleFileWriter(patterns []secrets.Pattern) *RuleFileWriter {
	return &RuleFileWriter{patterns: patterns}
}

// Write overwrites the rule file on every run and returns its absolute path.
// The content is a pure function of the configured patterns.
func (writer *RuleFileWriter) Write(repositoryPath string, ruleFileName string) (string, error) {
	ruleFilePath := filepath.Join(repositoryPath, ruleFileName)
	ruleFileContent := secrets.RuleFileContent(writer.patterns)
	if writeError := os.WriteFile(ruleFilePath, []byte(ruleFileContent), ruleFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(ruleFileWriteErrorTemplateConstant, ruleFileName, writeError)
	}
	absolutePath, absoluteError := filepath.Abs(ruleFilePath)
	if absoluteError != nil {
		return ruleFilePath, nil
	}
	return absolutePath, nil
}
