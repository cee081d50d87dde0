package scrub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/secrets"
)

const (
	snapshotScanErrorTemplateConstant      = "snapshot scan for pattern %s failed: %w"
	secretsDetectedMessageTemplateConstant = "secrets matching %s present in the working tree; remove them before rewriting history"
	trackedFileListErrorTemplateConstant   = "unable to list tracked files: %w"
)

// ScanHit locates a secret pattern match in the current snapshot.
type ScanHit struct {
	PatternName string
	Path        string
	LineNumber  string
}

// SecretsDetectedError indicates the working tree still contains secrets.
type SecretsDetectedError struct {
	Hits []ScanHit
}

// Error names the matched patterns.
func (detectedError SecretsDetectedError) Error() string {
	patternNames := []string{}
	seenPatterns := map[string]struct{}{}
	for _, hit := range detectedError.Hits {
		if _, seen := seenPatterns[hit.PatternName]; seen {
			continue
		}
		seenPatterns[hit.PatternName] = struct{}{}
		patternNames = append(patternNames, hit.PatternName)
	}
	return fmt.Sprintf(secretsDetectedMessageTemplateConstant, strings.Join(patternNames, ", "))
}

// SnapshotScanner searches tracked content for the configured secret patterns.
type SnapshotScanner struct {
	repositoryManager *gitrepo.RepositoryManager
	patterns          []secrets.Pattern
}

// NewSnapshotScanner constructs a SnapshotScanner over the provided patterns.
func NewSnapshotScanner(repositoryManager *gitrepo.RepositoryManager, patterns []secrets.Pattern) *SnapshotScanner {
	return &SnapshotScanner{repositoryManager: repositoryManager, patterns: patterns}
}

// Scan reports every pattern match in the tracked snapshot.
func (scanner *SnapshotScanner) Scan(executionContext context.Context, repositoryPath string) ([]ScanHit, error) {
	hits := []ScanHit{}
	for _, pattern := range scanner.patterns {
		matches, grepError := scanner.repositoryManager.Grep(executionContext, repositoryPath, pattern.Expression.String())
		if grepError != nil {
			return nil, fmt.Errorf(snapshotScanErrorTemplateConstant, pattern.Name, grepError)
		}
		for _, match := range matches {
			hits = append(hits, ScanHit{PatternName: pattern.Name, Path: match.Path, LineNumber: match.LineNumber})
		}
	}
	return hits, nil
}

// Guard fails with SecretsDetectedError when the snapshot contains matches.
func (scanner *SnapshotScanner) Guard(executionContext context.Context, repositoryPath string) error {
	hits, scanError := scanner.Scan(executionContext, repositoryPath)
	if scanError != nil {
		return scanError
	}
	if len(hits) > 0 {
		return SecretsDetectedError{Hits: hits}
	}
	return nil
}

// DeepFinding couples an advisory rule hit with the file it was found in.
type DeepFinding struct {
	Path    string
	Finding secrets.Finding
}

// DeepScan runs the extended rule catalog over every tracked file. Findings
// are advisory and never gate the workflow.
func (scanner *SnapshotScanner) DeepScan(executionContext context.Context, repositoryPath string, deepScanner *secrets.DeepScanner) ([]DeepFinding, error) {
	trackedFiles, listError := scanner.repositoryManager.TrackedFiles(executionContext, repositoryPath)
	if listError != nil {
		return nil, fmt.Errorf(trackedFileListErrorTemplateConstant, listError)
	}

	findings := []DeepFinding{}
	for _, trackedFile := range trackedFiles {
		fileContent, readError := os.ReadFile(filepath.Join(repositoryPath, trackedFile))
		if readError != nil {
			continue
		}
		for _, finding := range deepScanner.ScanContent(string(fileContent)) {
			findings = append(findings, DeepFinding{Path: trackedFile, Finding: finding})
		}
	}
	return findings, nil
}
