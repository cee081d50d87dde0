package scrub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	ignoreFileNameConstant                = ".gitignore"
	ignoreFilePermissionsConstant         = 0o644
	ignoreCommitMessageTemplateConstant   = "Stop tracking %s and ignore environment files"
	ignoreFileReadErrorTemplateConstant   = "unable to read %s: %w"
	ignoreFileWriteErrorTemplateConstant  = "unable to update %s: %w"
	untrackSensitiveErrorTemplateConstant = "unable to untrack %s: %w"
	stageIgnoreErrorTemplateConstant      = "unable to stage %s: %w"
	commitIgnoreErrorTemplateConstant     = "unable to commit ignore changes: %w"
	newlineConstant                       = "\n"
)

// ignoreGlobsForSensitiveFile returns the glob entries that keep environment
// files out of future snapshots.
func ignoreGlobsForSensitiveFile(sensitiveFileName string) []string {
	return []string{
		"/" + sensitiveFileName,
		"/" + sensitiveFileName + ".*",
		"*" + sensitiveFileName,
	}
}

// IgnoreOutcome reports what the ignore enforcement changed.
type IgnoreOutcome struct {
	SensitiveFileUntracked bool
	IgnoreEntriesAppended  []string
	ChangesCommitted       bool
}

// IgnoreEnforcer untracks the sensitive file and keeps the ignore file
// covering environment file variants. Running it twice produces no additional
// lines or commits.
type IgnoreEnforcer struct {
	repositoryManager *gitrepo.RepositoryManager
}

// NewIgnoreEnforcer constructs an IgnoreEnforcer.
func NewIgnoreEnforcer(repositoryManager *gitrepo.RepositoryManager) *IgnoreEnforcer {
	return &IgnoreEnforcer{repositoryManager: repositoryManager}
}

// Enforce untracks the sensitive file, appends missing ignore globs, and
// commits the ignore file only when its content changed.
func (enforcer *IgnoreEnforcer) Enforce(executionContext context.Context, repositoryPath string, sensitiveFileName string) (IgnoreOutcome, error) {
	outcome := IgnoreOutcome{}

	untracked, untrackError := enforcer.repositoryManager.UntrackFile(executionContext, repositoryPath, sensitiveFileName)
	if untrackError != nil {
		return outcome, fmt.Errorf(untrackSensitiveErrorTemplateConstant, sensitiveFileName, untrackError)
	}
	outcome.SensitiveFileUntracked = untracked

	appendedEntries, appendError := appendMissingIgnoreEntries(repositoryPath, ignoreGlobsForSensitiveFile(sensitiveFileName))
	if appendError != nil {
		return outcome, appendError
	}
	outcome.IgnoreEntriesAppended = appendedEntries

	if len(appendedEntries) == 0 && !untracked {
		return outcome, nil
	}

	if stageError := enforcer.repositoryManager.StageFile(executionContext, repositoryPath, ignoreFileNameConstant); stageError != nil {
		return outcome, fmt.Errorf(stageIgnoreErrorTemplateConstant, ignoreFileNameConstant, stageError)
	}

	commitMessage := fmt.Sprintf(ignoreCommitMessageTemplateConstant, sensitiveFileName)
	committed, commitError := enforcer.repositoryManager.Commit(executionContext, repositoryPath, commitMessage)
	if commitError != nil {
		return outcome, fmt.Errorf(commitIgnoreErrorTemplateConstant, commitError)
	}
	outcome.ChangesCommitted = committed

	return outcome, nil
}

func appendMissingIgnoreEntries(repositoryPath string, requiredEntries []string) ([]string, error) {
	ignoreFilePath := filepath.Join(repositoryPath, ignoreFileNameConstant)

	existingContent, readError := os.ReadFile(ignoreFilePath)
	if readError != nil && !os.IsNotExist(readError) {
		return nil, fmt.Errorf(ignoreFileReadErrorTemplateConstant, ignoreFileNameConstant, readError)
	}

	existingEntries := map[string]struct{}{}
	for _, existingLine := range strings.Split(string(existingContent), newlineConstant) {
		existingEntries[strings.TrimSpace(existingLine)] = struct{}{}
	}

	missingEntries := []string{}
	for _, requiredEntry := range requiredEntries {
		if _, present := existingEntries[requiredEntry]; !present {
			missingEntries = append(missingEntries, requiredEntry)
		}
	}

	if len(missingEntries) == 0 {
		return nil, nil
	}

	updatedContent := string(existingContent)
	if len(updatedContent) > 0 && !strings.HasSuffix(updatedContent, newlineConstant) {
		updatedContent += newlineConstant
	}
	updatedContent += strings.Join(missingEntries, newlineConstant) + newlineConstant

	if writeError := os.WriteFile(ignoreFilePath, []byte(updatedContent), ignoreFilePermissionsConstant); writeError != nil {
		return nil, fmt.Errorf(ignoreFileWriteErrorTemplateConstant, ignoreFileNameConstant, writeError)
	}

	return missingEntries, nil
}
