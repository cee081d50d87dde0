package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/scrub/internal/execshell"
)

const (
	revParseCommandConstant              = "rev-parse"
	insideWorkTreeFlagConstant           = "--is-inside-work-tree"
	abbreviatedReferenceFlagConstant     = "--abbrev-ref"
	headReferenceConstant                = "HEAD"
	statusCommandConstant                = "status"
	porcelainFlagConstant                = "--porcelain"
	removeCommandConstant                = "rm"
	cachedFlagConstant                   = "--cached"
	ignoreUnmatchFlagConstant            = "--ignore-unmatch"
	addCommandConstant                   = "add"
	commitCommandConstant                = "commit"
	commitMessageFlagConstant            = "-m"
	pushCommandConstant                  = "push"
	forceFlagConstant                    = "--force"
	grepCommandConstant                  = "grep"
	grepBinarySuppressionFlagConstant    = "-I"
	grepExtendedExpressionFlagConstant   = "-E"
	grepLineNumberFlagConstant           = "-n"
	listFilesCommandConstant             = "ls-files"
	remoteCommandConstant                = "remote"
	remoteGetURLSubcommandConstant       = "get-url"
	trueOutputConstant                   = "true"
	nothingToCommitMarkerConstant        = "nothing to commit"
	nothingAddedMarkerConstant           = "nothing added to commit"
	grepNoMatchesExitCodeConstant        = 1
	executorNotConfiguredMessageConstant = "git command executor not configured"
	requiredValueMessageConstant         = "value required"
)

// ErrExecutorNotConfigured indicates the repository manager was built without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// CommandExecutor abstracts git command execution for the repository manager.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs git operations against a single working tree.
type RepositoryManager struct {
	executor CommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor CommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GrepMatch describes a single content match produced by a repository search.
type GrepMatch struct {
	Path       string
	LineNumber string
	Content    string
}

// IsInsideWorkTree reports whether the directory belongs to a git working tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseCommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == trueOutputConstant, nil
}

// CheckCleanWorktree reports whether the working tree has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{statusCommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// CurrentBranch resolves the checked out branch name.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseCommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// UntrackFile removes a path from the index while keeping the file on disk.
// The returned boolean reports whether the index actually changed.
func (manager *RepositoryManager) UntrackFile(executionContext context.Context, repositoryPath string, filePath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{removeCommandConstant, cachedFlagConstant, ignoreUnmatchFlagConstant, filePath},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// StageFile adds a path to the index.
func (manager *RepositoryManager) StageFile(executionContext context.Context, repositoryPath string, filePath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{addCommandConstant, filePath},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// Commit records staged changes with the supplied message. A commit command
// that fails because there is nothing to commit is reported through the
// boolean; every other failure is returned as an error.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) (bool, error) {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{commitCommandConstant, commitMessageFlagConstant, message},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && indicatesNothingToCommit(commandFailure.Result) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

func indicatesNothingToCommit(result execshell.ExecutionResult) bool {
	combinedOutput := strings.ToLower(result.StandardOutput + "\n" + result.StandardError)
	return strings.Contains(combinedOutput, nothingToCommitMarkerConstant) ||
		strings.Contains(combinedOutput, nothingAddedMarkerConstant)
}

// ForcePush pushes the provided refspec to the remote with --force.
func (manager *RepositoryManager) ForcePush(executionContext context.Context, repositoryPath string, remoteName string, refspec string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{pushCommandConstant, forceFlagConstant, remoteName, refspec},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// RemoteURLFor resolves the configured URL of the named remote.
func (manager *RepositoryManager) RemoteURLFor(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{remoteCommandConstant, remoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// Grep searches tracked content for an extended regular expression. A search
// without matches returns an empty slice rather than an error.
func (manager *RepositoryManager) Grep(executionContext context.Context, repositoryPath string, expression string) ([]GrepMatch, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{grepCommandConstant, grepBinarySuppressionFlagConstant, grepExtendedExpressionFlagConstant, grepLineNumberFlagConstant, expression},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == grepNoMatchesExitCodeConstant {
			return nil, nil
		}
		return nil, executionError
	}
	return parseGrepOutput(executionResult.StandardOutput), nil
}

// TrackedFiles lists every path currently tracked by the repository.
func (manager *RepositoryManager) TrackedFiles(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{listFilesCommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}
	trackedFiles := []string{}
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) > 0 {
			trackedFiles = append(trackedFiles, trimmedLine)
		}
	}
	return trackedFiles, nil
}

func parseGrepOutput(output string) []GrepMatch {
	matches := []GrepMatch{}
	for _, outputLine := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}
		lineComponents := strings.SplitN(trimmedLine, ":", 3)
		match := GrepMatch{Path: lineComponents[0]}
		if len(lineComponents) > 1 {
			match.LineNumber = lineComponents[1]
		}
		if len(lineComponents) > 2 {
			match.Content = lineComponents[2]
		}
		matches = append(matches, match)
	}
	return matches
}
