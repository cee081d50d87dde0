package scrub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/temirov/scrub/internal/execshell"
)

const (
	filterRepoToolNameConstant            = "git-filter-repo"
	bfgToolNameConstant                   = "bfg"
	forceRewriteFlagConstant              = "--force"
	invertPathsFlagConstant               = "--invert-paths"
	pathFlagConstant                      = "--path"
	replaceTextFlagConstant               = "--replace-text"
	deleteFilesFlagConstant               = "--delete-files"
	mirrorCloneDirectoryPatternConstant   = "git-scrub-mirror-*"
	mirrorRepositoryDirectoryNameConstant = "mirror.git"
	cloneCommandConstant                  = "clone"
	mirrorFlagConstant                    = "--mirror"
	reflogCommandConstant                 = "reflog"
	reflogExpireSubcommandConstant        = "expire"
	reflogExpireNowFlagConstant           = "--expire=now"
	reflogAllFlagConstant                 = "--all"
	garbageCollectCommandConstant         = "gc"
	pruneNowFlagConstant                  = "--prune=now"
	aggressiveFlagConstant                = "--aggressive"
	fetchCommandConstant                  = "fetch"
	updateHeadOKFlagConstant              = "--update-head-ok"
	allBranchesRefspecConstant            = "+refs/heads/*:refs/heads/*"
	allTagsRefspecConstant                = "+refs/tags/*:refs/tags/*"
	resetCommandConstant                  = "reset"
	hardResetFlagConstant                 = "--hard"
	noRewriteToolMessageConstant          = "neither git-filter-repo nor bfg is available on PATH"
	fileRemovalErrorTemplateConstant      = "unable to remove %s from history: %w"
	contentReplacementErrorTemplate       = "unable to redact patterns across history: %w"
	mirrorWorkspaceErrorTemplateConstant  = "unable to create mirror workspace: %w"
	mirrorCloneErrorTemplateConstant      = "unable to mirror clone repository: %w"
	mirrorCleanupErrorTemplateConstant    = "unable to compact rewritten mirror: %w"
	mirrorImportErrorTemplateConstant     = "unable to import rewritten history: %w"
	ruleFileResolutionErrorTemplate       = "unable to resolve rule file path: %w"
)

// ErrNoRewriteToolAvailable indicates no history rewriting backend is installed.
var ErrNoRewriteToolAvailable = errors.New(noRewriteToolMessageConstant)

// RewriteRequest configures a history rewrite against one repository.
type RewriteRequest struct {
	RepositoryPath    string
	SensitiveFileName string
	RuleFilePath      string
}

// HistoryRewriter removes the sensitive file from every revision and redacts
// the configured patterns across all historical content.
type HistoryRewriter interface {
	Rewrite(executionContext context.Context, request RewriteRequest) error
	Name() string
}

// ToolLocator reports whether external tools are present on the PATH.
type ToolLocator interface {
	LookPath(toolName string) (string, error)
}

// ExecutableToolLocator resolves tools through the process environment.
type ExecutableToolLocator struct{}

// LookPath delegates to exec.LookPath.
func (ExecutableToolLocator) LookPath(toolName string) (string, error) {
	return exec.LookPath(toolName)
}

// RewriteExecutor captures the shell operations the rewrite backends require.
type RewriteExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteFilterRepo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteBFG(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SelectRewriter picks the first available backend: git-filter-repo operates
// in place, the BFG fallback works through a mirror clone.
func SelectRewriter(locator ToolLocator, executor RewriteExecutor) (HistoryRewriter, error) {
	if _, lookupError := locator.LookPath(filterRepoToolNameConstant); lookupError == nil {
		return &FilterRepoRewriter{executor: executor}, nil
	}
	if _, lookupError := locator.LookPath(bfgToolNameConstant); lookupError == nil {
		return &MirrorRewriter{executor: executor}, nil
	}
	return nil, ErrNoRewriteToolAvailable
}

// FilterRepoRewriter rewrites history in place with git-filter-repo.
type FilterRepoRewriter struct {
	executor RewriteExecutor
}

// Name identifies the backend.
func (rewriter *FilterRepoRewriter) Name() string {
	return filterRepoToolNameConstant
}

// Rewrite removes the sensitive file and applies the replacement rules.
func (rewriter *FilterRepoRewriter) Rewrite(executionContext context.Context, request RewriteRequest) error {
	_, removalError := rewriter.executor.ExecuteFilterRepo(executionContext, execshell.CommandDetails{
		Arguments:        []string{forceRewriteFlagConstant, invertPathsFlagConstant, pathFlagConstant, request.SensitiveFileName},
		WorkingDirectory: request.RepositoryPath,
	})
	if removalError != nil {
		return fmt.Errorf(fileRemovalErrorTemplateConstant, request.SensitiveFileName, removalError)
	}

	_, replacementError := rewriter.executor.ExecuteFilterRepo(executionContext, execshell.CommandDetails{
		Arguments:        []string{forceRewriteFlagConstant, replaceTextFlagConstant, request.RuleFilePath},
		WorkingDirectory: request.RepositoryPath,
	})
	if replacementError != nil {
		return fmt.Errorf(contentReplacementErrorTemplate, replacementError)
	}

	return nil
}

// MirrorRewriter rewrites history through a temporary bare mirror clone using
// the BFG repo cleaner, then imports the rewritten references back. The
// temporary workspace is removed on every exit path.
type MirrorRewriter struct {
	executor RewriteExecutor
}

// Name identifies the backend.
func (rewriter *MirrorRewriter) Name() string {
	return bfgToolNameConstant
}

// Rewrite performs the mirror based rewrite.
func (rewriter *MirrorRewriter) Rewrite(executionContext context.Context, request RewriteRequest) error {
	workspaceDirectory, workspaceError := os.MkdirTemp("", mirrorCloneDirectoryPatternConstant)
	if workspaceError != nil {
		return fmt.Errorf(mirrorWorkspaceErrorTemplateConstant, workspaceError)
	}
	defer func() {
		_ = os.RemoveAll(workspaceDirectory)
	}()

	mirrorPath := filepath.Join(workspaceDirectory, mirrorRepositoryDirectoryNameConstant)
	absoluteRuleFilePath, ruleFilePathError := filepath.Abs(request.RuleFilePath)
	if ruleFilePathError != nil {
		return fmt.Errorf(ruleFileResolutionErrorTemplate, ruleFilePathError)
	}

	if _, cloneError := rewriter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{cloneCommandConstant, mirrorFlagConstant, request.RepositoryPath, mirrorPath},
		WorkingDirectory: workspaceDirectory,
	}); cloneError != nil {
		return fmt.Errorf(mirrorCloneErrorTemplateConstant, cloneError)
	}

	if _, removalError := rewriter.executor.ExecuteBFG(executionContext, execshell.CommandDetails{
		Arguments:        []string{deleteFilesFlagConstant, request.SensitiveFileName, mirrorPath},
		WorkingDirectory: workspaceDirectory,
	}); removalError != nil {
		return fmt.Errorf(fileRemovalErrorTemplateConstant, request.SensitiveFileName, removalError)
	}

	if _, replacementError := rewriter.executor.ExecuteBFG(executionContext, execshell.CommandDetails{
		Arguments:        []string{replaceTextFlagConstant, absoluteRuleFilePath, mirrorPath},
		WorkingDirectory: workspaceDirectory,
	}); replacementError != nil {
		return fmt.Errorf(contentReplacementErrorTemplate, replacementError)
	}

	if compactionError := rewriter.compactRepository(executionContext, mirrorPath); compactionError != nil {
		return compactionError
	}

	if _, fetchError := rewriter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{fetchCommandConstant, updateHeadOKFlagConstant, mirrorPath, allBranchesRefspecConstant, allTagsRefspecConstant},
		WorkingDirectory: request.RepositoryPath,
	}); fetchError != nil {
		return fmt.Errorf(mirrorImportErrorTemplateConstant, fetchError)
	}

	if _, resetError := rewriter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{resetCommandConstant, hardResetFlagConstant},
		WorkingDirectory: request.RepositoryPath,
	}); resetError != nil {
		return fmt.Errorf(mirrorImportErrorTemplateConstant, resetError)
	}

	// The imported refs leave the pre-rewrite objects dangling in the original
	// repository; expire and prune them so no secret bytes remain on disk.
	return rewriter.compactRepository(executionContext, request.RepositoryPath)
}

func (rewriter *MirrorRewriter) compactRepository(executionContext context.Context, repositoryPath string) error {
	if _, expireError := rewriter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{reflogCommandConstant, reflogExpireSubcommandConstant, reflogExpireNowFlagConstant, reflogAllFlagConstant},
		WorkingDirectory: repositoryPath,
	}); expireError != nil {
		return fmt.Errorf(mirrorCleanupErrorTemplateConstant, expireError)
	}

	if _, gcError := rewriter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{garbageCollectCommandConstant, pruneNowFlagConstant, aggressiveFlagConstant},
		WorkingDirectory: repositoryPath,
	}); gcError != nil {
		return fmt.Errorf(mirrorCleanupErrorTemplateConstant, gcError)
	}

	return nil
}
