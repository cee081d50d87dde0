package scrub

import (
	"context"
	"errors"

	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	notARepositoryMessageConstant = "current directory is not inside a git work tree"
	worktreeDirtyMessageConstant  = "working tree has uncommitted changes; commit or stash them first"
)

// Preflight failure modes requiring user remediation.
var (
	ErrNotARepository = errors.New(notARepositoryMessageConstant)
	ErrWorktreeDirty  = errors.New(worktreeDirtyMessageConstant)
)

// PreflightChecker validates repository state before any mutation occurs.
type PreflightChecker struct {
	repositoryManager *gitrepo.RepositoryManager
}

// NewPreflightChecker constructs a PreflightChecker.
func NewPreflightChecker(repositoryManager *gitrepo.RepositoryManager) *PreflightChecker {
	return &PreflightChecker{repositoryManager: repositoryManager}
}

// Check verifies the path is a repository with a clean working tree.
func (checker *PreflightChecker) Check(executionContext context.Context, repositoryPath string) error {
	insideWorkTree, worktreeError := checker.repositoryManager.IsInsideWorkTree(executionContext, repositoryPath)
	if worktreeError != nil {
		return worktreeError
	}
	if !insideWorkTree {
		return ErrNotARepository
	}

	cleanWorktree, cleanError := checker.repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError != nil {
		return cleanError
	}
	if !cleanWorktree {
		return ErrWorktreeDirty
	}

	return nil
}
