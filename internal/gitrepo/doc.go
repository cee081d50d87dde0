// Package gitrepo provides repository-level git operations used by the
// history scrubbing workflow, including worktree state inspection, index
// manipulation, content searches, and force pushes, together with remote
// URL parsing helpers.
package gitrepo
