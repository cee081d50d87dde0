// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout
// git-scrub to run git, git-filter-repo, bfg, pre-commit, and the Python
// package installers in a testable manner.
package execshell
