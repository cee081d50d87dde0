// Package scrub orchestrates the secret scrubbing workflow: preflight
// validation, ignore enforcement, snapshot scanning, replacement-rule
// generation, history rewriting through interchangeable backends, remote
// publication with a fallback branch, exhaustive post-rewrite verification,
// and best-effort pre-commit hook installation.
package scrub
