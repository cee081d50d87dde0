// Package secrets defines the credential patterns the scrubbing workflow
// removes from history, renders them as replacement rules for history
// rewriting tools, and offers an optional gitleaks-backed deep scan for
// advisory findings beyond the fixed patterns.
package secrets
