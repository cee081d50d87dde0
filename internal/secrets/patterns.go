package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	apiKeyPatternNameConstant           = "api-key"
	apiKeyPatternExpressionConstant     = `sk-[A-Za-z0-9_-]{20,}`
	apiKeyReplacementConstant           = "REDACTED-API-KEY"
	gitHubTokenPatternNameConstant      = "github-token"
	gitHubTokenPatternExpression        = `ghp_[A-Za-z0-9]{36,}`
	gitHubTokenReplacementConstant      = "REDACTED-GITHUB-TOKEN"
	ruleFileHeaderConstant              = "# Replacement rules consumed by history rewriting tools.\n# Format: regex:<pattern>==><replacement>\n"
	ruleLineTemplateConstant            = "regex:%s==>%s\n"
	replacementRulePrefixConstant       = "regex:"
	replacementRuleDelimiterConstant    = "==>"
	ruleFileCommentPrefixConstant       = "#"
	invalidRuleLineTemplateConstant     = "invalid replacement rule on line %d: %s"
	invalidRuleExpressionTemplate       = "invalid replacement rule expression on line %d: %w"
	missingRuleDelimiterMessageConstant = "missing rule delimiter"
)

// Pattern couples a named secret expression with its history replacement.
type Pattern struct {
	Name        string
	Expression  *regexp.Regexp
	Replacement string
}

// DefaultPatterns returns the built-in secret patterns in deterministic order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        apiKeyPatternNameConstant,
			Expression:  regexp.MustCompile(apiKeyPatternExpressionConstant),
			Replacement: apiKeyReplacementConstant,
		},
		{
			Name:        gitHubTokenPatternNameConstant,
			Expression:  regexp.MustCompile(gitHubTokenPatternExpression),
			Replacement: gitHubTokenReplacementConstant,
		},
	}
}

// RuleFileContent renders patterns in the replacement rule syntax shared by
// git-filter-repo and the BFG repo cleaner. The output is byte stable for a
// given pattern list.
func RuleFileContent(patterns []Pattern) string {
	contentBuilder := strings.Builder{}
	contentBuilder.WriteString(ruleFileHeaderConstant)
	for _, pattern := range patterns {
		contentBuilder.WriteString(fmt.Sprintf(ruleLineTemplateConstant, pattern.Expression.String(), pattern.Replacement))
	}
	return contentBuilder.String()
}

// ParseRuleFileContent reads replacement rule syntax back into patterns.
// Comment lines and blank lines are ignored.
func ParseRuleFileContent(content string) ([]Pattern, error) {
	patterns := []Pattern{}
	for lineIndex, ruleLine := range strings.Split(content, "\n") {
		trimmedLine := strings.TrimSpace(ruleLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, ruleFileCommentPrefixConstant) {
			continue
		}
		if !strings.HasPrefix(trimmedLine, replacementRulePrefixConstant) {
			return nil, fmt.Errorf(invalidRuleLineTemplateConstant, lineIndex+1, trimmedLine)
		}
		ruleBody := strings.TrimPrefix(trimmedLine, replacementRulePrefixConstant)
		delimiterIndex := strings.Index(ruleBody, replacementRuleDelimiterConstant)
		if delimiterIndex == -1 {
			return nil, fmt.Errorf(invalidRuleLineTemplateConstant, lineIndex+1, missingRuleDelimiterMessageConstant)
		}
		compiledExpression, compileError := regexp.Compile(ruleBody[:delimiterIndex])
		if compileError != nil {
			return nil, fmt.Errorf(invalidRuleExpressionTemplate, lineIndex+1, compileError)
		}
		patterns = append(patterns, Pattern{
			Expression:  compiledExpression,
			Replacement: ruleBody[delimiterIndex+len(replacementRuleDelimiterConstant):],
		})
	}
	return patterns, nil
}

// MatchAny reports whether any pattern matches the provided content and
// returns the name of the first matching pattern.
func MatchAny(patterns []Pattern, content string) (string, bool) {
	for _, pattern := range patterns {
		if pattern.Expression.MatchString(content) {
			return pattern.Name, true
		}
	}
	return "", false
}
