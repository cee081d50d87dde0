package scrub_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scrub/internal/scrub"
)

const (
	configurationSubtestTemplateConstant = "%d_%s"
	emptyValuesCaseNameConstant          = "empty_values_restore_defaults"
	paddedValuesCaseNameConstant         = "padded_values_trimmed"
	customValuesCaseNameConstant         = "custom_values_preserved"
	configurationPrefixConstant          = "scrub"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    scrub.CommandConfiguration
		expected scrub.CommandConfiguration
	}{
		{
			name:     emptyValuesCaseNameConstant,
			input:    scrub.CommandConfiguration{},
			expected: scrub.DefaultCommandConfiguration(),
		},
		{
			name: paddedValuesCaseNameConstant,
			input: scrub.CommandConfiguration{
				RemoteName: "  upstream  ",
				BranchName: "\ttrunk\n",
			},
			expected: scrub.CommandConfiguration{
				RemoteName:         "upstream",
				BranchName:         "trunk",
				FallbackBranchName: "scrubbed-main",
				SensitiveFileName:  ".env",
				RuleFileName:       ".git-scrub-replacements.txt",
			},
		},
		{
			name: customValuesCaseNameConstant,
			input: scrub.CommandConfiguration{
				RemoteName:         "upstream",
				BranchName:         "trunk",
				FallbackBranchName: "scrubbed-trunk",
				SensitiveFileName:  "secrets.env",
				RuleFileName:       "rules.txt",
				AssumeYes:          true,
			},
			expected: scrub.CommandConfiguration{
				RemoteName:         "upstream",
				BranchName:         "trunk",
				FallbackBranchName: "scrubbed-trunk",
				SensitiveFileName:  "secrets.env",
				RuleFileName:       "rules.txt",
				AssumeYes:          true,
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.input.Sanitize())
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	defaultValues := scrub.DefaultConfigurationValues(configurationPrefixConstant)
	require.Equal(testInstance, "origin", defaultValues["scrub.remote"])
	require.Equal(testInstance, "main", defaultValues["scrub.branch"])
	require.Equal(testInstance, "scrubbed-main", defaultValues["scrub.fallback_branch"])
	require.Equal(testInstance, ".env", defaultValues["scrub.sensitive_file"])
	require.Equal(testInstance, ".git-scrub-replacements.txt", defaultValues["scrub.replacement_rules"])
	require.Equal(testInstance, false, defaultValues["scrub.assume_yes"])
}
