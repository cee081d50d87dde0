package scrub

import (
	"fmt"
	"strings"
)

const (
	remoteConfigurationKeyConstant           = "remote"
	branchConfigurationKeyConstant           = "branch"
	fallbackBranchConfigurationKeyConstant   = "fallback_branch"
	sensitiveFileConfigurationKeyConstant    = "sensitive_file"
	replacementRulesConfigurationKeyConstant = "replacement_rules"
	assumeYesConfigurationKeyConstant        = "assume_yes"
	configurationKeyTemplateConstant         = "%s.%s"

	defaultRemoteNameConstant         = "origin"
	defaultBranchNameConstant         = "main"
	defaultFallbackBranchNameConstant = "scrubbed-main"
	defaultSensitiveFileNameConstant  = ".env"
	defaultRuleFileNameConstant       = ".git-scrub-replacements.txt"
)

// CommandConfiguration captures persisted configuration for the scrub workflow.
type CommandConfiguration struct {
	RemoteName         string `mapstructure:"remote"`
	BranchName         string `mapstructure:"branch"`
	FallbackBranchName string `mapstructure:"fallback_branch"`
	SensitiveFileName  string `mapstructure:"sensitive_file"`
	RuleFileName       string `mapstructure:"replacement_rules"`
	AssumeYes          bool   `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the scrub workflow.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:         defaultRemoteNameConstant,
		BranchName:         defaultBranchNameConstant,
		FallbackBranchName: defaultFallbackBranchNameConstant,
		SensitiveFileName:  defaultSensitiveFileNameConstant,
		RuleFileName:       defaultRuleFileNameConstant,
	}
}

// DefaultConfigurationValues exposes baseline values keyed for configuration merging.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, remoteConfigurationKeyConstant):           defaults.RemoteName,
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, branchConfigurationKeyConstant):           defaults.BranchName,
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, fallbackBranchConfigurationKeyConstant):   defaults.FallbackBranchName,
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, sensitiveFileConfigurationKeyConstant):    defaults.SensitiveFileName,
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, replacementRulesConfigurationKeyConstant): defaults.RuleFileName,
		fmt.Sprintf(configurationKeyTemplateConstant, configurationPrefix, assumeYesConfigurationKeyConstant):        defaults.AssumeYes,
	}
}

// Sanitize trims configured values and restores defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.RemoteName = fallbackForEmpty(configuration.RemoteName, defaults.RemoteName)
	sanitized.BranchName = fallbackForEmpty(configuration.BranchName, defaults.BranchName)
	sanitized.FallbackBranchName = fallbackForEmpty(configuration.FallbackBranchName, defaults.FallbackBranchName)
	sanitized.SensitiveFileName = fallbackForEmpty(configuration.SensitiveFileName, defaults.SensitiveFileName)
	sanitized.RuleFileName = fallbackForEmpty(configuration.RuleFileName, defaults.RuleFileName)
	return sanitized
}

func fallbackForEmpty(configuredValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(configuredValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
