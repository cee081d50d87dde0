package cli_test

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/scrub/cmd/cli"
)

const (
	embeddedDefaultRemoteNameConstant     = "origin"
	embeddedDefaultBranchNameConstant     = "main"
	embeddedDefaultFallbackBranchConstant = "scrubbed-main"
	embeddedDefaultSensitiveFileConstant  = ".env"
	embeddedDefaultRuleFileConstant       = ".git-scrub-replacements.txt"
	embeddedDefaultLogLevelConstant       = "info"
	embeddedDefaultLogFormatConstant      = "structured"
)

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	require.Equal(testInstance, embeddedDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, embeddedDefaultLogFormatConstant, configuration.Common.LogFormat)

	scrubConfiguration := configuration.Tools.Scrub.Sanitize()
	require.Equal(testInstance, embeddedDefaultRemoteNameConstant, scrubConfiguration.RemoteName)
	require.Equal(testInstance, embeddedDefaultBranchNameConstant, scrubConfiguration.BranchName)
	require.Equal(testInstance, embeddedDefaultFallbackBranchConstant, scrubConfiguration.FallbackBranchName)
	require.Equal(testInstance, embeddedDefaultSensitiveFileConstant, scrubConfiguration.SensitiveFileName)
	require.Equal(testInstance, embeddedDefaultRuleFileConstant, scrubConfiguration.RuleFileName)
	require.False(testInstance, scrubConfiguration.AssumeYes)
}
