package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scrub/internal/utils"
)

const (
	historySubcommandNameConstant     = "history"
	scanSubcommandNameConstant        = "scan"
	installHookSubcommandNameConstant = "install-hook"
)

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()
	require.NotNil(testInstance, application.rootCommand)

	registeredSubcommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredSubcommandNames[registeredCommand.Name()] = true
	}

	expectedSubcommandNames := []string{
		historySubcommandNameConstant,
		scanSubcommandNameConstant,
		installHookSubcommandNameConstant,
	}
	for _, expectedSubcommandName := range expectedSubcommandNames {
		require.True(testInstance, registeredSubcommandNames[expectedSubcommandName], expectedSubcommandName)
	}
}

func TestHumanReadableLoggingEnabledTracksConfiguredFormat(testInstance *testing.T) {
	application := NewApplication()

	application.configuration.Common.LogFormat = string(utils.LogFormatConsole)
	require.True(testInstance, application.humanReadableLoggingEnabled())

	application.configuration.Common.LogFormat = string(utils.LogFormatStructured)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}
