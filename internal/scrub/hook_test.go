package scrub_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/scrub"
)

const (
	hookConfigurationFileName = ".pre-commit-config.yaml"
	preCommitToolName         = "pre-commit"
)

type hookConfigurationFixture struct {
	Repos []struct {
		Repo  string `yaml:"repo"`
		Rev   string `yaml:"rev"`
		Hooks []struct {
			ID string `yaml:"id"`
		} `yaml:"hooks"`
	} `yaml:"repos"`
}

func newHookInstallerFixture(testInstance *testing.T, executor *scriptedWorkflowExecutor, locator scrub.ToolLocator) *scrub.HookInstaller {
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)
	return scrub.NewHookInstaller(zap.NewNop(), executor, repositoryManager, locator)
}

func TestHookInstallerWritesConfigurationAndActivates(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	executor := newScriptedWorkflowExecutor()
	installer := newHookInstallerFixture(testInstance, executor, stubToolLocator{availableTools: map[string]bool{preCommitToolName: true}})

	report := installer.Install(context.Background(), repositoryDirectory)
	require.Equal(testInstance, scrub.HookStepAlreadyPresent, report.ToolStatus)
	require.Equal(testInstance, scrub.HookStepInstalled, report.ConfigurationStatus)
	require.Equal(testInstance, scrub.HookStepInstalled, report.ActivationStatus)

	configurationContent, readError := os.ReadFile(filepath.Join(repositoryDirectory, hookConfigurationFileName))
	require.NoError(testInstance, readError)

	parsedConfiguration := hookConfigurationFixture{}
	require.NoError(testInstance, yaml.Unmarshal(configurationContent, &parsedConfiguration))
	require.Len(testInstance, parsedConfiguration.Repos, 1)
	require.Equal(testInstance, "https://github.com/gitleaks/gitleaks", parsedConfiguration.Repos[0].Repo)
	require.NotEmpty(testInstance, parsedConfiguration.Repos[0].Rev)
	require.Len(testInstance, parsedConfiguration.Repos[0].Hooks, 1)
	require.Equal(testInstance, "gitleaks", parsedConfiguration.Repos[0].Hooks[0].ID)

	require.Equal(testInstance, 1, executor.countCommands("pre-commit install"))
	require.Equal(testInstance, 1, executor.countCommands("git add "+hookConfigurationFileName))
	require.Equal(testInstance, 1, executor.countCommands("git commit"))
}

func TestHookInstallerLeavesExistingConfiguration(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	existingConfiguration := "repos: []\n"
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryDirectory, hookConfigurationFileName), []byte(existingConfiguration), 0o644))

	executor := newScriptedWorkflowExecutor()
	installer := newHookInstallerFixture(testInstance, executor, stubToolLocator{availableTools: map[string]bool{preCommitToolName: true}})

	report := installer.Install(context.Background(), repositoryDirectory)
	require.Equal(testInstance, scrub.HookStepAlreadyPresent, report.ConfigurationStatus)

	unchangedContent, readError := os.ReadFile(filepath.Join(repositoryDirectory, hookConfigurationFileName))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, existingConfiguration, string(unchangedContent))
	require.Equal(testInstance, 0, executor.countCommands("git commit"))
}

func TestHookInstallerInstallsToolThroughPipFallback(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	executor := newScriptedWorkflowExecutor()
	executor.scriptResponse("pipx install", scriptedResponse{executionError: execshell.CommandExecutionError{
		Command: execshell.ShellCommand{Name: execshell.CommandPipx},
		Cause:   os.ErrNotExist,
	}})

	installer := newHookInstallerFixture(testInstance, executor, stubToolLocator{})

	report := installer.Install(context.Background(), repositoryDirectory)
	require.Equal(testInstance, scrub.HookStepInstalled, report.ToolStatus)
	require.Equal(testInstance, 1, executor.countCommands("pipx install pre-commit"))
	require.Equal(testInstance, 1, executor.countCommands("pip3 install --user pre-commit"))
}

func TestHookInstallerSkipsEverythingWhenToolUnavailable(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	executor := newScriptedWorkflowExecutor()
	executor.scriptResponse("pipx install", scriptedResponse{executionError: execshell.CommandExecutionError{
		Command: execshell.ShellCommand{Name: execshell.CommandPipx},
		Cause:   os.ErrNotExist,
	}})
	executor.scriptResponse("pip3 install", scriptedResponse{executionError: execshell.CommandExecutionError{
		Command: execshell.ShellCommand{Name: execshell.CommandPip},
		Cause:   os.ErrNotExist,
	}})

	installer := newHookInstallerFixture(testInstance, executor, stubToolLocator{})

	report := installer.Install(context.Background(), repositoryDirectory)
	require.Equal(testInstance, scrub.HookStepSkipped, report.ToolStatus)
	require.Equal(testInstance, scrub.HookStepSkipped, report.ConfigurationStatus)
	require.Equal(testInstance, scrub.HookStepSkipped, report.ActivationStatus)

	_, statError := os.Stat(filepath.Join(repositoryDirectory, hookConfigurationFileName))
	require.True(testInstance, os.IsNotExist(statError))
}
