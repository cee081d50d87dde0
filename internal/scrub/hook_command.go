package scrub

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	hookCommandUseConstant        = "install-hook"
	hookCommandShortDescription   = "Install the pre-commit secret scanning hook"
	hookCommandLongDescription    = "install-hook ensures the pre-commit tool is available, writes the gitleaks hook configuration when absent, and activates the hook in the local repository. Every step is best-effort."
	hookReportMessageConstant     = "Hook installation finished"
	hookReportToolFieldConstant   = "tool"
	hookReportConfigFieldConstant = "configuration"
	hookReportActiveFieldConstant = "activation"
)

// HookCommandBuilder assembles the install-hook Cobra command.
type HookCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     WorkflowExecutor
	GitExecutor                  gitrepo.CommandExecutor
	WorkingDirectory             string
	ToolLocator                  ToolLocator
	HumanReadableLoggingProvider func() bool
}

// Build constructs the install-hook command.
func (builder *HookCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           hookCommandUseConstant,
		Short:         hookCommandShortDescription,
		Long:          hookCommandLongDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runHookInstallation,
	}

	return command, nil
}

func (builder *HookCommandBuilder) runHookInstallation(command *cobra.Command, _ []string) error {
	delegate := &CommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		Executor:                     builder.Executor,
		GitExecutor:                  builder.GitExecutor,
		WorkingDirectory:             builder.WorkingDirectory,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
	}

	logger := delegate.resolveLogger(command)

	executor, executorError := delegate.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(delegate.resolveGitExecutor(executor))
	if managerError != nil {
		return fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	repositoryPath, pathError := delegate.resolveWorkingDirectory()
	if pathError != nil {
		return pathError
	}

	toolLocator := builder.ToolLocator
	if toolLocator == nil {
		toolLocator = ExecutableToolLocator{}
	}

	hookInstaller := NewHookInstaller(logger, executor, repositoryManager, toolLocator)
	report := hookInstaller.Install(command.Context(), repositoryPath)

	logger.Info(
		hookReportMessageConstant,
		zap.String(hookReportToolFieldConstant, string(report.ToolStatus)),
		zap.String(hookReportConfigFieldConstant, string(report.ConfigurationStatus)),
		zap.String(hookReportActiveFieldConstant, string(report.ActivationStatus)),
	)

	return nil
}
