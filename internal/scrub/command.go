package scrub

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/utils"
)

const (
	historyCommandUseConstant              = "history"
	historyCommandShortDescriptionConstant = "Scrub secrets from repository history"
	historyCommandLongDescriptionConstant  = "history removes the sensitive file from every revision, redacts known secret patterns across all historical content, force-pushes the rewritten history, verifies no matches remain, and installs a pre-commit secret scanner."
	remoteFlagNameConstant                 = "remote"
	remoteFlagUsageConstant                = "Remote to push rewritten history to"
	branchFlagNameConstant                 = "branch"
	branchFlagUsageConstant                = "Branch whose history is rewritten"
	fallbackBranchFlagNameConstant         = "fallback-branch"
	fallbackBranchFlagUsageConstant        = "Branch name used when the primary push is rejected"
	assumeYesFlagNameConstant              = "yes"
	assumeYesFlagUsageConstant             = "Skip the interactive confirmation before rewriting history"
	workingDirectoryErrorTemplateConstant  = "unable to resolve working directory: %w"
	repositoryManagerErrorTemplateConstant = "unable to construct repository manager: %w"
	serviceCreationErrorTemplateConstant   = "unable to construct scrub service: %w"
	scrubExecutionErrorTemplateConstant    = "history scrub failed: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the history scrub Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     WorkflowExecutor
	GitExecutor                  gitrepo.CommandExecutor
	WorkingDirectory             string
	Prompter                     ConfirmationPrompter
	ToolLocator                  ToolLocator
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the history command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           historyCommandUseConstant,
		Short:         historyCommandShortDescriptionConstant,
		Long:          historyCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runHistoryScrub,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(branchFlagNameConstant, defaults.BranchName, branchFlagUsageConstant)
	command.Flags().String(fallbackBranchFlagNameConstant, defaults.FallbackBranchName, fallbackBranchFlagUsageConstant)
	command.Flags().Bool(assumeYesFlagNameConstant, defaults.AssumeYes, assumeYesFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runHistoryScrub(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration(command)

	logger := builder.resolveLogger(command)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	gitExecutor := builder.resolveGitExecutor(executor)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		Executor:          executor,
		ToolLocator:       builder.ToolLocator,
		Prompter:          builder.resolvePrompter(command),
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	repositoryPath, pathError := builder.resolveWorkingDirectory()
	if pathError != nil {
		return pathError
	}

	if _, executionError := service.Execute(command.Context(), ScrubOptions{
		RepositoryPath: repositoryPath,
		Configuration:  configuration,
	}); executionError != nil {
		return fmt.Errorf(scrubExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}

	if command == nil {
		return configuration
	}

	if command.Flags().Changed(remoteFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(remoteFlagNameConstant)
		configuration.RemoteName = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(branchFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(branchFlagNameConstant)
		configuration.BranchName = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(fallbackBranchFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(fallbackBranchFlagNameConstant)
		configuration.FallbackBranchName = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(assumeYesFlagNameConstant) {
		flagValue, _ := command.Flags().GetBool(assumeYesFlagNameConstant)
		configuration.AssumeYes = flagValue
	}

	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveLogger(command *cobra.Command) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
				logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
			}
		}
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (WorkflowExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveGitExecutor(executor WorkflowExecutor) gitrepo.CommandExecutor {
	if builder.GitExecutor != nil {
		return builder.GitExecutor
	}
	return executor
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) ConfirmationPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}

	output := command.OutOrStdout()
	return NewIOConfirmationPrompter(command.InOrStdin(), utils.NewFlushingWriter(output))
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, directoryError := os.Getwd()
	if directoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, directoryError)
	}
	return workingDirectory, nil
}
