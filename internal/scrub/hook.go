package scrub

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	hookConfigurationFileNameConstant    = ".pre-commit-config.yaml"
	hookConfigurationPermissionsConstant = 0o644
	preCommitToolNameConstant            = "pre-commit"
	pipxInstallSubcommandConstant        = "install"
	pipInstallSubcommandConstant         = "install"
	pipUserFlagConstant                  = "--user"
	preCommitInstallSubcommandConstant   = "install"
	gitleaksHookRepositoryConstant       = "https://github.com/gitleaks/gitleaks"
	gitleaksHookRevisionConstant         = "v8.18.4"
	gitleaksHookIdentifierConstant       = "gitleaks"
	hookCommitMessageConstant            = "Add pre-commit secret scanning hook"
	hookToolInstallFailedMessageConstant = "Unable to install pre-commit; hook installation skipped"
	hookConfigWriteFailedMessageConstant = "Unable to write hook configuration; hook installation skipped"
	hookActivationFailedMessageConstant  = "Unable to activate pre-commit hook"
	hookCommitFailedMessageConstant      = "Unable to commit hook configuration"
	hookStepErrorFieldConstant           = "error"
)

// HookStepStatus reports the non-fatal outcome of one hook installation step.
type HookStepStatus string

// Hook installation step outcomes.
const (
	HookStepInstalled      HookStepStatus = HookStepStatus("installed")
	HookStepAlreadyPresent HookStepStatus = HookStepStatus("already-present")
	HookStepSkipped        HookStepStatus = HookStepStatus("skipped")
)

// HookInstallReport captures the outcome of every hook installation step.
type HookInstallReport struct {
	ToolStatus          HookStepStatus
	ConfigurationStatus HookStepStatus
	ActivationStatus    HookStepStatus
}

type hookConfigurationDocument struct {
	Repos []hookRepositoryEntry `yaml:"repos"`
}

type hookRepositoryEntry struct {
	Repo  string           `yaml:"repo"`
	Rev   string           `yaml:"rev"`
	Hooks []hookDefinition `yaml:"hooks"`
}

type hookDefinition struct {
	ID string `yaml:"id"`
}

// HookExecutor captures the shell operations the installer requires.
type HookExecutor interface {
	ExecutePreCommit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePipx(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePip(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// HookInstaller installs the gitleaks pre-commit hook. Every step is
// best-effort: failures downgrade to skipped statuses instead of aborting.
type HookInstaller struct {
	logger            *zap.Logger
	executor          HookExecutor
	repositoryManager *gitrepo.RepositoryManager
	toolLocator       ToolLocator
}

// NewHookInstaller constructs a HookInstaller.
func NewHookInstaller(logger *zap.Logger, executor HookExecutor, repositoryManager *gitrepo.RepositoryManager, toolLocator ToolLocator) *HookInstaller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HookInstaller{logger: logger, executor: executor, repositoryManager: repositoryManager, toolLocator: toolLocator}
}

// Install ensures the pre-commit tool, hook configuration, and hook
// activation are in place, reporting per-step statuses.
func (installer *HookInstaller) Install(executionContext context.Context, repositoryPath string) HookInstallReport {
	report := HookInstallReport{}

	report.ToolStatus = installer.ensureTool(executionContext)
	if report.ToolStatus == HookStepSkipped {
		report.ConfigurationStatus = HookStepSkipped
		report.ActivationStatus = HookStepSkipped
		return report
	}

	report.ConfigurationStatus = installer.ensureConfiguration(executionContext, repositoryPath)
	if report.ConfigurationStatus == HookStepSkipped {
		report.ActivationStatus = HookStepSkipped
		return report
	}

	report.ActivationStatus = installer.activateHook(executionContext, repositoryPath)
	return report
}

func (installer *HookInstaller) ensureTool(executionContext context.Context) HookStepStatus {
	if _, lookupError := installer.toolLocator.LookPath(preCommitToolNameConstant); lookupError == nil {
		return HookStepAlreadyPresent
	}

	_, pipxError := installer.executor.ExecutePipx(executionContext, execshell.CommandDetails{
		Arguments: []string{pipxInstallSubcommandConstant, preCommitToolNameConstant},
	})
	if pipxError == nil {
		return HookStepInstalled
	}

	_, pipError := installer.executor.ExecutePip(executionContext, execshell.CommandDetails{
		Arguments: []string{pipInstallSubcommandConstant, pipUserFlagConstant, preCommitToolNameConstant},
	})
	if pipError == nil {
		return HookStepInstalled
	}

	installer.logger.Warn(hookToolInstallFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, pipError))
	return HookStepSkipped
}

func (installer *HookInstaller) ensureConfiguration(executionContext context.Context, repositoryPath string) HookStepStatus {
	configurationPath := filepath.Join(repositoryPath, hookConfigurationFileNameConstant)
	if _, statError := os.Stat(configurationPath); statError == nil {
		return HookStepAlreadyPresent
	}

	configurationContent, marshalError := yaml.Marshal(hookConfigurationDocument{
		Repos: []hookRepositoryEntry{
			{
				Repo:  gitleaksHookRepositoryConstant,
				Rev:   gitleaksHookRevisionConstant,
				Hooks: []hookDefinition{{ID: gitleaksHookIdentifierConstant}},
			},
		},
	})
	if marshalError != nil {
		installer.logger.Warn(hookConfigWriteFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, marshalError))
		return HookStepSkipped
	}

	if writeError := os.WriteFile(configurationPath, configurationContent, hookConfigurationPermissionsConstant); writeError != nil {
		installer.logger.Warn(hookConfigWriteFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, writeError))
		return HookStepSkipped
	}

	installer.commitConfiguration(executionContext, repositoryPath)
	return HookStepInstalled
}

func (installer *HookInstaller) commitConfiguration(executionContext context.Context, repositoryPath string) {
	if stageError := installer.repositoryManager.StageFile(executionContext, repositoryPath, hookConfigurationFileNameConstant); stageError != nil {
		installer.logger.Warn(hookCommitFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, stageError))
		return
	}
	if _, commitError := installer.repositoryManager.Commit(executionContext, repositoryPath, hookCommitMessageConstant); commitError != nil {
		installer.logger.Warn(hookCommitFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, commitError))
	}
}

func (installer *HookInstaller) activateHook(executionContext context.Context, repositoryPath string) HookStepStatus {
	_, activationError := installer.executor.ExecutePreCommit(executionContext, execshell.CommandDetails{
		Arguments:        []string{preCommitInstallSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if activationError != nil {
		installer.logger.Warn(hookActivationFailedMessageConstant, zap.NamedError(hookStepErrorFieldConstant, activationError))
		return HookStepSkipped
	}
	return HookStepInstalled
}
