package scrub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/secrets"
)

const (
	repositoryPathFieldNameConstant         = "repository_path"
	requiredValueMessageConstant            = "value required"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	workflowExecutorMissingMessageConstant  = "workflow executor not configured"
	rewriteDeclinedMessageConstant          = "history rewrite declined"
	rewriteConfirmationPromptTemplate       = "About to rewrite history and force-push %s to %s. This is irreversible. Continue? [y/N]: "
	preflightStageErrorTemplateConstant     = "preflight failed: %w"
	ignoreStageErrorTemplateConstant        = "ignore enforcement failed: %w"
	snapshotStageErrorTemplateConstant      = "snapshot scan failed: %w"
	ruleStageErrorTemplateConstant          = "replacement rule generation failed: %w"
	rewriteStageErrorTemplateConstant       = "history rewrite failed: %w"
	publishStageErrorTemplateConstant       = "publish failed: %w"
	verificationStageErrorTemplateConstant  = "post-scrub verification failed: %w"
	confirmationErrorTemplateConstant       = "unable to read confirmation: %w"
	ignoreOutcomeMessageConstant            = "Ignore enforcement completed"
	branchMismatchMessageConstant           = "Checked out branch differs from the publish branch"
	checkedOutBranchFieldConstant           = "checked_out_branch"
	publishBranchFieldConstant              = "publish_branch"
	rewriteCompletedMessageConstant         = "History rewrite completed"
	scrubCompletedMessageConstant           = "Secret scrub completed"
	untrackedFieldConstant                  = "sensitive_file_untracked"
	appendedEntriesFieldConstant            = "ignore_entries_appended"
	committedFieldConstant                  = "committed"
	rewriterFieldConstant                   = "rewriter"
	publishedBranchFieldConstant            = "published_branch"
	usedFallbackFieldConstant               = "used_fallback"
	hookToolStatusFieldConstant             = "hook_tool"
	hookConfigurationStatusFieldConstant    = "hook_configuration"
	hookActivationStatusFieldConstant       = "hook_activation"
)

// Service construction and confirmation failure modes.
var (
	errRepositoryManagerMissing = errors.New(repositoryManagerMissingMessageConstant)
	errWorkflowExecutorMissing  = errors.New(workflowExecutorMissingMessageConstant)
	// ErrRewriteDeclined indicates the user rejected the destructive rewrite.
	ErrRewriteDeclined = errors.New(rewriteDeclinedMessageConstant)
)

// InvalidInputError describes scrub option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// WorkflowExecutor captures every shell operation the workflow requires.
type WorkflowExecutor interface {
	RewriteExecutor
	HookExecutor
}

// HistoryChecker re-scans rewritten history for residual secrets.
type HistoryChecker interface {
	Verify(repositoryPath string) error
}

// ServiceDependencies describes required collaborators for the scrub workflow.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager *gitrepo.RepositoryManager
	Executor          WorkflowExecutor
	ToolLocator       ToolLocator
	Prompter          ConfirmationPrompter
	Rewriter          HistoryRewriter
	Verifier          HistoryChecker
}

// ScrubOptions configures one run of the scrub workflow.
type ScrubOptions struct {
	RepositoryPath string
	Configuration  CommandConfiguration
}

// ScrubResult captures the observable outcomes of a completed run.
type ScrubResult struct {
	IgnoreOutcome  IgnoreOutcome
	RewriterName   string
	PublishOutcome PublishOutcome
	HookReport     HookInstallReport
}

// Service orchestrates the secret scrubbing workflow.
type Service struct {
	logger            *zap.Logger
	repositoryManager *gitrepo.RepositoryManager
	executor          WorkflowExecutor
	toolLocator       ToolLocator
	prompter          ConfirmationPrompter
	rewriter          HistoryRewriter
	verifier          HistoryChecker
	preflightChecker  *PreflightChecker
	ignoreEnforcer    *IgnoreEnforcer
	snapshotScanner   *SnapshotScanner
	ruleFileWriter    *RuleFileWriter
	remotePublisher   *RemotePublisher
	hookInstaller     *HookInstaller
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.Executor == nil {
		return nil, errWorkflowExecutorMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	toolLocator := dependencies.ToolLocator
	if toolLocator == nil {
		toolLocator = ExecutableToolLocator{}
	}

	verifier := dependencies.Verifier
	if verifier == nil {
		verifier = NewHistoryVerifier(secrets.DefaultPatterns())
	}

	patterns := secrets.DefaultPatterns()

	service := &Service{
		logger:            logger,
		repositoryManager: dependencies.RepositoryManager,
		executor:          dependencies.Executor,
		toolLocator:       toolLocator,
		prompter:          dependencies.Prompter,
		rewriter:          dependencies.Rewriter,
		verifier:          verifier,
		preflightChecker:  NewPreflightChecker(dependencies.RepositoryManager),
		ignoreEnforcer:    NewIgnoreEnforcer(dependencies.RepositoryManager),
		snapshotScanner:   NewSnapshotScanner(dependencies.RepositoryManager, patterns),
		ruleFileWriter:    NewRuleFileWriter(patterns),
		remotePublisher:   NewRemotePublisher(logger, dependencies.RepositoryManager),
		hookInstaller:     NewHookInstaller(logger, dependencies.Executor, dependencies.RepositoryManager, toolLocator),
	}

	return service, nil
}

// Execute runs the workflow end to end: preflight, ignore enforcement,
// snapshot scan, rule generation, history rewrite, publication, verification,
// and best-effort hook installation.
func (service *Service) Execute(executionContext context.Context, options ScrubOptions) (ScrubResult, error) {
	if validationError := service.validateOptions(options); validationError != nil {
		return ScrubResult{}, validationError
	}
	configuration := options.Configuration.Sanitize()

	if preflightError := service.preflightChecker.Check(executionContext, options.RepositoryPath); preflightError != nil {
		return ScrubResult{}, fmt.Errorf(preflightStageErrorTemplateConstant, preflightError)
	}
	service.warnOnBranchMismatch(executionContext, options.RepositoryPath, configuration)

	ignoreOutcome, ignoreError := service.ignoreEnforcer.Enforce(executionContext, options.RepositoryPath, configuration.SensitiveFileName)
	if ignoreError != nil {
		return ScrubResult{}, fmt.Errorf(ignoreStageErrorTemplateConstant, ignoreError)
	}
	service.logger.Info(
		ignoreOutcomeMessageConstant,
		zap.Bool(untrackedFieldConstant, ignoreOutcome.SensitiveFileUntracked),
		zap.Strings(appendedEntriesFieldConstant, ignoreOutcome.IgnoreEntriesAppended),
		zap.Bool(committedFieldConstant, ignoreOutcome.ChangesCommitted),
	)

	if guardError := service.snapshotScanner.Guard(executionContext, options.RepositoryPath); guardError != nil {
		var detectedError SecretsDetectedError
		if errors.As(guardError, &detectedError) {
			return ScrubResult{}, guardError
		}
		return ScrubResult{}, fmt.Errorf(snapshotStageErrorTemplateConstant, guardError)
	}

	ruleFilePath, ruleError := service.ruleFileWriter.Write(options.RepositoryPath, configuration.RuleFileName)
	if ruleError != nil {
		return ScrubResult{}, fmt.Errorf(ruleStageErrorTemplateConstant, ruleError)
	}

	if confirmationError := service.confirmRewrite(configuration); confirmationError != nil {
		return ScrubResult{}, confirmationError
	}

	rewriter, rewriterError := service.resolveRewriter()
	if rewriterError != nil {
		return ScrubResult{}, rewriterError
	}

	rewriteRequest := RewriteRequest{
		RepositoryPath:    options.RepositoryPath,
		SensitiveFileName: configuration.SensitiveFileName,
		RuleFilePath:      ruleFilePath,
	}
	if rewriteError := rewriter.Rewrite(executionContext, rewriteRequest); rewriteError != nil {
		return ScrubResult{}, fmt.Errorf(rewriteStageErrorTemplateConstant, rewriteError)
	}
	service.logger.Info(rewriteCompletedMessageConstant, zap.String(rewriterFieldConstant, rewriter.Name()))

	publishOutcome, publishError := service.remotePublisher.Publish(executionContext, options.RepositoryPath, configuration)
	if publishError != nil {
		return ScrubResult{}, fmt.Errorf(publishStageErrorTemplateConstant, publishError)
	}

	if verificationError := service.verifier.Verify(options.RepositoryPath); verificationError != nil {
		var residualError ResidualSecretsError
		if errors.As(verificationError, &residualError) {
			return ScrubResult{}, verificationError
		}
		return ScrubResult{}, fmt.Errorf(verificationStageErrorTemplateConstant, verificationError)
	}

	hookReport := service.hookInstaller.Install(executionContext, options.RepositoryPath)

	result := ScrubResult{
		IgnoreOutcome:  ignoreOutcome,
		RewriterName:   rewriter.Name(),
		PublishOutcome: publishOutcome,
		HookReport:     hookReport,
	}

	service.logger.Info(
		scrubCompletedMessageConstant,
		zap.String(publishedBranchFieldConstant, publishOutcome.PublishedBranch),
		zap.Bool(usedFallbackFieldConstant, publishOutcome.UsedFallback),
		zap.String(hookToolStatusFieldConstant, string(hookReport.ToolStatus)),
		zap.String(hookConfigurationStatusFieldConstant, string(hookReport.ConfigurationStatus)),
		zap.String(hookActivationStatusFieldConstant, string(hookReport.ActivationStatus)),
	)

	return result, nil
}

func (service *Service) validateOptions(options ScrubOptions) error {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func (service *Service) warnOnBranchMismatch(executionContext context.Context, repositoryPath string, configuration CommandConfiguration) {
	checkedOutBranch, branchError := service.repositoryManager.CurrentBranch(executionContext, repositoryPath)
	if branchError != nil || len(checkedOutBranch) == 0 || checkedOutBranch == configuration.BranchName {
		return
	}
	service.logger.Warn(
		branchMismatchMessageConstant,
		zap.String(checkedOutBranchFieldConstant, checkedOutBranch),
		zap.String(publishBranchFieldConstant, configuration.BranchName),
	)
}

func (service *Service) confirmRewrite(configuration CommandConfiguration) error {
	if configuration.AssumeYes || service.prompter == nil {
		return nil
	}

	prompt := fmt.Sprintf(rewriteConfirmationPromptTemplate, configuration.BranchName, configuration.RemoteName)
	confirmed, confirmationError := service.prompter.Confirm(prompt)
	if confirmationError != nil {
		return fmt.Errorf(confirmationErrorTemplateConstant, confirmationError)
	}
	if !confirmed {
		return ErrRewriteDeclined
	}
	return nil
}

func (service *Service) resolveRewriter() (HistoryRewriter, error) {
	if service.rewriter != nil {
		return service.rewriter, nil
	}
	return SelectRewriter(service.toolLocator, service.executor)
}
