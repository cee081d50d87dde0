package scrub

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/secrets"
)

const (
	scanCommandUseConstant           = "scan"
	scanCommandShortDescription      = "Scan the working tree for secrets"
	scanCommandLongDescription       = "scan searches tracked content for known secret patterns and exits nonzero when any are found. With --deep it additionally reports advisory findings from the gitleaks rule catalog."
	deepScanFlagNameConstant         = "deep"
	deepScanFlagUsageConstant        = "Also run the gitleaks rule catalog for advisory findings"
	deepScannerErrorTemplateConstant = "unable to run deep scan: %w"
	snapshotCleanMessageConstant     = "No secrets found in the working tree"
	snapshotHitMessageConstant       = "Secret pattern matched in tracked content"
	deepFindingMessageConstant       = "Advisory finding from extended rule catalog"
	scanPatternFieldConstant         = "pattern"
	scanPathFieldConstant            = "path"
	scanLineFieldConstant            = "line"
	scanRuleFieldConstant            = "rule"
	scanDescriptionFieldConstant     = "description"
)

// ScanCommandBuilder assembles the scan Cobra command.
type ScanCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     WorkflowExecutor
	GitExecutor                  gitrepo.CommandExecutor
	WorkingDirectory             string
	HumanReadableLoggingProvider func() bool
}

// Build constructs the scan command.
func (builder *ScanCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           scanCommandUseConstant,
		Short:         scanCommandShortDescription,
		Long:          scanCommandLongDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runScan,
	}

	command.Flags().Bool(deepScanFlagNameConstant, false, deepScanFlagUsageConstant)

	return command, nil
}

func (builder *ScanCommandBuilder) runScan(command *cobra.Command, _ []string) error {
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

	snapshotScanner := NewSnapshotScanner(repositoryManager, secrets.DefaultPatterns())

	hits, scanError := snapshotScanner.Scan(command.Context(), repositoryPath)
	if scanError != nil {
		return fmt.Errorf(snapshotStageErrorTemplateConstant, scanError)
	}

	for _, hit := range hits {
		logger.Warn(
			snapshotHitMessageConstant,
			zap.String(scanPatternFieldConstant, hit.PatternName),
			zap.String(scanPathFieldConstant, hit.Path),
			zap.String(scanLineFieldConstant, hit.LineNumber),
		)
	}

	if deepRequested, _ := command.Flags().GetBool(deepScanFlagNameConstant); deepRequested {
		if deepError := builder.reportDeepFindings(command, logger, snapshotScanner, repositoryPath); deepError != nil {
			return deepError
		}
	}

	if len(hits) > 0 {
		return SecretsDetectedError{Hits: hits}
	}

	logger.Info(snapshotCleanMessageConstant)
	return nil
}

func (builder *ScanCommandBuilder) reportDeepFindings(command *cobra.Command, logger *zap.Logger, snapshotScanner *SnapshotScanner, repositoryPath string) error {
	deepScanner, scannerError := secrets.NewDeepScanner()
	if scannerError != nil {
		return fmt.Errorf(deepScannerErrorTemplateConstant, scannerError)
	}

	findings, findingsError := snapshotScanner.DeepScan(command.Context(), repositoryPath, deepScanner)
	if findingsError != nil {
		return fmt.Errorf(deepScannerErrorTemplateConstant, findingsError)
	}

	for _, finding := range findings {
		logger.Warn(
			deepFindingMessageConstant,
			zap.String(scanRuleFieldConstant, finding.Finding.RuleID),
			zap.String(scanDescriptionFieldConstant, finding.Finding.Description),
			zap.String(scanPathFieldConstant, finding.Path),
			zap.Int(scanLineFieldConstant, finding.Finding.Line),
		)
	}

	return nil
}
