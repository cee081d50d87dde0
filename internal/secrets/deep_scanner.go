package secrets

import (
	"fmt"

	"github.com/zricethezav/gitleaks/v8/detect"
)

const deepScannerInitializationTemplateConstant = "unable to initialize deep scanner: %w"

// Finding describes a secret detected by the deep scanner.
type Finding struct {
	RuleID      string
	Description string
	Secret      string
	Line        int
}

// DeepScanner detects secrets beyond the built-in patterns using the
// gitleaks rule catalog. Its findings are advisory and never gate the
// scrubbing workflow.
type DeepScanner struct {
	detector *detect.Detector
}

// NewDeepScanner constructs a scanner backed by the default gitleaks rules.
func NewDeepScanner() (*DeepScanner, error) {
	detector, detectorError := detect.NewDetectorDefaultConfig()
	if detectorError != nil {
		return nil, fmt.Errorf(deepScannerInitializationTemplateConstant, detectorError)
	}
	return &DeepScanner{detector: detector}, nil
}

// ScanContent reports every rule hit in the provided content.
func (scanner *DeepScanner) ScanContent(content string) []Finding {
	detectedFindings := scanner.detector.DetectString(content)
	findings := make([]Finding, 0, len(detectedFindings))
	for _, detectedFinding := range detectedFindings {
		findings = append(findings, Finding{
			RuleID:      detectedFinding.RuleID,
			Description: detectedFinding.Description,
			Secret:      detectedFinding.Secret,
			Line:        detectedFinding.StartLine,
		})
	}
	return findings
}
