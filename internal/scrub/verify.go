package scrub

import (
	"fmt"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/revlist"

	"github.com/temirov/scrub/internal/secrets"
)

const (
	repositoryOpenErrorTemplateConstant    = "unable to open repository for verification: %w"
	referenceEnumerationErrorTemplate      = "unable to enumerate references: %w"
	blobEnumerationErrorTemplateConstant   = "unable to enumerate historical blobs: %w"
	blobReadErrorTemplateConstant          = "unable to read blob %s: %w"
	residualSecretsMessageTemplateConstant = "history still contains secrets after rewrite: %s"
	residualMatchTemplateConstant          = "%s (blob %s)"
	residualMatchSeparatorConstant         = ", "
	binaryContentProbeByteConstant         = byte(0)
)

// ResidualMatch identifies a blob whose content still matches a secret pattern.
type ResidualMatch struct {
	PatternName string
	BlobHash    string
}

// ResidualSecretsError indicates the rewrite left matching content in history,
// signalling the redaction patterns are incomplete.
type ResidualSecretsError struct {
	Matches []ResidualMatch
}

// Error lists every residual match with its blob hash.
func (residualError ResidualSecretsError) Error() string {
	descriptions := make([]string, 0, len(residualError.Matches))
	for _, match := range residualError.Matches {
		descriptions = append(descriptions, fmt.Sprintf(residualMatchTemplateConstant, match.PatternName, match.BlobHash))
	}
	return fmt.Sprintf(residualSecretsMessageTemplateConstant, strings.Join(descriptions, residualMatchSeparatorConstant))
}

// HistoryVerifier re-scans rewritten history for residual secrets by decoding
// every blob reachable from any reference. Dangling pre-rewrite objects that
// only await garbage collection do not count against the rewrite.
type HistoryVerifier struct {
	patterns []secrets.Pattern
}

// NewHistoryVerifier constructs a HistoryVerifier over the provided patterns.
func NewHistoryVerifier(patterns []secrets.Pattern) *HistoryVerifier {
	return &HistoryVerifier{patterns: patterns}
}

// Verify walks every reachable blob and fails with ResidualSecretsError on any match.
func (verifier *HistoryVerifier) Verify(repositoryPath string) error {
	repository, openError := gogit.PlainOpen(repositoryPath)
	if openError != nil {
		return fmt.Errorf(repositoryOpenErrorTemplateConstant, openError)
	}

	reachableHashes, reachabilityError := reachableObjectHashes(repository)
	if reachabilityError != nil {
		return fmt.Errorf(blobEnumerationErrorTemplateConstant, reachabilityError)
	}

	residualMatches := []ResidualMatch{}
	for _, reachableHash := range reachableHashes {
		blob, blobError := repository.BlobObject(reachableHash)
		if blobError != nil {
			// Commit, tree, and tag objects carry no scannable content.
			continue
		}
		blobContent, readError := readBlobContent(blob)
		if readError != nil {
			return fmt.Errorf(blobReadErrorTemplateConstant, blob.Hash.String(), readError)
		}
		if isBinaryContent(blobContent) {
			continue
		}
		if patternName, matched := secrets.MatchAny(verifier.patterns, string(blobContent)); matched {
			residualMatches = append(residualMatches, ResidualMatch{PatternName: patternName, BlobHash: blob.Hash.String()})
		}
	}

	if len(residualMatches) > 0 {
		return ResidualSecretsError{Matches: residualMatches}
	}

	return nil
}

func reachableObjectHashes(repository *gogit.Repository) ([]plumbing.Hash, error) {
	referenceIterator, referencesError := repository.References()
	if referencesError != nil {
		return nil, fmt.Errorf(referenceEnumerationErrorTemplate, referencesError)
	}

	startingHashes := []plumbing.Hash{}
	collectionError := referenceIterator.ForEach(func(reference *plumbing.Reference) error {
		if reference.Type() != plumbing.HashReference {
			return nil
		}
		startingHashes = append(startingHashes, reference.Hash())
		return nil
	})
	if collectionError != nil {
		return nil, fmt.Errorf(referenceEnumerationErrorTemplate, collectionError)
	}

	return revlist.Objects(repository.Storer, startingHashes, nil)
}

func readBlobContent(blob *object.Blob) ([]byte, error) {
	blobReader, readerError := blob.Reader()
	if readerError != nil {
		return nil, readerError
	}
	defer func() {
		_ = blobReader.Close()
	}()
	return io.ReadAll(blobReader)
}

func isBinaryContent(content []byte) bool {
	for _, contentByte := range content {
		if contentByte == binaryContentProbeByteConstant {
			return true
		}
	}
	return false
}
