package scrub

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	refspecTemplateConstant                = "%s:%s"
	primaryPushErrorTemplateConstant       = "unable to push %s to %s: %w"
	fallbackPushErrorTemplateConstant      = "unable to push fallback branch %s to %s: %w"
	fallbackBranchPublishedMessageConstant = "Rewritten history published to fallback branch; promote it to default and protect it manually"
	fallbackBranchFieldConstant            = "fallback_branch"
	remoteFieldConstant                    = "remote"
	repositoryIdentifierFieldConstant      = "repository"
	repositoryIdentifierTemplateConstant   = "%s/%s"
)

// PublishOutcome reports where the rewritten history landed.
type PublishOutcome struct {
	PublishedBranch string
	UsedFallback    bool
}

// RemotePublisher force-pushes rewritten history, retrying exactly once on a
// fallback branch name when the primary push is rejected.
type RemotePublisher struct {
	logger            *zap.Logger
	repositoryManager *gitrepo.RepositoryManager
}

// NewRemotePublisher constructs a RemotePublisher.
func NewRemotePublisher(logger *zap.Logger, repositoryManager *gitrepo.RepositoryManager) *RemotePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemotePublisher{logger: logger, repositoryManager: repositoryManager}
}

// Publish pushes the branch under its own name, falling back once to the
// fallback branch name. Fallback rejection is returned as an error.
func (publisher *RemotePublisher) Publish(executionContext context.Context, repositoryPath string, configuration CommandConfiguration) (PublishOutcome, error) {
	primaryPushError := publisher.repositoryManager.ForcePush(executionContext, repositoryPath, configuration.RemoteName, configuration.BranchName)
	if primaryPushError == nil {
		return PublishOutcome{PublishedBranch: configuration.BranchName}, nil
	}

	var commandFailure execshell.CommandFailedError
	if !errors.As(primaryPushError, &commandFailure) {
		return PublishOutcome{}, fmt.Errorf(primaryPushErrorTemplateConstant, configuration.BranchName, configuration.RemoteName, primaryPushError)
	}

	fallbackRefspec := fmt.Sprintf(refspecTemplateConstant, configuration.BranchName, configuration.FallbackBranchName)
	fallbackPushError := publisher.repositoryManager.ForcePush(executionContext, repositoryPath, configuration.RemoteName, fallbackRefspec)
	if fallbackPushError != nil {
		return PublishOutcome{}, fmt.Errorf(fallbackPushErrorTemplateConstant, configuration.FallbackBranchName, configuration.RemoteName, fallbackPushError)
	}

	publisher.logFallbackPublication(executionContext, repositoryPath, configuration)

	return PublishOutcome{PublishedBranch: configuration.FallbackBranchName, UsedFallback: true}, nil
}

func (publisher *RemotePublisher) logFallbackPublication(executionContext context.Context, repositoryPath string, configuration CommandConfiguration) {
	logFields := []zap.Field{
		zap.String(remoteFieldConstant, configuration.RemoteName),
		zap.String(fallbackBranchFieldConstant, configuration.FallbackBranchName),
	}

	remoteURL, remoteError := publisher.repositoryManager.RemoteURLFor(executionContext, repositoryPath, configuration.RemoteName)
	if remoteError == nil {
		if parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL); parseError == nil {
			repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, parsedRemote.Owner, parsedRemote.Repository)
			logFields = append(logFields, zap.String(repositoryIdentifierFieldConstant, repositoryIdentifier))
		}
	}

	publisher.logger.Warn(fallbackBranchPublishedMessageConstant, logFields...)
}
