package scrub_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/gitrepo"
	"github.com/temirov/scrub/internal/scrub"
)

const (
	publishRepositoryPathConstant  = "/tmp/publish-repository"
	fallbackWarningMessageConstant = "Rewritten history published to fallback branch; promote it to default and protect it manually"
	primaryPushPrefixConstant      = "git push --force origin main"
	fallbackPushPrefixConstant     = "git push --force origin main:scrubbed-main"
)

func publishConfiguration() scrub.CommandConfiguration {
	return scrub.DefaultCommandConfiguration()
}

func TestRemotePublisherPrimarySuccess(testInstance *testing.T) {
	executor := newScriptedWorkflowExecutor()
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	publisher := scrub.NewRemotePublisher(zap.NewNop(), repositoryManager)
	outcome, publishError := publisher.Publish(context.Background(), publishRepositoryPathConstant, publishConfiguration())
	require.NoError(testInstance, publishError)
	require.Equal(testInstance, "main", outcome.PublishedBranch)
	require.False(testInstance, outcome.UsedFallback)
	require.Equal(testInstance, 1, executor.countCommands("git push"))
}

func TestRemotePublisherFallsBackExactlyOnce(testInstance *testing.T) {
	executor := newScriptedWorkflowExecutor()
	executor.scriptResponse(primaryPushPrefixConstant, scriptedResponse{executionError: gitCommandFailure([]string{"push"}, 1)})
	executor.scriptResponse(fallbackPushPrefixConstant, scriptedResponse{result: execshell.ExecutionResult{}})
	executor.scriptResponse("git remote get-url", scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "git@github.com:sample-owner/sample-repository.git\n"}})

	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	publisher := scrub.NewRemotePublisher(zap.New(observedCore), repositoryManager)
	outcome, publishError := publisher.Publish(context.Background(), publishRepositoryPathConstant, publishConfiguration())
	require.NoError(testInstance, publishError)
	require.Equal(testInstance, "scrubbed-main", outcome.PublishedBranch)
	require.True(testInstance, outcome.UsedFallback)
	require.Equal(testInstance, 2, executor.countCommands("git push"))

	warningEntries := observedLogs.FilterMessage(fallbackWarningMessageConstant).All()
	require.Len(testInstance, warningEntries, 1)
	loggedFields := warningEntries[0].ContextMap()
	require.Equal(testInstance, "sample-owner/sample-repository", loggedFields["repository"])
}

func TestRemotePublisherFallbackRejectionIsFatal(testInstance *testing.T) {
	executor := newScriptedWorkflowExecutor()
	executor.scriptResponse("git push --force origin main", scriptedResponse{executionError: gitCommandFailure([]string{"push"}, 1)})
	executor.scriptResponse(fallbackPushPrefixConstant, scriptedResponse{executionError: gitCommandFailure([]string{"push"}, 1)})

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	publisher := scrub.NewRemotePublisher(zap.NewNop(), repositoryManager)
	_, publishError := publisher.Publish(context.Background(), publishRepositoryPathConstant, publishConfiguration())
	require.Error(testInstance, publishError)
	require.Equal(testInstance, 2, executor.countCommands("git push"))
}
