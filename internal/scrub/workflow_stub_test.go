package scrub_test

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/scrub/internal/execshell"
	"github.com/temirov/scrub/internal/scrub"
)

type scriptedResponse struct {
	result         execshell.ExecutionResult
	executionError error
}

// scriptedWorkflowExecutor satisfies both the repository manager executor and
// the workflow executor. Responses are registered by command-line prefix and
// consumed in order; unmatched commands succeed with empty output.
type scriptedWorkflowExecutor struct {
	responses                  map[string][]scriptedResponse
	executedCommands           []string
	executedWorkingDirectories []string
}

func newScriptedWorkflowExecutor() *scriptedWorkflowExecutor {
	return &scriptedWorkflowExecutor{responses: map[string][]scriptedResponse{}}
}

func (executor *scriptedWorkflowExecutor) scriptResponse(commandPrefix string, response scriptedResponse) {
	executor.responses[commandPrefix] = append(executor.responses[commandPrefix], response)
}

func (executor *scriptedWorkflowExecutor) countCommands(commandPrefix string) int {
	matched := 0
	for _, executedCommand := range executor.executedCommands {
		if strings.HasPrefix(executedCommand, commandPrefix) {
			matched++
		}
	}
	return matched
}

func (executor *scriptedWorkflowExecutor) run(commandName string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	commandLine := commandName + " " + strings.Join(details.Arguments, " ")
	executor.executedCommands = append(executor.executedCommands, commandLine)
	executor.executedWorkingDirectories = append(executor.executedWorkingDirectories, details.WorkingDirectory)

	matchedPrefix := ""
	for registeredPrefix := range executor.responses {
		if strings.HasPrefix(commandLine, registeredPrefix) && len(registeredPrefix) > len(matchedPrefix) {
			matchedPrefix = registeredPrefix
		}
	}
	if len(matchedPrefix) == 0 {
		return execshell.ExecutionResult{}, nil
	}

	queuedResponses := executor.responses[matchedPrefix]
	response := queuedResponses[0]
	if len(queuedResponses) > 1 {
		executor.responses[matchedPrefix] = queuedResponses[1:]
	}
	return response.result, response.executionError
}

func (executor *scriptedWorkflowExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandGit), details)
}

func (executor *scriptedWorkflowExecutor) ExecuteFilterRepo(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandFilterRepo), details)
}

func (executor *scriptedWorkflowExecutor) ExecuteBFG(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandBFG), details)
}

func (executor *scriptedWorkflowExecutor) ExecutePreCommit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandPreCommit), details)
}

func (executor *scriptedWorkflowExecutor) ExecutePipx(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandPipx), details)
}

func (executor *scriptedWorkflowExecutor) ExecutePip(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(string(execshell.CommandPip), details)
}

func gitCommandFailure(arguments []string, exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: arguments}},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

type stubToolLocator struct {
	availableTools map[string]bool
}

func (locator stubToolLocator) LookPath(toolName string) (string, error) {
	if locator.availableTools[toolName] {
		return "/usr/local/bin/" + toolName, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

type stubPrompter struct {
	response        bool
	recordedPrompts []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.recordedPrompts = append(prompter.recordedPrompts, prompt)
	return prompter.response, nil
}

type stubRewriter struct {
	backendName      string
	rewriteError     error
	recordedRequests []scrub.RewriteRequest
}

func (rewriter *stubRewriter) Rewrite(_ context.Context, request scrub.RewriteRequest) error {
	rewriter.recordedRequests = append(rewriter.recordedRequests, request)
	return rewriter.rewriteError
}

func (rewriter *stubRewriter) Name() string {
	return rewriter.backendName
}

type stubVerifier struct {
	verificationError error
	verifiedPaths     []string
}

func (verifier *stubVerifier) Verify(repositoryPath string) error {
	verifier.verifiedPaths = append(verifier.verifiedPaths, repositoryPath)
	return verifier.verificationError
}
