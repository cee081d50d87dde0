package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForPushIncludesReferenceAndRemote(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"push", "--force", "origin", "main"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Pushing main to origin from /workspace/repo", message)
}

func TestBuildStartedMessageForMirrorCloneNamesSourceRepository(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"clone", "--mirror", "/workspace/repo", "/tmp/mirror.git"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Creating mirror clone of /workspace/repo", message)
}

func TestBuildFailureMessageForGrepIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"grep", "-I", "-E", "sk-"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 2, StandardError: "bad pattern"})

	require.Equal(t, "Content scan in /workspace/repo exited with code 2: bad pattern", message)
}

func TestBuildSuccessMessageForFilterRepoNamesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandFilterRepo,
		Details: CommandDetails{
			Arguments:        []string{"--force", "--invert-paths", "--path", ".env"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildSuccessMessage(command)

	require.Equal(t, "Rewrote history with git-filter-repo in /workspace/repo", message)
}
