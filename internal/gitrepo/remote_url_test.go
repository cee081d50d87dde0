package gitrepo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scrub/internal/gitrepo"
)

const (
	remoteURLSubtestTemplateConstant = "%d_%s"
	sshSchemeCaseNameConstant        = "ssh_scheme_remote"
	sshShorthandCaseNameConstant     = "ssh_shorthand_remote"
	httpsCaseNameConstant            = "https_remote"
	emptyRemoteCaseNameConstant      = "empty_remote_rejected"
	malformedRemoteCaseNameConstant  = "malformed_remote_rejected"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remote        string
		expected      gitrepo.RemoteURL
		expectedError bool
	}{
		{
			name:   sshSchemeCaseNameConstant,
			remote: "ssh://git@github.com/sample-owner/sample-repository.git",
			expected: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       "github.com",
				Owner:      "sample-owner",
				Repository: "sample-repository",
			},
		},
		{
			name:   sshShorthandCaseNameConstant,
			remote: "git@github.com:sample-owner/sample-repository.git",
			expected: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       "github.com",
				Owner:      "sample-owner",
				Repository: "sample-repository",
			},
		},
		{
			name:   httpsCaseNameConstant,
			remote: "https://github.com/sample-owner/sample-repository.git",
			expected: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       "github.com",
				Owner:      "sample-owner",
				Repository: "sample-repository",
			},
		},
		{
			name:          emptyRemoteCaseNameConstant,
			remote:        "   ",
			expectedError: true,
		},
		{
			name:          malformedRemoteCaseNameConstant,
			remote:        "ftp://github.com/sample-owner/sample-repository.git",
			expectedError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(remoteURLSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.remote)
			if testCase.expectedError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsedRemote)
		})
	}
}
