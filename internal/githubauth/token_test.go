package githubauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathiasbynens/github-default-branch/internal/githubauth"
)

func TestResolveTokenPrefersExplicitValue(testInstance *testing.T) {
	testInstance.Setenv(githubauth.EnvGitHubPAT, "environment-token")

	token, resolved := githubauth.ResolveToken("  explicit-token  ")
	require.True(testInstance, resolved)
	require.Equal(testInstance, "explicit-token", token)
}

func TestResolveTokenHonorsEnvironmentPreference(testInstance *testing.T) {
	testInstance.Setenv(githubauth.EnvGitHubPAT, "")
	testInstance.Setenv(githubauth.EnvGitHubCLIToken, "cli-token")
	testInstance.Setenv(githubauth.EnvGitHubToken, "generic-token")

	token, resolved := githubauth.ResolveToken("")
	require.True(testInstance, resolved)
	require.Equal(testInstance, "cli-token", token)
}

func TestResolveTokenReportsMissingCredential(testInstance *testing.T) {
	testInstance.Setenv(githubauth.EnvGitHubPAT, "")
	testInstance.Setenv(githubauth.EnvGitHubCLIToken, "")
	testInstance.Setenv(githubauth.EnvGitHubToken, "   ")

	_, resolved := githubauth.ResolveToken("")
	require.False(testInstance, resolved)
}
