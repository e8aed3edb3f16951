// Package githubauth resolves GitHub personal access tokens from flags and
// process environment variables.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubPAT      = "GITHUB_PAT"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubPAT,
	EnvGitHubCLIToken,
	EnvGitHubToken,
}

// ResolveToken returns the explicitly supplied token when present, otherwise
// the first non-empty token observed in the preferred environment variables.
func ResolveToken(explicitToken string) (string, bool) {
	trimmedExplicitToken := strings.TrimSpace(explicitToken)
	if len(trimmedExplicitToken) > 0 {
		return trimmedExplicitToken, true
	}

	for _, environmentKey := range tokenPreference {
		if environmentValue, exists := os.LookupEnv(environmentKey); exists {
			trimmedEnvironmentValue := strings.TrimSpace(environmentValue)
			if len(trimmedEnvironmentValue) > 0 {
				return trimmedEnvironmentValue, true
			}
		}
	}

	return "", false
}
