package rename_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mathiasbynens/github-default-branch/internal/enumeration"
	"github.com/mathiasbynens/github-default-branch/internal/githubapi"
	"github.com/mathiasbynens/github-default-branch/internal/rename"
)

type stubRemoteClient struct {
	fakeRemoteOperations
	listedOrganizations []string
	listedUsers         []string
}

func (client *stubRemoteClient) ListOrganizationRepositories(_ context.Context, organization string) ([]string, error) {
	client.listedOrganizations = append(client.listedOrganizations, organization)
	return nil, nil
}

func (client *stubRemoteClient) ListUserRepositories(_ context.Context, user string) ([]string, error) {
	client.listedUsers = append(client.listedUsers, user)
	return nil, nil
}

func (client *stubRemoteClient) GetBranchTree(_ context.Context, _ string, _ string, _ string) ([]githubapi.TreeEntry, error) {
	return nil, nil
}

func (client *stubRemoteClient) GetFileContent(_ context.Context, _ string, _ string, _ string, _ string) (githubapi.FileContent, error) {
	return githubapi.FileContent{}, nil
}

func (client *stubRemoteClient) UpdateFile(_ context.Context, _ string, _ string, _ string, _ string, _ string, _ []byte, _ string) error {
	return nil
}

type stubPrompter struct {
	confirmations []string
	response      bool
	promptError   error
}

func (prompter *stubPrompter) Confirm(promptText string) (bool, error) {
	prompter.confirmations = append(prompter.confirmations, promptText)
	if prompter.promptError != nil {
		return false, prompter.promptError
	}
	return prompter.response, nil
}

type recordingExecutor struct {
	requests         []rename.MigrationRequest
	executionOutcome []rename.MigrationOutcome
	executionError   error
}

func (executor *recordingExecutor) ExecuteFleet(_ context.Context, request rename.MigrationRequest) ([]rename.MigrationOutcome, error) {
	executor.requests = append(executor.requests, request)
	return executor.executionOutcome, executor.executionError
}

func buildRenameCommand(testInstance *testing.T, builder *rename.CommandBuilder) *cobra.Command {
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	return command
}

func executorProvider(executor *recordingExecutor) rename.ServiceProvider {
	return func(_ rename.ServiceDependencies) (rename.FleetExecutor, error) {
		return executor, nil
	}
}

func TestRenameCommandRejectsSelectorBeforeRemoteCalls(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{
			name:      "no_selector",
			arguments: []string{},
		},
		{
			name:      "organization_and_user",
			arguments: []string{"--org", "acme", "--user", "octocat"},
		},
		{
			name:      "all_selectors",
			arguments: []string{"--org", "acme", "--user", "octocat", "--repo", "acme/widgets"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			remoteClient := &stubRemoteClient{}
			executor := &recordingExecutor{}
			builder := &rename.CommandBuilder{
				RemoteClient:    remoteClient,
				ServiceProvider: executorProvider(executor),
			}
			command := buildRenameCommand(subtestInstance, builder)
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()

			require.ErrorIs(subtestInstance, executionError, enumeration.ErrSelectorCardinality)
			require.Empty(subtestInstance, executor.requests)
			require.Empty(subtestInstance, remoteClient.listedOrganizations)
			require.Empty(subtestInstance, remoteClient.listedUsers)
		})
	}
}

func TestRenameCommandRequiresToken(testInstance *testing.T) {
	testInstance.Setenv("GITHUB_PAT", "")
	testInstance.Setenv("GH_TOKEN", "")
	testInstance.Setenv("GITHUB_TOKEN", "")

	builder := &rename.CommandBuilder{}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--org", "acme", "--confirm"})

	executionError := command.Execute()

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "personal access token")
}

func TestRenameCommandConfirmationDeclinedAbortsSilently(testInstance *testing.T) {
	executor := &recordingExecutor{}
	prompter := &stubPrompter{response: false}
	builder := &rename.CommandBuilder{
		RemoteClient:    &stubRemoteClient{},
		Prompter:        prompter,
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--org", "acme"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Len(testInstance, prompter.confirmations, 1)
	require.Contains(testInstance, prompter.confirmations[0], `"master"`)
	require.Contains(testInstance, prompter.confirmations[0], `"main"`)
	require.Empty(testInstance, executor.requests)
}

func TestRenameCommandConfirmFlagSkipsPrompt(testInstance *testing.T) {
	executor := &recordingExecutor{}
	prompter := &stubPrompter{response: false}
	builder := &rename.CommandBuilder{
		RemoteClient:    &stubRemoteClient{},
		Prompter:        prompter,
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--org", "acme", "--confirm", "--keep-old", "--verbose"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, prompter.confirmations)
	require.Len(testInstance, executor.requests, 1)

	request := executor.requests[0]
	require.Equal(testInstance, "acme", request.Selector.Organization)
	require.Equal(testInstance, rename.BranchMaster, request.OldBranch)
	require.Equal(testInstance, rename.BranchMain, request.NewBranch)
	require.Equal(testInstance, rename.ModeApply, request.Mode)
	require.True(testInstance, request.KeepOldBranch)
	require.True(testInstance, request.Verbose)
	require.False(testInstance, request.ListReposOnly)
}

func TestRenameCommandDryRunSkipsPrompt(testInstance *testing.T) {
	executor := &recordingExecutor{}
	prompter := &stubPrompter{response: false}
	builder := &rename.CommandBuilder{
		RemoteClient:    &stubRemoteClient{},
		Prompter:        prompter,
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--repo", "acme/widgets", "--dry-run"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, prompter.confirmations)
	require.Len(testInstance, executor.requests, 1)
	require.Equal(testInstance, rename.ModeDryRun, executor.requests[0].Mode)
	require.Equal(testInstance, "acme/widgets", executor.requests[0].Selector.Repository)
}

func TestRenameCommandListReposOnlySkipsPrompt(testInstance *testing.T) {
	executor := &recordingExecutor{}
	prompter := &stubPrompter{response: false}
	builder := &rename.CommandBuilder{
		RemoteClient:    &stubRemoteClient{},
		Prompter:        prompter,
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--user", "octocat", "--list-repos-only"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, prompter.confirmations)
	require.Len(testInstance, executor.requests, 1)
	require.True(testInstance, executor.requests[0].ListReposOnly)
}

func TestRenameCommandAppliesConfigurationDefaults(testInstance *testing.T) {
	executor := &recordingExecutor{}
	builder := &rename.CommandBuilder{
		RemoteClient: &stubRemoteClient{},
		ConfigurationProvider: func() rename.CommandConfiguration {
			return rename.CommandConfiguration{
				OldBranch:     "trunk",
				NewBranch:     "stable",
				KeepOldBranch: true,
				DryRun:        true,
			}
		},
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--org", "acme"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Len(testInstance, executor.requests, 1)

	request := executor.requests[0]
	require.Equal(testInstance, rename.BranchName("trunk"), request.OldBranch)
	require.Equal(testInstance, rename.BranchName("stable"), request.NewBranch)
	require.True(testInstance, request.KeepOldBranch)
	require.Equal(testInstance, rename.ModeDryRun, request.Mode)
}

func TestRenameCommandFlagsOverrideConfiguration(testInstance *testing.T) {
	executor := &recordingExecutor{}
	builder := &rename.CommandBuilder{
		RemoteClient: &stubRemoteClient{},
		ConfigurationProvider: func() rename.CommandConfiguration {
			return rename.CommandConfiguration{OldBranch: "trunk", NewBranch: "stable", DryRun: true}
		},
		ServiceProvider: executorProvider(executor),
	}
	command := buildRenameCommand(testInstance, builder)
	command.SetArgs([]string{"--org", "acme", "--old", "master", "--new", "main", "--dry-run=false", "--confirm"})

	executionError := command.Execute()

	require.NoError(testInstance, executionError)
	require.Len(testInstance, executor.requests, 1)

	request := executor.requests[0]
	require.Equal(testInstance, rename.BranchMaster, request.OldBranch)
	require.Equal(testInstance, rename.BranchMain, request.NewBranch)
	require.Equal(testInstance, rename.ModeApply, request.Mode)
}
