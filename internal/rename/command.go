package rename

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mathiasbynens/github-default-branch/internal/contents"
	"github.com/mathiasbynens/github-default-branch/internal/enumeration"
	"github.com/mathiasbynens/github-default-branch/internal/githubapi"
	"github.com/mathiasbynens/github-default-branch/internal/githubauth"
	"github.com/mathiasbynens/github-default-branch/internal/prompt"
	"github.com/mathiasbynens/github-default-branch/internal/ui"
)

const (
	commandUseConstant                   = "rename"
	commandShortDescriptionConstant      = "Rename the default branch across the selected repositories"
	commandLongDescriptionConstant       = "rename creates the new branch from the old one, retargets open pull requests, promotes the new branch to default, optionally deletes the old branch, and rewrites branch references in workflows and documentation."
	organizationFlagNameConstant         = "org"
	organizationFlagUsageConstant        = "Migrate every repository owned by the organization"
	userFlagNameConstant                 = "user"
	userFlagUsageConstant                = "Migrate every repository owned by the user"
	repositoryFlagNameConstant           = "repo"
	repositoryFlagUsageConstant          = "Migrate a single owner/repo repository"
	oldBranchFlagNameConstant            = "old"
	oldBranchFlagUsageConstant           = "Branch to rename"
	newBranchFlagNameConstant            = "new"
	newBranchFlagUsageConstant           = "Replacement branch name"
	personalAccessTokenFlagNameConstant  = "pat"
	personalAccessTokenFlagUsageConstant = "GitHub personal access token"
	keepOldFlagNameConstant              = "keep-old"
	keepOldFlagUsageConstant             = "Keep the old branch instead of deleting it"
	dryRunFlagNameConstant               = "dry-run"
	dryRunFlagUsageConstant              = "Report the planned actions without executing them"
	verboseFlagNameConstant              = "verbose"
	verboseFlagUsageConstant             = "Narrate every action and report the remaining API quota"
	listReposOnlyFlagNameConstant        = "list-repos-only"
	listReposOnlyFlagUsageConstant       = "Print the selected repositories and exit"
	confirmFlagNameConstant              = "confirm"
	confirmFlagUsageConstant             = "Skip the interactive confirmation prompt"
	missingTokenMessageConstant          = "a GitHub personal access token is required: pass --pat or set GITHUB_PAT, GH_TOKEN, or GITHUB_TOKEN"
	clientCreationErrorTemplateConstant  = "unable to construct GitHub client: %w"
	rewriterCreationErrorTemplate        = "unable to construct content rewriter: %w"
	enumeratorCreationErrorTemplate      = "unable to construct repository enumerator: %w"
	confirmationPromptTemplateConstant   = "Rename %q to %q across the selected repositories? [y/N] "
	logMessageRunDeclinedConstant        = "Migration declined at confirmation prompt"
	logMessageRunFailedConstant          = "Migration run failed"
	logFieldSelectorOrganizationConstant = "organization"
	logFieldSelectorUserConstant         = "user"
	logFieldSelectorRepositoryConstant   = "repository"
)

var errTokenRequired = errors.New(missingTokenMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// RemoteClient aggregates the remote capabilities the rename command wires
// together: branch and pull request mutations, repository listings, and file
// content access for the rewriter.
type RemoteClient interface {
	RemoteOperations
	enumeration.RepositoryListing
	contents.FileClient
}

// FleetExecutor runs a fleet migration.
type FleetExecutor interface {
	ExecuteFleet(executionContext context.Context, request MigrationRequest) ([]MigrationOutcome, error)
}

// ServiceProvider constructs a fleet executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (FleetExecutor, error)

type commandOptions struct {
	selector      enumeration.Selector
	oldBranch     BranchName
	newBranch     BranchName
	token         string
	keepOldBranch bool
	dryRun        bool
	verbose       bool
	listReposOnly bool
	confirmed     bool
}

// CommandBuilder assembles the rename Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	RemoteClient          RemoteClient
	Prompter              prompt.ConfirmationPrompter
	Reporter              ui.Reporter
	ServiceProvider       ServiceProvider
}

// Build constructs the rename command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runRename,
	}

	command.Flags().String(organizationFlagNameConstant, "", organizationFlagUsageConstant)
	command.Flags().String(userFlagNameConstant, "", userFlagUsageConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(oldBranchFlagNameConstant, string(BranchMaster), oldBranchFlagUsageConstant)
	command.Flags().String(newBranchFlagNameConstant, string(BranchMain), newBranchFlagUsageConstant)
	command.Flags().String(personalAccessTokenFlagNameConstant, "", personalAccessTokenFlagUsageConstant)
	command.Flags().Bool(keepOldFlagNameConstant, false, keepOldFlagUsageConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	command.Flags().Bool(verboseFlagNameConstant, false, verboseFlagUsageConstant)
	command.Flags().Bool(listReposOnlyFlagNameConstant, false, listReposOnlyFlagUsageConstant)
	command.Flags().Bool(confirmFlagNameConstant, false, confirmFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runRename(command *cobra.Command, _ []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	if selectorError := options.selector.Validate(); selectorError != nil {
		return selectorError
	}

	logger := builder.resolveLogger()

	token, tokenAvailable := githubauth.ResolveToken(options.token)
	if !tokenAvailable && builder.RemoteClient == nil {
		return errTokenRequired
	}

	mode := ModeApply
	if options.dryRun {
		mode = ModeDryRun
	}

	if mode.Mutates() && !options.confirmed && !options.listReposOnly {
		prompter := builder.resolvePrompter(command)
		confirmationPrompt := fmt.Sprintf(confirmationPromptTemplateConstant, string(options.oldBranch), string(options.newBranch))
		confirmed, confirmationError := prompter.Confirm(confirmationPrompt)
		if confirmationError != nil {
			return confirmationError
		}
		if !confirmed {
			logger.Info(
				logMessageRunDeclinedConstant,
				zap.String(logFieldSelectorOrganizationConstant, options.selector.Organization),
				zap.String(logFieldSelectorUserConstant, options.selector.User),
				zap.String(logFieldSelectorRepositoryConstant, options.selector.Repository),
			)
			return nil
		}
	}

	remoteClient, clientError := builder.resolveRemoteClient(token)
	if clientError != nil {
		return fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	reporter := builder.resolveReporter(command)

	enumerator, enumeratorError := enumeration.NewEnumerator(remoteClient)
	if enumeratorError != nil {
		return fmt.Errorf(enumeratorCreationErrorTemplate, enumeratorError)
	}

	rewriter, rewriterError := contents.NewRewriter(logger, remoteClient, reporter)
	if rewriterError != nil {
		return fmt.Errorf(rewriterCreationErrorTemplate, rewriterError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:           logger,
		RemoteOperations: remoteClient,
		RepositoryLister: enumerator,
		ContentUpdater:   rewriter,
		Reporter:         reporter,
	})
	if serviceError != nil {
		return serviceError
	}

	request := MigrationRequest{
		Selector:      options.selector,
		OldBranch:     options.oldBranch,
		NewBranch:     options.newBranch,
		Mode:          mode,
		KeepOldBranch: options.keepOldBranch,
		Verbose:       options.verbose,
		ListReposOnly: options.listReposOnly,
	}

	if _, executionError := service.ExecuteFleet(command.Context(), request); executionError != nil {
		logger.Error(logMessageRunFailedConstant, zap.Error(executionError))
		return executionError
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	organization, _ := command.Flags().GetString(organizationFlagNameConstant)
	user, _ := command.Flags().GetString(userFlagNameConstant)
	repository, _ := command.Flags().GetString(repositoryFlagNameConstant)
	token, _ := command.Flags().GetString(personalAccessTokenFlagNameConstant)
	verbose, _ := command.Flags().GetBool(verboseFlagNameConstant)
	listReposOnly, _ := command.Flags().GetBool(listReposOnlyFlagNameConstant)
	confirmed, _ := command.Flags().GetBool(confirmFlagNameConstant)

	oldBranchName := configuration.OldBranch
	if command.Flags().Changed(oldBranchFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(oldBranchFlagNameConstant)
		oldBranchName = strings.TrimSpace(flagValue)
	}

	newBranchName := configuration.NewBranch
	if command.Flags().Changed(newBranchFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(newBranchFlagNameConstant)
		newBranchName = strings.TrimSpace(flagValue)
	}

	keepOldBranch := configuration.KeepOldBranch
	if command.Flags().Changed(keepOldFlagNameConstant) {
		keepOldBranch, _ = command.Flags().GetBool(keepOldFlagNameConstant)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, _ = command.Flags().GetBool(dryRunFlagNameConstant)
	}

	options := commandOptions{
		selector: enumeration.Selector{
			Organization: strings.TrimSpace(organization),
			User:         strings.TrimSpace(user),
			Repository:   strings.TrimSpace(repository),
		},
		oldBranch:     BranchName(oldBranchName),
		newBranch:     BranchName(newBranchName),
		token:         token,
		keepOldBranch: keepOldBranch,
		dryRun:        dryRun,
		verbose:       verbose,
		listReposOnly: listReposOnly,
		confirmed:     confirmed,
	}

	return options, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) prompt.ConfirmationPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) resolveReporter(command *cobra.Command) ui.Reporter {
	if builder.Reporter != nil {
		return builder.Reporter
	}
	return ui.NewWriterReporter(command.OutOrStdout())
}

func (builder *CommandBuilder) resolveRemoteClient(token string) (RemoteClient, error) {
	if builder.RemoteClient != nil {
		return builder.RemoteClient, nil
	}
	return githubapi.NewClient(token)
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (FleetExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}
