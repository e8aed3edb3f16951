package rename

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mathiasbynens/github-default-branch/internal/contents"
	"github.com/mathiasbynens/github-default-branch/internal/enumeration"
	"github.com/mathiasbynens/github-default-branch/internal/githubapi"
	"github.com/mathiasbynens/github-default-branch/internal/ui"
)

const (
	oldBranchFieldNameConstant                   = "old_branch"
	newBranchFieldNameConstant                   = "new_branch"
	executionModeFieldNameConstant               = "execution_mode"
	requiredValueMessageConstant                 = "value required"
	unsupportedModeMessageConstant               = "unsupported execution mode"
	identicalBranchesMessageConstant             = "old and new branch names must differ"
	remoteOperationsMissingMessageConstant       = "remote operations not configured"
	repositoryListerMissingMessageConstant       = "repository lister not configured"
	contentUpdaterMissingMessageConstant         = "content updater not configured"
	rateLimitQueryErrorTemplateConstant          = "unable to query API rate limit: %w"
	repositoryListErrorTemplateConstant          = "unable to list repositories: %w"
	branchCreationErrorTemplateConstant          = "unable to create branch %q in %s: %w"
	pullRequestListErrorTemplateConstant         = "unable to list pull requests for %s: %w"
	pullRequestRetargetErrorTemplateConstant     = "unable to retarget pull request #%d in %s: %w"
	defaultBranchUpdateErrorTemplateConstant     = "unable to update default branch for %s: %w"
	branchDeletionErrorTemplateConstant          = "unable to delete branch %q in %s: %w"
	contentUpdateErrorTemplateConstant           = "unable to update branch references in %s: %w"
	rateLimitReportTemplateConstant              = "API quota: %d of %d requests remaining"
	branchResolutionSkipTemplateConstant         = "Skipping %s: unable to resolve branch %q (%v)"
	malformedIdentifierSkipTemplateConstant      = "Skipping %s: %v"
	repositoryMigratedTemplateConstant           = "Migrated %s"
	runCompletedMessageConstant                  = "Done"
	remainingReferencesWarningTemplateConstant   = "References to %q remain in %s"
	dryRunCreateBranchTemplateConstant           = "Would create branch %q from %q (%s)"
	applyCreateBranchTemplateConstant            = "Creating branch %q from %q (%s)"
	dryRunRetargetPullRequestTemplateConstant    = "Would retarget pull request #%d (%s) to %q"
	applyRetargetPullRequestTemplateConstant     = "Retargeting pull request #%d (%s) to %q"
	dryRunSetDefaultBranchTemplateConstant       = "Would set default branch to %q"
	applySetDefaultBranchTemplateConstant        = "Setting default branch to %q"
	dryRunDeleteBranchTemplateConstant           = "Would delete branch %q"
	applyDeleteBranchTemplateConstant            = "Deleting branch %q"
	logMessageRepositorySkippedConstant          = "Repository skipped"
	logMessageRepositoryMigratedConstant         = "Repository migrated"
	logFieldRepositoryConstant                   = "repository"
	logFieldOldBranchConstant                    = "old_branch"
	logFieldNewBranchConstant                    = "new_branch"
	logFieldSkipReasonConstant                   = "reason"
	logFieldRetargetedPullRequestsConstant       = "retargeted_pull_requests"
	logFieldUpdatedFilesConstant                 = "updated_files"
	logFieldOldBranchDeletedConstant             = "old_branch_deleted"
	retargetedPullRequestInitialCapacityConstant = 4
)

var (
	errRemoteOperationsMissing = errors.New(remoteOperationsMissingMessageConstant)
	errRepositoryListerMissing = errors.New(repositoryListerMissingMessageConstant)
	errContentUpdaterMissing   = errors.New(contentUpdaterMissingMessageConstant)
)

// InvalidInputError describes migration request validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// RemoteOperations describes the remote branch, pull request, and repository
// mutations the migration depends on.
type RemoteOperations interface {
	GetBranchHeadSHA(executionContext context.Context, owner string, repository string, branch string) (string, error)
	CreateBranch(executionContext context.Context, owner string, repository string, branch string, commitSHA string) error
	DeleteBranch(executionContext context.Context, owner string, repository string, branch string) error
	ListOpenPullRequests(executionContext context.Context, owner string, repository string) ([]githubapi.PullRequest, error)
	UpdatePullRequestBase(executionContext context.Context, owner string, repository string, pullRequestNumber int, newBaseBranch string) error
	SetDefaultBranch(executionContext context.Context, owner string, repository string, branch string) error
	GetRateLimit(executionContext context.Context) (githubapi.RateLimitStatus, error)
}

// RepositoryLister resolves a selector into ordered repository identifiers.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, selector enumeration.Selector) ([]string, error)
}

// ContentUpdater rewrites branch references inside repository files.
type ContentUpdater interface {
	Update(executionContext context.Context, config contents.UpdateConfig) (contents.UpdateOutcome, error)
}

// MigrationRequest configures one fleet migration run.
type MigrationRequest struct {
	Selector      enumeration.Selector
	OldBranch     BranchName
	NewBranch     BranchName
	Mode          ExecutionMode
	KeepOldBranch bool
	Verbose       bool
	ListReposOnly bool
}

// ServiceDependencies describes required collaborators for the migration service.
type ServiceDependencies struct {
	Logger           *zap.Logger
	RemoteOperations RemoteOperations
	RepositoryLister RepositoryLister
	ContentUpdater   ContentUpdater
	Reporter         ui.Reporter
}

// Service drives the default-branch migration across the selected repositories.
type Service struct {
	logger           *zap.Logger
	remoteOperations RemoteOperations
	repositoryLister RepositoryLister
	contentUpdater   ContentUpdater
	reporter         ui.Reporter
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RemoteOperations == nil {
		return nil, errRemoteOperationsMissing
	}
	if dependencies.RepositoryLister == nil {
		return nil, errRepositoryListerMissing
	}
	if dependencies.ContentUpdater == nil {
		return nil, errContentUpdaterMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = ui.NewWriterReporter(nil)
	}

	service := &Service{
		logger:           logger,
		remoteOperations: dependencies.RemoteOperations,
		repositoryLister: dependencies.RepositoryLister,
		contentUpdater:   dependencies.ContentUpdater,
		reporter:         reporter,
	}

	return service, nil
}

// ExecuteFleet migrates every repository matched by the request selector, one
// repository at a time in listing order. Repositories whose old branch cannot
// be resolved are skipped; any other failure aborts the run.
func (service *Service) ExecuteFleet(executionContext context.Context, request MigrationRequest) ([]MigrationOutcome, error) {
	if validationError := service.validateRequest(request); validationError != nil {
		return nil, validationError
	}

	if request.Verbose {
		rateLimitStatus, rateLimitError := service.remoteOperations.GetRateLimit(executionContext)
		if rateLimitError != nil {
			return nil, fmt.Errorf(rateLimitQueryErrorTemplateConstant, rateLimitError)
		}
		service.reporter.Info(rateLimitReportTemplateConstant, rateLimitStatus.Remaining, rateLimitStatus.Limit)
	}

	repositoryIdentifiers, listError := service.repositoryLister.ListRepositories(executionContext, request.Selector)
	if listError != nil {
		return nil, fmt.Errorf(repositoryListErrorTemplateConstant, listError)
	}

	if request.ListReposOnly {
		for _, repositoryIdentifier := range repositoryIdentifiers {
			service.reporter.Plain("%s", repositoryIdentifier)
		}
		return nil, nil
	}

	outcomes := make([]MigrationOutcome, 0, len(repositoryIdentifiers))
	for _, repositoryIdentifier := range repositoryIdentifiers {
		reference, parseError := ParseRepositoryRef(repositoryIdentifier)
		if parseError != nil {
			service.reporter.Warning(malformedIdentifierSkipTemplateConstant, repositoryIdentifier, parseError)
			service.logger.Warn(
				logMessageRepositorySkippedConstant,
				zap.String(logFieldRepositoryConstant, repositoryIdentifier),
				zap.Error(parseError),
			)
			outcomes = append(outcomes, MigrationOutcome{
				Kind:   OutcomeSkipped,
				Reason: parseError.Error(),
			})
			continue
		}

		outcome, migrationError := service.migrateRepository(executionContext, request, reference)
		if migrationError != nil {
			service.reporter.Failure("%s: %v", reference.String(), migrationError)
			return outcomes, migrationError
		}

		outcomes = append(outcomes, outcome)
	}

	service.reporter.Success(runCompletedMessageConstant)
	return outcomes, nil
}

// migrateRepository runs the migration steps for a single repository. Only the
// initial branch resolution is allowed to fail without aborting the run: a
// repository without the old branch has nothing to migrate and is skipped.
// Every later failure leaves the repository in a partially migrated state and
// must surface to the caller.
func (service *Service) migrateRepository(executionContext context.Context, request MigrationRequest, reference RepositoryRef) (MigrationOutcome, error) {
	oldBranchSHA, resolutionError := service.remoteOperations.GetBranchHeadSHA(executionContext, reference.Owner, reference.Name, string(request.OldBranch))
	if resolutionError != nil {
		service.reporter.Warning(branchResolutionSkipTemplateConstant, reference.String(), string(request.OldBranch), resolutionError)
		service.logger.Warn(
			logMessageRepositorySkippedConstant,
			zap.String(logFieldRepositoryConstant, reference.String()),
			zap.String(logFieldOldBranchConstant, string(request.OldBranch)),
			zap.String(logFieldSkipReasonConstant, resolutionError.Error()),
		)
		return MigrationOutcome{Repository: reference, Kind: OutcomeSkipped, Reason: resolutionError.Error()}, nil
	}

	service.announceStep(request, dryRunCreateBranchTemplateConstant, applyCreateBranchTemplateConstant,
		string(request.NewBranch), string(request.OldBranch), oldBranchSHA)
	if request.Mode.Mutates() {
		if creationError := service.remoteOperations.CreateBranch(executionContext, reference.Owner, reference.Name, string(request.NewBranch), oldBranchSHA); creationError != nil {
			return MigrationOutcome{}, fmt.Errorf(branchCreationErrorTemplateConstant, string(request.NewBranch), reference.String(), creationError)
		}
	}

	retargetedPullRequests, retargetError := service.retargetPullRequests(executionContext, request, reference)
	if retargetError != nil {
		return MigrationOutcome{}, retargetError
	}

	service.announceStep(request, dryRunSetDefaultBranchTemplateConstant, applySetDefaultBranchTemplateConstant,
		string(request.NewBranch))
	if request.Mode.Mutates() {
		if updateError := service.remoteOperations.SetDefaultBranch(executionContext, reference.Owner, reference.Name, string(request.NewBranch)); updateError != nil {
			return MigrationOutcome{}, fmt.Errorf(defaultBranchUpdateErrorTemplateConstant, reference.String(), updateError)
		}
	}

	oldBranchDeleted := false
	if !request.KeepOldBranch {
		service.announceStep(request, dryRunDeleteBranchTemplateConstant, applyDeleteBranchTemplateConstant,
			string(request.OldBranch))
		if request.Mode.Mutates() {
			if deletionError := service.remoteOperations.DeleteBranch(executionContext, reference.Owner, reference.Name, string(request.OldBranch)); deletionError != nil {
				return MigrationOutcome{}, fmt.Errorf(branchDeletionErrorTemplateConstant, string(request.OldBranch), reference.String(), deletionError)
			}
			oldBranchDeleted = true
		}
	}

	contentOutcome, contentError := service.contentUpdater.Update(executionContext, contents.UpdateConfig{
		Owner:      reference.Owner,
		Repository: reference.Name,
		OldBranch:  string(request.OldBranch),
		NewBranch:  string(request.NewBranch),
		Verbose:    request.Verbose,
		DryRun:     !request.Mode.Mutates(),
	})
	if contentError != nil {
		return MigrationOutcome{}, fmt.Errorf(contentUpdateErrorTemplateConstant, reference.String(), contentError)
	}
	if contentOutcome.RemainingReferences {
		service.reporter.Warning(remainingReferencesWarningTemplateConstant, string(request.OldBranch), reference.String())
	}

	if request.Verbose {
		service.reporter.Info(repositoryMigratedTemplateConstant, reference.String())
	}
	service.logger.Info(
		logMessageRepositoryMigratedConstant,
		zap.String(logFieldRepositoryConstant, reference.String()),
		zap.String(logFieldOldBranchConstant, string(request.OldBranch)),
		zap.String(logFieldNewBranchConstant, string(request.NewBranch)),
		zap.Ints(logFieldRetargetedPullRequestsConstant, retargetedPullRequests),
		zap.Strings(logFieldUpdatedFilesConstant, contentOutcome.UpdatedFiles),
		zap.Bool(logFieldOldBranchDeletedConstant, oldBranchDeleted),
	)

	outcome := MigrationOutcome{
		Repository:             reference,
		Kind:                   OutcomeCompleted,
		RetargetedPullRequests: retargetedPullRequests,
		UpdatedFiles:           contentOutcome.UpdatedFiles,
		OldBranchDeleted:       oldBranchDeleted,
	}

	return outcome, nil
}

// retargetPullRequests lists every open pull request and moves the ones based
// on the old branch onto the new one, in listing order. The listing runs even
// under dry-run so the preview names the affected pull requests.
func (service *Service) retargetPullRequests(executionContext context.Context, request MigrationRequest, reference RepositoryRef) ([]int, error) {
	openPullRequests, listError := service.remoteOperations.ListOpenPullRequests(executionContext, reference.Owner, reference.Name)
	if listError != nil {
		return nil, fmt.Errorf(pullRequestListErrorTemplateConstant, reference.String(), listError)
	}

	retargeted := make([]int, 0, retargetedPullRequestInitialCapacityConstant)
	for _, openPullRequest := range openPullRequests {
		if openPullRequest.BaseBranch != string(request.OldBranch) {
			continue
		}

		service.announceStep(request, dryRunRetargetPullRequestTemplateConstant, applyRetargetPullRequestTemplateConstant,
			openPullRequest.Number, openPullRequest.Title, string(request.NewBranch))
		if request.Mode.Mutates() {
			if retargetError := service.remoteOperations.UpdatePullRequestBase(executionContext, reference.Owner, reference.Name, openPullRequest.Number, string(request.NewBranch)); retargetError != nil {
				return nil, fmt.Errorf(pullRequestRetargetErrorTemplateConstant, openPullRequest.Number, reference.String(), retargetError)
			}
		}
		retargeted = append(retargeted, openPullRequest.Number)
	}

	return retargeted, nil
}

func (service *Service) announceStep(request MigrationRequest, dryRunTemplate string, applyTemplate string, arguments ...any) {
	switch {
	case !request.Mode.Mutates():
		service.reporter.Info(dryRunTemplate, arguments...)
	case request.Verbose:
		service.reporter.Info(applyTemplate, arguments...)
	}
}

func (service *Service) validateRequest(request MigrationRequest) error {
	if selectorError := request.Selector.Validate(); selectorError != nil {
		return selectorError
	}
	if len(strings.TrimSpace(string(request.OldBranch))) == 0 {
		return InvalidInputError{FieldName: oldBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(string(request.NewBranch))) == 0 {
		return InvalidInputError{FieldName: newBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if request.OldBranch == request.NewBranch {
		return InvalidInputError{FieldName: newBranchFieldNameConstant, Message: identicalBranchesMessageConstant}
	}
	if request.Mode != ModeApply && request.Mode != ModeDryRun {
		return InvalidInputError{FieldName: executionModeFieldNameConstant, Message: unsupportedModeMessageConstant}
	}
	return nil
}
