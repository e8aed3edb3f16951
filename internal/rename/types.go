package rename

import (
	"fmt"
	"strings"
)

const (
	repositoryIdentifierSeparatorConstant        = "/"
	repositoryIdentifierSegmentCountConstant     = 2
	malformedRepositoryIdentifierMessageConstant = "repository identifier %q must use the owner/repo format"
	repositoryIdentifierTemplateConstant         = "%s/%s"
)

// BranchName identifies a Git branch.
type BranchName string

// Well-known branch names used as defaults for the rename workflow.
const (
	BranchMaster BranchName = "master"
	BranchMain   BranchName = "main"
)

// ExecutionMode selects between applying mutations and previewing them.
type ExecutionMode string

// Supported execution modes.
const (
	ModeApply  ExecutionMode = "apply"
	ModeDryRun ExecutionMode = "dry-run"
)

// Mutates reports whether the mode performs remote mutations.
func (mode ExecutionMode) Mutates() bool {
	return mode == ModeApply
}

// RepositoryRef identifies a repository by owner and name.
type RepositoryRef struct {
	Owner string
	Name  string
}

// ParseRepositoryRef splits an owner/repo identifier into its components.
func ParseRepositoryRef(identifier string) (RepositoryRef, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	segments := strings.Split(trimmedIdentifier, repositoryIdentifierSeparatorConstant)
	if len(segments) != repositoryIdentifierSegmentCountConstant {
		return RepositoryRef{}, fmt.Errorf(malformedRepositoryIdentifierMessageConstant, identifier)
	}

	owner := strings.TrimSpace(segments[0])
	name := strings.TrimSpace(segments[1])
	if len(owner) == 0 || len(name) == 0 {
		return RepositoryRef{}, fmt.Errorf(malformedRepositoryIdentifierMessageConstant, identifier)
	}

	return RepositoryRef{Owner: owner, Name: name}, nil
}

// String renders the owner/repo identifier.
func (reference RepositoryRef) String() string {
	return fmt.Sprintf(repositoryIdentifierTemplateConstant, reference.Owner, reference.Name)
}

// OutcomeKind classifies the result of migrating a single repository.
type OutcomeKind string

// Supported migration outcome kinds.
const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
)

// MigrationOutcome captures the observable result of a single repository migration.
type MigrationOutcome struct {
	Repository             RepositoryRef
	Kind                   OutcomeKind
	RetargetedPullRequests []int
	UpdatedFiles           []string
	OldBranchDeleted       bool
	Reason                 string
}
