// Package enumeration resolves migration selectors into ordered owner/repo
// identifiers using the GitHub repository listing operations.
package enumeration

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	selectorCardinalityMessageConstant       = "exactly one of organization, user, or repository must be provided"
	repositoryIdentifierFormatConstant       = "owner/repo"
	malformedRepositoryIdentifierTemplate    = "repository identifier %q must match %s"
	repositoryListerMissingMessageConstant   = "repository lister not configured"
	organizationListErrorTemplateConstant    = "unable to list organization repositories: %w"
	userListErrorTemplateConstant            = "unable to list user repositories: %w"
	repositoryIdentifierSeparatorConstant    = "/"
	repositoryIdentifierSegmentCountConstant = 2
)

// ErrSelectorCardinality indicates the selector does not name exactly one target set.
var ErrSelectorCardinality = errors.New(selectorCardinalityMessageConstant)

var errRepositoryListerMissing = errors.New(repositoryListerMissingMessageConstant)

// Selector names the migration target set: one organization, one user, or one repository.
type Selector struct {
	Organization string
	User         string
	Repository   string
}

// Validate confirms exactly one selector field is populated.
func (selector Selector) Validate() error {
	populatedFields := 0
	if len(strings.TrimSpace(selector.Organization)) > 0 {
		populatedFields++
	}
	if len(strings.TrimSpace(selector.User)) > 0 {
		populatedFields++
	}
	if len(strings.TrimSpace(selector.Repository)) > 0 {
		populatedFields++
	}
	if populatedFields != 1 {
		return ErrSelectorCardinality
	}
	return nil
}

// RepositoryListing exposes the repository listing operations consumed by the enumerator.
type RepositoryListing interface {
	ListOrganizationRepositories(executionContext context.Context, organization string) ([]string, error)
	ListUserRepositories(executionContext context.Context, user string) ([]string, error)
}

// Enumerator produces the ordered repository work list for a selector.
type Enumerator struct {
	repositoryLister RepositoryListing
}

// NewEnumerator constructs an Enumerator backed by the provided listing operations.
func NewEnumerator(repositoryLister RepositoryListing) (*Enumerator, error) {
	if repositoryLister == nil {
		return nil, errRepositoryListerMissing
	}
	return &Enumerator{repositoryLister: repositoryLister}, nil
}

// ListRepositories resolves the selector into ordered owner/repo identifiers.
func (enumerator *Enumerator) ListRepositories(executionContext context.Context, selector Selector) ([]string, error) {
	if validationError := selector.Validate(); validationError != nil {
		return nil, validationError
	}

	switch {
	case len(strings.TrimSpace(selector.Organization)) > 0:
		repositoryNames, listError := enumerator.repositoryLister.ListOrganizationRepositories(executionContext, strings.TrimSpace(selector.Organization))
		if listError != nil {
			return nil, fmt.Errorf(organizationListErrorTemplateConstant, listError)
		}
		return repositoryNames, nil
	case len(strings.TrimSpace(selector.User)) > 0:
		repositoryNames, listError := enumerator.repositoryLister.ListUserRepositories(executionContext, strings.TrimSpace(selector.User))
		if listError != nil {
			return nil, fmt.Errorf(userListErrorTemplateConstant, listError)
		}
		return repositoryNames, nil
	default:
		repositoryIdentifier := strings.TrimSpace(selector.Repository)
		identifierSegments := strings.SplitN(repositoryIdentifier, repositoryIdentifierSeparatorConstant, repositoryIdentifierSegmentCountConstant)
		if len(identifierSegments) != repositoryIdentifierSegmentCountConstant || len(identifierSegments[0]) == 0 || len(identifierSegments[1]) == 0 {
			return nil, fmt.Errorf(malformedRepositoryIdentifierTemplate, repositoryIdentifier, repositoryIdentifierFormatConstant)
		}
		return []string{repositoryIdentifier}, nil
	}
}
