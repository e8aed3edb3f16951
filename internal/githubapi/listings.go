package githubapi

import (
	"context"
	"strings"

	"github.com/google/go-github/v68/github"
)

const (
	organizationFieldNameConstant = "organization"
	userFieldNameConstant         = "user"
)

// ListOrganizationRepositories drains every page of repositories owned by the organization.
func (client *Client) ListOrganizationRepositories(executionContext context.Context, organization string) ([]string, error) {
	if len(strings.TrimSpace(organization)) == 0 {
		return nil, InvalidInputError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listOptions := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: pageSizeConstant},
	}

	repositoryNames := make([]string, 0, pageSizeConstant)
	for {
		pageRepositories, response, listError := client.restClient.Repositories.ListByOrg(executionContext, organization, listOptions)
		if listError != nil {
			return nil, OperationError{Operation: ListRepositoriesOperationName, Cause: listError}
		}

		for _, pageRepository := range pageRepositories {
			repositoryNames = append(repositoryNames, pageRepository.GetFullName())
		}

		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return repositoryNames, nil
}

// ListUserRepositories drains every page of repositories owned by the user.
func (client *Client) ListUserRepositories(executionContext context.Context, user string) ([]string, error) {
	if len(strings.TrimSpace(user)) == 0 {
		return nil, InvalidInputError{FieldName: userFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listOptions := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: pageSizeConstant},
	}

	repositoryNames := make([]string, 0, pageSizeConstant)
	for {
		pageRepositories, response, listError := client.restClient.Repositories.ListByUser(executionContext, user, listOptions)
		if listError != nil {
			return nil, OperationError{Operation: ListRepositoriesOperationName, Cause: listError}
		}

		for _, pageRepository := range pageRepositories {
			repositoryNames = append(repositoryNames, pageRepository.GetFullName())
		}

		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return repositoryNames, nil
}
