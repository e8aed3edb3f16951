package githubapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	ownerFieldNameConstant             = "owner"
	repositoryFieldNameConstant        = "repository"
	branchFieldNameConstant            = "branch"
	commitSHAFieldNameConstant         = "commit_sha"
	pullRequestNumberFieldNameConstant = "pull_request_number"
	pathFieldNameConstant              = "path"
	requiredValueMessageConstant       = "value required"
	positiveValueMessageConstant       = "positive value required"
	branchReferencePrefixConstant      = "heads/"
	fullBranchReferencePrefixConstant  = "refs/heads/"
	pullRequestStateOpenConstant       = "open"
	trailingSlashConstant              = "/"
	pageSizeConstant                   = 100
)

// PullRequest carries the open pull request fields relevant to retargeting.
type PullRequest struct {
	Number     int
	Title      string
	BaseBranch string
}

// RateLimitStatus reports the caller's remaining API quota.
type RateLimitStatus struct {
	Limit     int
	Remaining int
}

// TreeEntry identifies one blob inside a branch tree.
type TreeEntry struct {
	Path string
	SHA  string
}

// FileContent carries a decoded file body together with its blob SHA.
type FileContent struct {
	Content string
	SHA     string
}

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

// WithBaseURL points the client at a non-default API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		client.baseURL = baseURL
	}
}

// WithHTTPClient substitutes the transport used for API calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// Client coordinates GitHub REST API calls on behalf of the migration tooling.
type Client struct {
	restClient *github.Client
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client authenticated with the provided token.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenMissing
	}

	client := &Client{}
	for _, option := range options {
		option(client)
	}

	if client.httpClient == nil {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
		client.httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}

	client.restClient = github.NewClient(client.httpClient)

	if len(client.baseURL) > 0 {
		normalizedBaseURL := client.baseURL
		if !strings.HasSuffix(normalizedBaseURL, trailingSlashConstant) {
			normalizedBaseURL += trailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(normalizedBaseURL)
		if parseError != nil {
			return nil, parseError
		}
		client.restClient.BaseURL = parsedBaseURL
	}

	return client, nil
}

// GetBranchHeadSHA resolves the head commit SHA of the named branch.
func (client *Client) GetBranchHeadSHA(executionContext context.Context, owner string, repository string, branch string) (string, error) {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return "", validationError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return "", InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	reference, _, referenceError := client.restClient.Git.GetRef(executionContext, owner, repository, branchReferencePrefixConstant+branch)
	if referenceError != nil {
		return "", OperationError{Operation: GetBranchHeadSHAOperationName, Cause: referenceError}
	}

	return reference.GetObject().GetSHA(), nil
}

// CreateBranch creates a branch pointing at the provided commit SHA.
func (client *Client) CreateBranch(executionContext context.Context, owner string, repository string, branch string, commitSHA string) error {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(commitSHA)) == 0 {
		return InvalidInputError{FieldName: commitSHAFieldNameConstant, Message: requiredValueMessageConstant}
	}

	reference := &github.Reference{
		Ref:    github.String(fullBranchReferencePrefixConstant + branch),
		Object: &github.GitObject{SHA: github.String(commitSHA)},
	}

	_, _, creationError := client.restClient.Git.CreateRef(executionContext, owner, repository, reference)
	if creationError != nil {
		return OperationError{Operation: CreateBranchOperationName, Cause: creationError}
	}

	return nil
}

// DeleteBranch removes the named branch reference.
func (client *Client) DeleteBranch(executionContext context.Context, owner string, repository string, branch string) error {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, deletionError := client.restClient.Git.DeleteRef(executionContext, owner, repository, branchReferencePrefixConstant+branch)
	if deletionError != nil {
		return OperationError{Operation: DeleteBranchOperationName, Cause: deletionError}
	}

	return nil
}

// ListOpenPullRequests drains every page of open pull requests for the repository.
func (client *Client) ListOpenPullRequests(executionContext context.Context, owner string, repository string) ([]PullRequest, error) {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.PullRequestListOptions{
		State:       pullRequestStateOpenConstant,
		ListOptions: github.ListOptions{PerPage: pageSizeConstant},
	}

	pullRequests := make([]PullRequest, 0, pageSizeConstant)
	for {
		pagePullRequests, response, listError := client.restClient.PullRequests.List(executionContext, owner, repository, listOptions)
		if listError != nil {
			return nil, OperationError{Operation: ListOpenPullRequestsOperationName, Cause: listError}
		}

		for _, pagePullRequest := range pagePullRequests {
			pullRequests = append(pullRequests, PullRequest{
				Number:     pagePullRequest.GetNumber(),
				Title:      pagePullRequest.GetTitle(),
				BaseBranch: pagePullRequest.GetBase().GetRef(),
			})
		}

		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return pullRequests, nil
}

// UpdatePullRequestBase retargets a pull request at the provided base branch.
func (client *Client) UpdatePullRequestBase(executionContext context.Context, owner string, repository string, pullRequestNumber int, newBaseBranch string) error {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return validationError
	}
	if pullRequestNumber <= 0 {
		return InvalidInputError{FieldName: pullRequestNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if len(strings.TrimSpace(newBaseBranch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	update := &github.PullRequest{
		Base: &github.PullRequestBranch{Ref: github.String(newBaseBranch)},
	}

	_, _, updateError := client.restClient.PullRequests.Edit(executionContext, owner, repository, pullRequestNumber, update)
	if updateError != nil {
		return OperationError{Operation: UpdatePullRequestBaseOperationName, Cause: updateError}
	}

	return nil
}

// SetDefaultBranch flips the repository default branch pointer.
func (client *Client) SetDefaultBranch(executionContext context.Context, owner string, repository string, branch string) error {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repositoryUpdate := &github.Repository{DefaultBranch: github.String(branch)}

	_, _, updateError := client.restClient.Repositories.Edit(executionContext, owner, repository, repositoryUpdate)
	if updateError != nil {
		return OperationError{Operation: SetDefaultBranchOperationName, Cause: updateError}
	}

	return nil
}

// GetRateLimit reports the core API quota for the authenticated caller.
func (client *Client) GetRateLimit(executionContext context.Context) (RateLimitStatus, error) {
	rateLimits, _, rateLimitError := client.restClient.RateLimit.Get(executionContext)
	if rateLimitError != nil {
		return RateLimitStatus{}, OperationError{Operation: GetRateLimitOperationName, Cause: rateLimitError}
	}

	coreRateLimit := rateLimits.GetCore()
	return RateLimitStatus{Limit: coreRateLimit.Limit, Remaining: coreRateLimit.Remaining}, nil
}

// GetBranchTree lists every blob reachable from the branch head.
func (client *Client) GetBranchTree(executionContext context.Context, owner string, repository string, branch string) ([]TreeEntry, error) {
	headSHA, headError := client.GetBranchHeadSHA(executionContext, owner, repository, branch)
	if headError != nil {
		return nil, headError
	}

	tree, _, treeError := client.restClient.Git.GetTree(executionContext, owner, repository, headSHA, true)
	if treeError != nil {
		return nil, OperationError{Operation: GetBranchTreeOperationName, Cause: treeError}
	}

	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, treeEntry := range tree.Entries {
		if treeEntry.GetType() != blobTreeEntryTypeConstant {
			continue
		}
		entries = append(entries, TreeEntry{Path: treeEntry.GetPath(), SHA: treeEntry.GetSHA()})
	}

	return entries, nil
}

// GetFileContent fetches and decodes one file at the provided reference.
func (client *Client) GetFileContent(executionContext context.Context, owner string, repository string, path string, reference string) (FileContent, error) {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return FileContent{}, validationError
	}
	if len(strings.TrimSpace(path)) == 0 {
		return FileContent{}, InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	contentOptions := &github.RepositoryContentGetOptions{Ref: reference}
	fileContent, _, _, contentError := client.restClient.Repositories.GetContents(executionContext, owner, repository, path, contentOptions)
	if contentError != nil {
		return FileContent{}, OperationError{Operation: GetFileContentOperationName, Cause: contentError}
	}

	decodedContent, decodeError := fileContent.GetContent()
	if decodeError != nil {
		return FileContent{}, OperationError{Operation: GetFileContentOperationName, Cause: decodeError}
	}

	return FileContent{Content: decodedContent, SHA: fileContent.GetSHA()}, nil
}

// UpdateFile commits a replacement file body on the provided branch.
func (client *Client) UpdateFile(executionContext context.Context, owner string, repository string, path string, branch string, message string, content []byte, blobSHA string) error {
	if validationError := validateRepositoryInputs(owner, repository); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(path)) == 0 {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	fileOptions := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     github.String(blobSHA),
		Branch:  github.String(branch),
	}

	_, _, updateError := client.restClient.Repositories.UpdateFile(executionContext, owner, repository, path, fileOptions)
	if updateError != nil {
		return OperationError{Operation: UpdateFileOperationName, Cause: updateError}
	}

	return nil
}

const blobTreeEntryTypeConstant = "blob"

func validateRepositoryInputs(owner string, repository string) error {
	if len(strings.TrimSpace(owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
