// Package contents rewrites in-repository references to a renamed branch,
// committing each changed file through the code-hosting API.
package contents

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mathiasbynens/github-default-branch/internal/githubapi"
	"github.com/mathiasbynens/github-default-branch/internal/ui"
)

const (
	ownerFieldNameConstant                = "owner"
	repositoryFieldNameConstant           = "repository"
	oldBranchFieldNameConstant            = "old_branch"
	newBranchFieldNameConstant            = "new_branch"
	requiredValueMessageConstant          = "value required"
	fileClientMissingMessageConstant      = "file client not configured"
	treeListErrorTemplateConstant         = "unable to list branch tree: %w"
	fileReadErrorTemplateConstant         = "unable to read %s: %w"
	fileUpdateErrorTemplateConstant       = "unable to update %s: %w"
	commitMessageTemplateConstant         = "Update branch references from %s to %s"
	wouldUpdateMessageTemplateConstant    = "Would update %s"
	updatingMessageTemplateConstant       = "Updating %s"
	rewriteCompletedMessageConstant       = "Content rewrite completed"
	updatedFilesFieldNameConstant         = "updated_files"
	inlineBranchesPatternTemplateConstant = `(?m)(\s*branches\s*:\s*\[\s*)(["']?)(%s)(["']?)(\s*\])`
	listBranchesPatternTemplateConstant   = `(?m)^([ \t]*-[ \t]*)(["']?)(%s)(["']?)[ \t]*$`
	branchURLSegmentPatternTemplate       = `(/(?:tree|blob|raw|commits)/)%s\b`
	branchQueryPatternTemplateConstant    = `((?:\?|&)branch=)%s\b`
	wordBoundaryPatternTemplateConstant   = `\b%s\b`
	yamlExtensionConstant                 = ".yaml"
	ymlExtensionConstant                  = ".yml"
	markdownExtensionConstant             = ".md"
	markdownLongExtensionConstant         = ".markdown"
)

// InvalidInputError describes content rewrite validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

var errFileClientMissing = errors.New(fileClientMissingMessageConstant)

// FileClient exposes the repository file operations consumed by the rewriter.
type FileClient interface {
	GetBranchTree(executionContext context.Context, owner string, repository string, branch string) ([]githubapi.TreeEntry, error)
	GetFileContent(executionContext context.Context, owner string, repository string, path string, reference string) (githubapi.FileContent, error)
	UpdateFile(executionContext context.Context, owner string, repository string, path string, branch string, message string, content []byte, blobSHA string) error
}

// UpdateConfig describes one content rewrite request.
type UpdateConfig struct {
	Owner      string
	Repository string
	OldBranch  string
	NewBranch  string
	Verbose    bool
	DryRun     bool
}

// UpdateOutcome captures the observable rewrite results.
type UpdateOutcome struct {
	UpdatedFiles        []string
	RemainingReferences bool
}

// Rewriter locates and rewrites content referencing the old branch name.
type Rewriter struct {
	logger     *zap.Logger
	fileClient FileClient
	reporter   ui.Reporter
}

// NewRewriter constructs a Rewriter around the provided file client.
func NewRewriter(logger *zap.Logger, fileClient FileClient, reporter ui.Reporter) (*Rewriter, error) {
	if fileClient == nil {
		return nil, errFileClientMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = ui.NewWriterReporter(nil)
	}
	return &Rewriter{logger: logger, fileClient: fileClient, reporter: reporter}, nil
}

// Update rewrites branch references across the new branch's Markdown and YAML files.
func (rewriter *Rewriter) Update(executionContext context.Context, config UpdateConfig) (UpdateOutcome, error) {
	if validationError := validateUpdateConfig(config); validationError != nil {
		return UpdateOutcome{}, validationError
	}

	treeEntries, treeError := rewriter.fileClient.GetBranchTree(executionContext, config.Owner, config.Repository, config.NewBranch)
	if treeError != nil {
		return UpdateOutcome{}, fmt.Errorf(treeListErrorTemplateConstant, treeError)
	}

	quotedOldBranch := regexp.QuoteMeta(config.OldBranch)
	replacementPatterns := filePatternSet{
		inlineBranches: regexp.MustCompile(fmt.Sprintf(inlineBranchesPatternTemplateConstant, quotedOldBranch)),
		listBranches:   regexp.MustCompile(fmt.Sprintf(listBranchesPatternTemplateConstant, quotedOldBranch)),
		urlSegment:     regexp.MustCompile(fmt.Sprintf(branchURLSegmentPatternTemplate, quotedOldBranch)),
		branchQuery:    regexp.MustCompile(fmt.Sprintf(branchQueryPatternTemplateConstant, quotedOldBranch)),
		wordBoundary:   regexp.MustCompile(fmt.Sprintf(wordBoundaryPatternTemplateConstant, quotedOldBranch)),
	}

	outcome := UpdateOutcome{UpdatedFiles: []string{}}
	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, config.OldBranch, config.NewBranch)

	for _, treeEntry := range treeEntries {
		if !isCandidateFile(treeEntry.Path) {
			continue
		}

		fileContent, readError := rewriter.fileClient.GetFileContent(executionContext, config.Owner, config.Repository, treeEntry.Path, config.NewBranch)
		if readError != nil {
			return UpdateOutcome{}, fmt.Errorf(fileReadErrorTemplateConstant, treeEntry.Path, readError)
		}

		rewrittenContent := rewriteFileContent(treeEntry.Path, fileContent.Content, replacementPatterns, config.NewBranch)
		if replacementPatterns.wordBoundary.MatchString(rewrittenContent) {
			outcome.RemainingReferences = true
		}
		if rewrittenContent == fileContent.Content {
			continue
		}

		if config.DryRun {
			rewriter.reporter.Info(wouldUpdateMessageTemplateConstant, treeEntry.Path)
			outcome.UpdatedFiles = append(outcome.UpdatedFiles, treeEntry.Path)
			continue
		}

		if config.Verbose {
			rewriter.reporter.Info(updatingMessageTemplateConstant, treeEntry.Path)
		}

		updateError := rewriter.fileClient.UpdateFile(
			executionContext,
			config.Owner,
			config.Repository,
			treeEntry.Path,
			config.NewBranch,
			commitMessage,
			[]byte(rewrittenContent),
			fileContent.SHA,
		)
		if updateError != nil {
			return UpdateOutcome{}, fmt.Errorf(fileUpdateErrorTemplateConstant, treeEntry.Path, updateError)
		}

		outcome.UpdatedFiles = append(outcome.UpdatedFiles, treeEntry.Path)
	}

	rewriter.logger.Debug(rewriteCompletedMessageConstant, zap.Strings(updatedFilesFieldNameConstant, outcome.UpdatedFiles))

	return outcome, nil
}

type filePatternSet struct {
	inlineBranches *regexp.Regexp
	listBranches   *regexp.Regexp
	urlSegment     *regexp.Regexp
	branchQuery    *regexp.Regexp
	wordBoundary   *regexp.Regexp
}

func rewriteFileContent(path string, content string, patterns filePatternSet, newBranch string) string {
	rewritten := content

	if isWorkflowFile(path) {
		inlineReplacement := fmt.Sprintf("${1}${2}%s${4}${5}", newBranch)
		listReplacement := fmt.Sprintf("${1}${2}%s${4}", newBranch)
		rewritten = patterns.inlineBranches.ReplaceAllString(rewritten, inlineReplacement)
		rewritten = patterns.listBranches.ReplaceAllString(rewritten, listReplacement)
	}

	urlReplacement := fmt.Sprintf("${1}%s", newBranch)
	rewritten = patterns.urlSegment.ReplaceAllString(rewritten, urlReplacement)
	rewritten = patterns.branchQuery.ReplaceAllString(rewritten, urlReplacement)

	return rewritten
}

func isCandidateFile(path string) bool {
	return isWorkflowFile(path) || isMarkdownFile(path)
}

func isWorkflowFile(path string) bool {
	lowerPath := strings.ToLower(path)
	return strings.HasSuffix(lowerPath, yamlExtensionConstant) || strings.HasSuffix(lowerPath, ymlExtensionConstant)
}

func isMarkdownFile(path string) bool {
	lowerPath := strings.ToLower(path)
	return strings.HasSuffix(lowerPath, markdownExtensionConstant) || strings.HasSuffix(lowerPath, markdownLongExtensionConstant)
}

func validateUpdateConfig(config UpdateConfig) error {
	if len(strings.TrimSpace(config.Owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(config.Repository)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(config.OldBranch)) == 0 {
		return InvalidInputError{FieldName: oldBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(config.NewBranch)) == 0 {
		return InvalidInputError{FieldName: newBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
