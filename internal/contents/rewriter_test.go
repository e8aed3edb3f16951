package contents_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mathiasbynens/github-default-branch/internal/contents"
	"github.com/mathiasbynens/github-default-branch/internal/githubapi"
	"github.com/mathiasbynens/github-default-branch/internal/ui"
)

const (
	rewriteOwnerConstant      = "acme"
	rewriteRepositoryConstant = "widgets"
	rewriteOldBranchConstant  = "master"
	rewriteNewBranchConstant  = "main"
)

type recordedFileUpdate struct {
	path    string
	branch  string
	message string
	content string
	blobSHA string
}

type stubFileClient struct {
	treeEntries  []githubapi.TreeEntry
	fileContents map[string]githubapi.FileContent
	fileUpdates  []recordedFileUpdate
}

func (client *stubFileClient) GetBranchTree(_ context.Context, _ string, _ string, _ string) ([]githubapi.TreeEntry, error) {
	return client.treeEntries, nil
}

func (client *stubFileClient) GetFileContent(_ context.Context, _ string, _ string, path string, _ string) (githubapi.FileContent, error) {
	return client.fileContents[path], nil
}

func (client *stubFileClient) UpdateFile(_ context.Context, _ string, _ string, path string, branch string, message string, content []byte, blobSHA string) error {
	client.fileUpdates = append(client.fileUpdates, recordedFileUpdate{
		path:    path,
		branch:  branch,
		message: message,
		content: string(content),
		blobSHA: blobSHA,
	})
	return nil
}

func newRewriterForTest(testInstance *testing.T, fileClient contents.FileClient, output *bytes.Buffer) *contents.Rewriter {
	testInstance.Helper()

	rewriter, constructionError := contents.NewRewriter(zap.NewNop(), fileClient, ui.NewWriterReporter(output))
	require.NoError(testInstance, constructionError)
	return rewriter
}

func TestUpdateRewritesWorkflowBranchFilters(testInstance *testing.T) {
	testInstance.Parallel()

	fileClient := &stubFileClient{
		treeEntries: []githubapi.TreeEntry{{Path: ".github/workflows/ci.yml", SHA: "blob-1"}},
		fileContents: map[string]githubapi.FileContent{
			".github/workflows/ci.yml": {
				Content: "on:\n  push:\n    branches: [master]\n  pull_request:\n    branches:\n      - master\n",
				SHA:     "blob-1",
			},
		},
	}

	rewriter := newRewriterForTest(testInstance, fileClient, &bytes.Buffer{})

	outcome, updateError := rewriter.Update(context.Background(), contents.UpdateConfig{
		Owner:      rewriteOwnerConstant,
		Repository: rewriteRepositoryConstant,
		OldBranch:  rewriteOldBranchConstant,
		NewBranch:  rewriteNewBranchConstant,
	})
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, []string{".github/workflows/ci.yml"}, outcome.UpdatedFiles)

	require.Len(testInstance, fileClient.fileUpdates, 1)
	fileUpdate := fileClient.fileUpdates[0]
	require.Equal(testInstance, rewriteNewBranchConstant, fileUpdate.branch)
	require.Equal(testInstance, "Update branch references from master to main", fileUpdate.message)
	require.Equal(testInstance, "on:\n  push:\n    branches: [main]\n  pull_request:\n    branches:\n      - main\n", fileUpdate.content)
	require.Equal(testInstance, "blob-1", fileUpdate.blobSHA)
}

func TestUpdateRewritesMarkdownBranchLinks(testInstance *testing.T) {
	testInstance.Parallel()

	fileClient := &stubFileClient{
		treeEntries: []githubapi.TreeEntry{{Path: "README.md", SHA: "blob-2"}},
		fileContents: map[string]githubapi.FileContent{
			"README.md": {
				Content: "See [docs](https://github.com/acme/widgets/blob/master/docs.md) and " +
					"[history](https://github.com/acme/widgets/commits/master), built from ?branch=master. " +
					"The word mastery stays put.\n",
				SHA: "blob-2",
			},
		},
	}

	rewriter := newRewriterForTest(testInstance, fileClient, &bytes.Buffer{})

	outcome, updateError := rewriter.Update(context.Background(), contents.UpdateConfig{
		Owner:      rewriteOwnerConstant,
		Repository: rewriteRepositoryConstant,
		OldBranch:  rewriteOldBranchConstant,
		NewBranch:  rewriteNewBranchConstant,
	})
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, []string{"README.md"}, outcome.UpdatedFiles)

	require.Len(testInstance, fileClient.fileUpdates, 1)
	rewrittenContent := fileClient.fileUpdates[0].content
	require.Contains(testInstance, rewrittenContent, "/blob/main/docs.md")
	require.Contains(testInstance, rewrittenContent, "/commits/main")
	require.Contains(testInstance, rewrittenContent, "?branch=main")
	require.Contains(testInstance, rewrittenContent, "mastery")
}

func TestUpdateSkipsFilesWithoutReferences(testInstance *testing.T) {
	testInstance.Parallel()

	fileClient := &stubFileClient{
		treeEntries: []githubapi.TreeEntry{
			{Path: "README.md", SHA: "blob-3"},
			{Path: "main.go", SHA: "blob-4"},
		},
		fileContents: map[string]githubapi.FileContent{
			"README.md": {Content: "Nothing branch related here.\n", SHA: "blob-3"},
		},
	}

	rewriter := newRewriterForTest(testInstance, fileClient, &bytes.Buffer{})

	outcome, updateError := rewriter.Update(context.Background(), contents.UpdateConfig{
		Owner:      rewriteOwnerConstant,
		Repository: rewriteRepositoryConstant,
		OldBranch:  rewriteOldBranchConstant,
		NewBranch:  rewriteNewBranchConstant,
	})
	require.NoError(testInstance, updateError)
	require.Empty(testInstance, outcome.UpdatedFiles)
	require.Empty(testInstance, fileClient.fileUpdates)
}

func TestUpdateDryRunReportsWithoutCommitting(testInstance *testing.T) {
	testInstance.Parallel()

	fileClient := &stubFileClient{
		treeEntries: []githubapi.TreeEntry{{Path: ".github/workflows/ci.yml", SHA: "blob-5"}},
		fileContents: map[string]githubapi.FileContent{
			".github/workflows/ci.yml": {Content: "branches: [master]\n", SHA: "blob-5"},
		},
	}

	outputBuffer := &bytes.Buffer{}
	rewriter := newRewriterForTest(testInstance, fileClient, outputBuffer)

	outcome, updateError := rewriter.Update(context.Background(), contents.UpdateConfig{
		Owner:      rewriteOwnerConstant,
		Repository: rewriteRepositoryConstant,
		OldBranch:  rewriteOldBranchConstant,
		NewBranch:  rewriteNewBranchConstant,
		DryRun:     true,
	})
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, []string{".github/workflows/ci.yml"}, outcome.UpdatedFiles)
	require.Empty(testInstance, fileClient.fileUpdates)
	require.Contains(testInstance, outputBuffer.String(), "Would update .github/workflows/ci.yml")
}

func TestUpdateFlagsRemainingReferences(testInstance *testing.T) {
	testInstance.Parallel()

	fileClient := &stubFileClient{
		treeEntries: []githubapi.TreeEntry{{Path: "README.md", SHA: "blob-6"}},
		fileContents: map[string]githubapi.FileContent{
			"README.md": {Content: "The master copy lives elsewhere.\n", SHA: "blob-6"},
		},
	}

	rewriter := newRewriterForTest(testInstance, fileClient, &bytes.Buffer{})

	outcome, updateError := rewriter.Update(context.Background(), contents.UpdateConfig{
		Owner:      rewriteOwnerConstant,
		Repository: rewriteRepositoryConstant,
		OldBranch:  rewriteOldBranchConstant,
		NewBranch:  rewriteNewBranchConstant,
	})
	require.NoError(testInstance, updateError)
	require.Empty(testInstance, outcome.UpdatedFiles)
	require.True(testInstance, outcome.RemainingReferences)
}
