package githubapi

import (
	"errors"
	"fmt"
)

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	tokenMissingMessageConstant             = "github token not configured"
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// Supported operation enumerations.
const (
	GetBranchHeadSHAOperationName      = OperationName("GetBranchHeadSHA")
	CreateBranchOperationName          = OperationName("CreateBranch")
	DeleteBranchOperationName          = OperationName("DeleteBranch")
	ListOpenPullRequestsOperationName  = OperationName("ListOpenPullRequests")
	UpdatePullRequestBaseOperationName = OperationName("UpdatePullRequestBase")
	SetDefaultBranchOperationName      = OperationName("SetDefaultBranch")
	GetRateLimitOperationName          = OperationName("GetRateLimit")
	ListRepositoriesOperationName      = OperationName("ListRepositories")
	GetBranchTreeOperationName         = OperationName("GetBranchTree")
	GetFileContentOperationName        = OperationName("GetFileContent")
	UpdateFileOperationName            = OperationName("UpdateFile")
)

// ErrTokenMissing indicates the client was constructed without a credential.
var ErrTokenMissing = errors.New(tokenMissingMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}
