// This file defines the narrow interface for the Access Analyzer operation
// the validator uses to lint inline policy documents.

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/accessanalyzer"
)

// ValidatePolicyAPI defines the subset of the Access Analyzer API used for
// validating a custom policy document as an identity policy. ERROR findings
// reject the template; WARNING findings are logged only.
type ValidatePolicyAPI interface {
	ValidatePolicy(ctx context.Context, params *accessanalyzer.ValidatePolicyInput, optFns ...func(*accessanalyzer.Options)) (*accessanalyzer.ValidatePolicyOutput, error)
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var _ ValidatePolicyAPI = (*accessanalyzer.Client)(nil)
