// This file defines the narrow interface for the IAM operation the validator
// uses to confirm managed policy ARNs resolve.

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// GetPolicyAPI defines the subset of the IAM API used for resolving an AWS
// managed policy ARN. A lookup failure rejects the referencing template.
type GetPolicyAPI interface {
	GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var _ GetPolicyAPI = (*iam.Client)(nil)
