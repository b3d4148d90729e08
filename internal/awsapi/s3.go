// This file defines the narrow interface for the S3 operation used to
// publish the resolved assignments artifact for the downstream applier.

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI defines the subset of the S3 API used for uploading
// assignments.json to the artifact bucket.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var _ PutObjectAPI = (*s3.Client)(nil)
