// Package identity resolves the pipeline's AWS identities: the ambient
// caller (for run attribution in logs) and the organization management role
// assumed for target expansion.
package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Caller holds the resolved ambient identity of the running pipeline.
type Caller struct {
	// Account is the 12-digit account ID the pipeline runs in.
	Account string

	// ARN is the full caller ARN.
	ARN string
}

// STSClient defines the subset of the STS API used for identity resolution.
// This interface enables mock injection for testing.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Resolver resolves the current AWS caller identity.
type Resolver struct {
	client STSClient
}

// NewResolver creates a Resolver with the given STS client.
func NewResolver(client STSClient) *Resolver {
	return &Resolver{client: client}
}

// Resolve calls STS GetCallerIdentity and returns the caller account and ARN.
func (r *Resolver) Resolve(ctx context.Context) (*Caller, error) {
	out, err := r.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("sts get-caller-identity: %w", err)
	}
	if out.Arn == nil || out.Account == nil {
		return nil, fmt.Errorf("sts get-caller-identity returned incomplete identity")
	}
	return &Caller{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}, nil
}

// Compile-time check: *sts.Client satisfies STSClient.
var _ STSClient = (*sts.Client)(nil)
