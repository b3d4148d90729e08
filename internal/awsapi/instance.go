// This file discovers the tenant's SSO instance.

package awsapi

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
)

// ErrNoSSOInstance is returned by DiscoverInstance when the account has no
// IAM Identity Center instance. Nothing in the pipeline can proceed without
// one.
var ErrNoSSOInstance = errors.New("no IAM Identity Center instance found")

// Instance identifies the SSO instance the pipeline operates on.
type Instance struct {
	// ARN is the SSO instance ARN, required by every SSO Admin call.
	ARN string

	// IdentityStoreID identifies the directory used for principal lookups.
	IdentityStoreID string
}

// DiscoverInstance calls ListInstances and returns the first instance. The
// pipeline assumes a single SSO instance per tenant; additional instances are
// ignored.
func DiscoverInstance(ctx context.Context, client ListSSOInstancesAPI) (*Instance, error) {
	out, err := client.ListInstances(ctx, &ssoadmin.ListInstancesInput{})
	if err != nil {
		return nil, Classify("list SSO instances", err)
	}
	if len(out.Instances) == 0 {
		return nil, ErrNoSSOInstance
	}
	return &Instance{
		ARN:             aws.ToString(out.Instances[0].InstanceArn),
		IdentityStoreID: aws.ToString(out.Instances[0].IdentityStoreId),
	}, nil
}
