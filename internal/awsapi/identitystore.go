// This file defines narrow interfaces for Identity Store operations needed
// by the principal resolver.

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/identitystore"
)

// ListUsersAPI defines the subset of the Identity Store API used for looking
// up a user ID by UserName.
type ListUsersAPI interface {
	ListUsers(ctx context.Context, params *identitystore.ListUsersInput, optFns ...func(*identitystore.Options)) (*identitystore.ListUsersOutput, error)
}

// ListGroupsAPI defines the subset of the Identity Store API used for looking
// up a group ID by DisplayName.
type ListGroupsAPI interface {
	ListGroups(ctx context.Context, params *identitystore.ListGroupsInput, optFns ...func(*identitystore.Options)) (*identitystore.ListGroupsOutput, error)
}

// IdentityStoreAPI groups the Identity Store operations the principal
// resolver needs.
type IdentityStoreAPI interface {
	ListUsersAPI
	ListGroupsAPI
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var (
	_ ListUsersAPI     = (*identitystore.Client)(nil)
	_ ListGroupsAPI    = (*identitystore.Client)(nil)
	_ IdentityStoreAPI = (*identitystore.Client)(nil)
)
