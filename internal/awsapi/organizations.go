// This file defines narrow interfaces for Organizations operations needed by
// the target resolver. All organization calls run with the credentials of the
// assumed management-account role.

package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/organizations"
)

// ListAccountsAPI defines the subset of the Organizations API used for
// listing every account in the organization (Root / r-* targets).
type ListAccountsAPI interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

// ListAccountsForParentAPI defines the subset of the Organizations API used
// for listing the direct-child accounts of an organizational unit.
type ListAccountsForParentAPI interface {
	ListAccountsForParent(ctx context.Context, params *organizations.ListAccountsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
}

// ListOrganizationalUnitsForParentAPI defines the subset of the Organizations
// API used for listing the child OUs of an OU during recursive descent.
type ListOrganizationalUnitsForParentAPI interface {
	ListOrganizationalUnitsForParent(ctx context.Context, params *organizations.ListOrganizationalUnitsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error)
}

// OrganizationsAPI groups the Organizations operations the target resolver
// needs.
type OrganizationsAPI interface {
	ListAccountsAPI
	ListAccountsForParentAPI
	ListOrganizationalUnitsForParentAPI
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var (
	_ ListAccountsAPI                     = (*organizations.Client)(nil)
	_ ListAccountsForParentAPI            = (*organizations.Client)(nil)
	_ ListOrganizationalUnitsForParentAPI = (*organizations.Client)(nil)
	_ OrganizationsAPI                    = (*organizations.Client)(nil)
)
