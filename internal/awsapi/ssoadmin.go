// Package awsapi provides thin wrappers around AWS SDK clients used by the
// pipeline. Each file defines narrow interfaces for one service; every
// interface wraps exactly one AWS SDK method, enabling mock injection in
// tests. Composite interfaces group the methods a single consumer needs.
package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
)

// ---------------------------------------------------------------------------
// SSO Admin interfaces
// ---------------------------------------------------------------------------

// ListSSOInstancesAPI defines the subset of the SSO Admin API used for
// discovering the tenant's SSO instance ARN and identity store ID. The
// pipeline assumes a single instance and operates on Instances[0].
type ListSSOInstancesAPI interface {
	ListInstances(ctx context.Context, params *ssoadmin.ListInstancesInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListInstancesOutput, error)
}

// ListPermissionSetsAPI defines the subset of the SSO Admin API used for
// enumerating all permission sets provisioned in the SSO instance.
type ListPermissionSetsAPI interface {
	ListPermissionSets(ctx context.Context, params *ssoadmin.ListPermissionSetsInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListPermissionSetsOutput, error)
}

// DescribePermissionSetAPI defines the subset of the SSO Admin API used for
// fetching the details (name, description, session duration) of a specific
// permission set.
type DescribePermissionSetAPI interface {
	DescribePermissionSet(ctx context.Context, params *ssoadmin.DescribePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DescribePermissionSetOutput, error)
}

// ListTagsForResourceAPI defines the subset of the SSO Admin API used for
// reading the tag set of a permission set. The live-state indexer uses it to
// decide pipeline ownership.
type ListTagsForResourceAPI interface {
	ListTagsForResource(ctx context.Context, params *ssoadmin.ListTagsForResourceInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListTagsForResourceOutput, error)
}

// TagResourceAPI defines the subset of the SSO Admin API used for tagging a
// permission set. Used by the adopt command to place a live permission set
// under pipeline control.
type TagResourceAPI interface {
	TagResource(ctx context.Context, params *ssoadmin.TagResourceInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.TagResourceOutput, error)
}

// CreatePermissionSetAPI defines the subset of the SSO Admin API used for
// creating a permission set with the pipeline ownership tag.
type CreatePermissionSetAPI interface {
	CreatePermissionSet(ctx context.Context, params *ssoadmin.CreatePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.CreatePermissionSetOutput, error)
}

// DeletePermissionSetAPI defines the subset of the SSO Admin API used for
// deleting orphaned pipeline-owned permission sets.
type DeletePermissionSetAPI interface {
	DeletePermissionSet(ctx context.Context, params *ssoadmin.DeletePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeletePermissionSetOutput, error)
}

// UpdatePermissionSetAPI defines the subset of the SSO Admin API used for
// overwriting a permission set's general information (description, session
// duration, relay state).
type UpdatePermissionSetAPI interface {
	UpdatePermissionSet(ctx context.Context, params *ssoadmin.UpdatePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.UpdatePermissionSetOutput, error)
}

// PutInlinePolicyAPI defines the subset of the SSO Admin API used for writing
// a permission set's inline policy document.
type PutInlinePolicyAPI interface {
	PutInlinePolicyToPermissionSet(ctx context.Context, params *ssoadmin.PutInlinePolicyToPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.PutInlinePolicyToPermissionSetOutput, error)
}

// DeleteInlinePolicyAPI defines the subset of the SSO Admin API used for
// removing a permission set's inline policy.
type DeleteInlinePolicyAPI interface {
	DeleteInlinePolicyFromPermissionSet(ctx context.Context, params *ssoadmin.DeleteInlinePolicyFromPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeleteInlinePolicyFromPermissionSetOutput, error)
}

// GetInlinePolicyAPI defines the subset of the SSO Admin API used by the
// export command to read a permission set's inline policy document.
type GetInlinePolicyAPI interface {
	GetInlinePolicyForPermissionSet(ctx context.Context, params *ssoadmin.GetInlinePolicyForPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.GetInlinePolicyForPermissionSetOutput, error)
}

// ListManagedPoliciesAPI defines the subset of the SSO Admin API used for
// listing the AWS managed policies attached to a permission set.
type ListManagedPoliciesAPI interface {
	ListManagedPoliciesInPermissionSet(ctx context.Context, params *ssoadmin.ListManagedPoliciesInPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListManagedPoliciesInPermissionSetOutput, error)
}

// AttachManagedPolicyAPI defines the subset of the SSO Admin API used for
// attaching an AWS managed policy to a permission set.
type AttachManagedPolicyAPI interface {
	AttachManagedPolicyToPermissionSet(ctx context.Context, params *ssoadmin.AttachManagedPolicyToPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.AttachManagedPolicyToPermissionSetOutput, error)
}

// DetachManagedPolicyAPI defines the subset of the SSO Admin API used for
// detaching an AWS managed policy from a permission set.
type DetachManagedPolicyAPI interface {
	DetachManagedPolicyFromPermissionSet(ctx context.Context, params *ssoadmin.DetachManagedPolicyFromPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DetachManagedPolicyFromPermissionSetOutput, error)
}

// ListCustomerManagedPolicyReferencesAPI defines the subset of the SSO Admin
// API used for listing the customer managed policy references attached to a
// permission set.
type ListCustomerManagedPolicyReferencesAPI interface {
	ListCustomerManagedPolicyReferencesInPermissionSet(ctx context.Context, params *ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetOutput, error)
}

// AttachCustomerManagedPolicyReferenceAPI defines the subset of the SSO Admin
// API used for attaching a customer managed policy reference to a permission
// set.
type AttachCustomerManagedPolicyReferenceAPI interface {
	AttachCustomerManagedPolicyReferenceToPermissionSet(ctx context.Context, params *ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetOutput, error)
}

// DetachCustomerManagedPolicyReferenceAPI defines the subset of the SSO Admin
// API used for detaching a customer managed policy reference from a
// permission set.
type DetachCustomerManagedPolicyReferenceAPI interface {
	DetachCustomerManagedPolicyReferenceFromPermissionSet(ctx context.Context, params *ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetOutput, error)
}

// PutPermissionsBoundaryAPI defines the subset of the SSO Admin API used for
// attaching a permissions boundary to a permission set.
type PutPermissionsBoundaryAPI interface {
	PutPermissionsBoundaryToPermissionSet(ctx context.Context, params *ssoadmin.PutPermissionsBoundaryToPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.PutPermissionsBoundaryToPermissionSetOutput, error)
}

// DeletePermissionsBoundaryAPI defines the subset of the SSO Admin API used
// for removing a permission set's permissions boundary.
type DeletePermissionsBoundaryAPI interface {
	DeletePermissionsBoundaryFromPermissionSet(ctx context.Context, params *ssoadmin.DeletePermissionsBoundaryFromPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeletePermissionsBoundaryFromPermissionSetOutput, error)
}

// GetPermissionsBoundaryAPI defines the subset of the SSO Admin API used by
// the export command to read a permission set's permissions boundary.
type GetPermissionsBoundaryAPI interface {
	GetPermissionsBoundaryForPermissionSet(ctx context.Context, params *ssoadmin.GetPermissionsBoundaryForPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.GetPermissionsBoundaryForPermissionSetOutput, error)
}

// ProvisionPermissionSetAPI defines the subset of the SSO Admin API used for
// propagating permission set changes to all assigned accounts.
type ProvisionPermissionSetAPI interface {
	ProvisionPermissionSet(ctx context.Context, params *ssoadmin.ProvisionPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ProvisionPermissionSetOutput, error)
}

// ---------------------------------------------------------------------------
// Composite interfaces per consumer
// ---------------------------------------------------------------------------

// IndexAPI groups the SSO Admin operations the live-state indexer needs to
// build the owned name-to-ARN map.
type IndexAPI interface {
	ListPermissionSetsAPI
	ListTagsForResourceAPI
	DescribePermissionSetAPI
}

// ReconcileAPI groups the SSO Admin operations the permission set reconciler
// needs for create, the five facet updates, delete, and reprovisioning.
type ReconcileAPI interface {
	CreatePermissionSetAPI
	DeletePermissionSetAPI
	UpdatePermissionSetAPI
	PutInlinePolicyAPI
	DeleteInlinePolicyAPI
	ListManagedPoliciesAPI
	AttachManagedPolicyAPI
	DetachManagedPolicyAPI
	ListCustomerManagedPolicyReferencesAPI
	AttachCustomerManagedPolicyReferenceAPI
	DetachCustomerManagedPolicyReferenceAPI
	PutPermissionsBoundaryAPI
	DeletePermissionsBoundaryAPI
	ProvisionPermissionSetAPI
}

// ExportAPI groups the SSO Admin operations the export command needs to turn
// live permission sets back into repository templates.
type ExportAPI interface {
	ListPermissionSetsAPI
	DescribePermissionSetAPI
	ListManagedPoliciesAPI
	ListCustomerManagedPolicyReferencesAPI
	GetInlinePolicyAPI
	GetPermissionsBoundaryAPI
}

// ---------------------------------------------------------------------------
// Compile-time interface satisfaction checks
// ---------------------------------------------------------------------------

var (
	_ ListSSOInstancesAPI                     = (*ssoadmin.Client)(nil)
	_ ListPermissionSetsAPI                   = (*ssoadmin.Client)(nil)
	_ DescribePermissionSetAPI                = (*ssoadmin.Client)(nil)
	_ ListTagsForResourceAPI                  = (*ssoadmin.Client)(nil)
	_ TagResourceAPI                          = (*ssoadmin.Client)(nil)
	_ CreatePermissionSetAPI                  = (*ssoadmin.Client)(nil)
	_ DeletePermissionSetAPI                  = (*ssoadmin.Client)(nil)
	_ UpdatePermissionSetAPI                  = (*ssoadmin.Client)(nil)
	_ PutInlinePolicyAPI                      = (*ssoadmin.Client)(nil)
	_ DeleteInlinePolicyAPI                   = (*ssoadmin.Client)(nil)
	_ GetInlinePolicyAPI                      = (*ssoadmin.Client)(nil)
	_ ListManagedPoliciesAPI                  = (*ssoadmin.Client)(nil)
	_ AttachManagedPolicyAPI                  = (*ssoadmin.Client)(nil)
	_ DetachManagedPolicyAPI                  = (*ssoadmin.Client)(nil)
	_ ListCustomerManagedPolicyReferencesAPI  = (*ssoadmin.Client)(nil)
	_ AttachCustomerManagedPolicyReferenceAPI = (*ssoadmin.Client)(nil)
	_ DetachCustomerManagedPolicyReferenceAPI = (*ssoadmin.Client)(nil)
	_ PutPermissionsBoundaryAPI               = (*ssoadmin.Client)(nil)
	_ DeletePermissionsBoundaryAPI            = (*ssoadmin.Client)(nil)
	_ GetPermissionsBoundaryAPI               = (*ssoadmin.Client)(nil)
	_ ProvisionPermissionSetAPI               = (*ssoadmin.Client)(nil)
	_ IndexAPI                                = (*ssoadmin.Client)(nil)
	_ ReconcileAPI                            = (*ssoadmin.Client)(nil)
	_ ExportAPI                               = (*ssoadmin.Client)(nil)
)
