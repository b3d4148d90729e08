package reconcile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"

	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

const testRelayState = "https://console.aws.amazon.com/"

// fakeReconcileClient implements awsapi.ReconcileAPI, recording every
// mutating call so tests can assert exact convergence behavior.
type fakeReconcileClient struct {
	// live facet state per permission set ARN.
	managedByARN  map[string][]string
	customerByARN map[string][]string

	// createdARN is returned by CreatePermissionSet.
	createdARN string

	// injected errors.
	attachManagedErr error
	deleteInlineErr  error
	putBoundaryErr   error
	deleteBoundErr   error

	// recorded calls, in order across all operations.
	calls []string

	created         []string
	deleted         []string
	updatedGeneral  []string
	putInline       []string
	deletedInline   []string
	attachedManaged []string
	detachedManaged []string
	attachedCust    []string
	detachedCust    []string
	putBoundary     []string
	deletedBoundary []string
	provisioned     []string
}

func newFakeReconcileClient() *fakeReconcileClient {
	return &fakeReconcileClient{
		managedByARN:  make(map[string][]string),
		customerByARN: make(map[string][]string),
		createdARN:    "arn:ps/created",
	}
}

func (f *fakeReconcileClient) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeReconcileClient) CreatePermissionSet(_ context.Context, in *ssoadmin.CreatePermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.CreatePermissionSetOutput, error) {
	f.record("create")
	f.created = append(f.created, aws.ToString(in.Name))
	return &ssoadmin.CreatePermissionSetOutput{
		PermissionSet: &ssoadmintypes.PermissionSet{PermissionSetArn: aws.String(f.createdARN)},
	}, nil
}

func (f *fakeReconcileClient) DeletePermissionSet(_ context.Context, in *ssoadmin.DeletePermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DeletePermissionSetOutput, error) {
	f.record("delete")
	f.deleted = append(f.deleted, aws.ToString(in.PermissionSetArn))
	return &ssoadmin.DeletePermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) UpdatePermissionSet(_ context.Context, in *ssoadmin.UpdatePermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.UpdatePermissionSetOutput, error) {
	f.record("update-general")
	f.updatedGeneral = append(f.updatedGeneral, aws.ToString(in.RelayState))
	return &ssoadmin.UpdatePermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) PutInlinePolicyToPermissionSet(_ context.Context, in *ssoadmin.PutInlinePolicyToPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.PutInlinePolicyToPermissionSetOutput, error) {
	f.record("put-inline")
	f.putInline = append(f.putInline, aws.ToString(in.InlinePolicy))
	return &ssoadmin.PutInlinePolicyToPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) DeleteInlinePolicyFromPermissionSet(_ context.Context, in *ssoadmin.DeleteInlinePolicyFromPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DeleteInlinePolicyFromPermissionSetOutput, error) {
	f.record("delete-inline")
	f.deletedInline = append(f.deletedInline, aws.ToString(in.PermissionSetArn))
	if f.deleteInlineErr != nil {
		return nil, f.deleteInlineErr
	}
	return &ssoadmin.DeleteInlinePolicyFromPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) ListManagedPoliciesInPermissionSet(_ context.Context, in *ssoadmin.ListManagedPoliciesInPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListManagedPoliciesInPermissionSetOutput, error) {
	var attached []ssoadmintypes.AttachedManagedPolicy
	for _, arn := range f.managedByARN[aws.ToString(in.PermissionSetArn)] {
		attached = append(attached, ssoadmintypes.AttachedManagedPolicy{Arn: aws.String(arn)})
	}
	return &ssoadmin.ListManagedPoliciesInPermissionSetOutput{AttachedManagedPolicies: attached}, nil
}

func (f *fakeReconcileClient) AttachManagedPolicyToPermissionSet(_ context.Context, in *ssoadmin.AttachManagedPolicyToPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.AttachManagedPolicyToPermissionSetOutput, error) {
	f.record("attach-managed")
	f.attachedManaged = append(f.attachedManaged, aws.ToString(in.ManagedPolicyArn))
	if f.attachManagedErr != nil {
		return nil, f.attachManagedErr
	}
	return &ssoadmin.AttachManagedPolicyToPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) DetachManagedPolicyFromPermissionSet(_ context.Context, in *ssoadmin.DetachManagedPolicyFromPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DetachManagedPolicyFromPermissionSetOutput, error) {
	f.record("detach-managed")
	f.detachedManaged = append(f.detachedManaged, aws.ToString(in.ManagedPolicyArn))
	return &ssoadmin.DetachManagedPolicyFromPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) ListCustomerManagedPolicyReferencesInPermissionSet(_ context.Context, in *ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetOutput, error) {
	var refs []ssoadmintypes.CustomerManagedPolicyReference
	for _, name := range f.customerByARN[aws.ToString(in.PermissionSetArn)] {
		refs = append(refs, ssoadmintypes.CustomerManagedPolicyReference{
			Name: aws.String(name),
			Path: aws.String("/"),
		})
	}
	return &ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetOutput{CustomerManagedPolicyReferences: refs}, nil
}

func (f *fakeReconcileClient) AttachCustomerManagedPolicyReferenceToPermissionSet(_ context.Context, in *ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetOutput, error) {
	f.record("attach-customer")
	f.attachedCust = append(f.attachedCust, aws.ToString(in.CustomerManagedPolicyReference.Name))
	return &ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) DetachCustomerManagedPolicyReferenceFromPermissionSet(_ context.Context, in *ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetOutput, error) {
	f.record("detach-customer")
	f.detachedCust = append(f.detachedCust, aws.ToString(in.CustomerManagedPolicyReference.Name))
	return &ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) PutPermissionsBoundaryToPermissionSet(_ context.Context, in *ssoadmin.PutPermissionsBoundaryToPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.PutPermissionsBoundaryToPermissionSetOutput, error) {
	f.record("put-boundary")
	f.putBoundary = append(f.putBoundary, aws.ToString(in.PermissionSetArn))
	if f.putBoundaryErr != nil {
		return nil, f.putBoundaryErr
	}
	return &ssoadmin.PutPermissionsBoundaryToPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) DeletePermissionsBoundaryFromPermissionSet(_ context.Context, in *ssoadmin.DeletePermissionsBoundaryFromPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DeletePermissionsBoundaryFromPermissionSetOutput, error) {
	f.record("delete-boundary")
	f.deletedBoundary = append(f.deletedBoundary, aws.ToString(in.PermissionSetArn))
	if f.deleteBoundErr != nil {
		return nil, f.deleteBoundErr
	}
	return &ssoadmin.DeletePermissionsBoundaryFromPermissionSetOutput{}, nil
}

func (f *fakeReconcileClient) ProvisionPermissionSet(_ context.Context, in *ssoadmin.ProvisionPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ProvisionPermissionSetOutput, error) {
	f.record("provision")
	f.provisioned = append(f.provisioned, aws.ToString(in.PermissionSetArn))
	return &ssoadmin.ProvisionPermissionSetOutput{
		PermissionSetProvisioningStatus: &ssoadmintypes.PermissionSetProvisioningStatus{
			Status: ssoadmintypes.StatusValuesInProgress,
		},
	}, nil
}

func newTestReconciler(client *fakeReconcileClient) *Reconciler {
	return NewReconciler(client, testInstanceARN, testRelayState, logging.New(io.Discard, false))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestReconcileCreateFromEmpty(t *testing.T) {
	client := newFakeReconcileClient()
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:            "ReadOnly",
		Description:     "Read only",
		SessionDuration: "PT8H",
		ManagedPolicies: []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"},
	}}

	if err := r.Reconcile(context.Background(), desired, map[string]string{}); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(client.created) != 1 || client.created[0] != "ReadOnly" {
		t.Errorf("created = %v, want [ReadOnly]", client.created)
	}
	if len(client.attachedManaged) != 1 || client.attachedManaged[0] != "arn:aws:iam::aws:policy/ReadOnlyAccess" {
		t.Errorf("attachedManaged = %v", client.attachedManaged)
	}
	if len(client.provisioned) != 1 {
		t.Errorf("provisioned %d times, want 1", len(client.provisioned))
	}
	if len(client.deleted) != 0 {
		t.Errorf("deleted = %v, want none", client.deleted)
	}
	// Default relay state applied when the template omits one.
	if len(client.updatedGeneral) != 1 || client.updatedGeneral[0] != testRelayState {
		t.Errorf("updatedGeneral = %v", client.updatedGeneral)
	}
}

func TestReconcileDriftRemoval(t *testing.T) {
	client := newFakeReconcileClient()
	client.managedByARN["arn:ps/admin"] = []string{
		"arn:aws:iam::aws:policy/AdministratorAccess",
		"arn:aws:iam::aws:policy/Billing",
	}
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:            "Admin",
		Description:     "Admin",
		SessionDuration: "PT1H",
		ManagedPolicies: []string{"arn:aws:iam::aws:policy/AdministratorAccess"},
	}}
	live := map[string]string{"Admin": "arn:ps/admin"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(client.attachedManaged) != 0 {
		t.Errorf("attachedManaged = %v, want none", client.attachedManaged)
	}
	if len(client.detachedManaged) != 1 || client.detachedManaged[0] != "arn:aws:iam::aws:policy/Billing" {
		t.Errorf("detachedManaged = %v, want [Billing]", client.detachedManaged)
	}
	if len(client.created) != 0 {
		t.Errorf("created = %v, want none", client.created)
	}
	if len(client.provisioned) != 1 {
		t.Errorf("provisioned %d times, want 1", len(client.provisioned))
	}
}

func TestReconcileDeleteOrphan(t *testing.T) {
	client := newFakeReconcileClient()
	r := newTestReconciler(client)

	live := map[string]string{"Legacy": "arn:ps/legacy"}
	if err := r.Reconcile(context.Background(), nil, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(client.deleted) != 1 || client.deleted[0] != "arn:ps/legacy" {
		t.Errorf("deleted = %v, want [arn:ps/legacy]", client.deleted)
	}
	if len(client.created) != 0 || len(client.provisioned) != 0 {
		t.Errorf("unexpected mutations: created=%v provisioned=%v", client.created, client.provisioned)
	}
}

func TestReconcileIdempotentSecondRun(t *testing.T) {
	client := newFakeReconcileClient()
	client.managedByARN["arn:ps/readonly"] = []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"}
	client.customerByARN["arn:ps/readonly"] = []string{"team-extras"}
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:                    "ReadOnly",
		Description:             "Read only",
		SessionDuration:         "PT8H",
		ManagedPolicies:         []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"},
		CustomerManagedPolicies: []string{"team-extras"},
	}}
	live := map[string]string{"ReadOnly": "arn:ps/readonly"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(client.created) != 0 || len(client.deleted) != 0 {
		t.Errorf("creates/deletes on converged run: %v / %v", client.created, client.deleted)
	}
	if len(client.attachedManaged) != 0 || len(client.detachedManaged) != 0 {
		t.Errorf("managed policy churn on converged run: attach=%v detach=%v",
			client.attachedManaged, client.detachedManaged)
	}
	if len(client.attachedCust) != 0 || len(client.detachedCust) != 0 {
		t.Errorf("customer policy churn on converged run: attach=%v detach=%v",
			client.attachedCust, client.detachedCust)
	}
}

func TestReconcileInlinePolicyPutAndRemove(t *testing.T) {
	client := newFakeReconcileClient()
	r := newTestReconciler(client)

	withPolicy := []templates.PermissionSet{{
		Name:            "Custom",
		Description:     "d",
		SessionDuration: "PT1H",
		CustomPolicy:    []byte(`{"Version":"2012-10-17","Statement":[]}`),
	}}
	live := map[string]string{"Custom": "arn:ps/custom"}

	if err := r.Reconcile(context.Background(), withPolicy, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(client.putInline) != 1 || client.putInline[0] != `{"Version":"2012-10-17","Statement":[]}` {
		t.Errorf("putInline = %v", client.putInline)
	}
	if len(client.deletedInline) != 0 {
		t.Errorf("deletedInline = %v, want none", client.deletedInline)
	}
}

func TestReconcileInlinePolicyNotFoundBenign(t *testing.T) {
	client := newFakeReconcileClient()
	client.deleteInlineErr = &ssoadmintypes.ResourceNotFoundException{Message: aws.String("no inline policy")}
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{Name: "Plain", Description: "d", SessionDuration: "PT1H"}}
	live := map[string]string{"Plain": "arn:ps/plain"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v, want not-found treated as success", err)
	}
	if len(client.deletedInline) != 1 {
		t.Errorf("deletedInline = %v, want one call", client.deletedInline)
	}
}

func TestReconcileAttachConflictBenign(t *testing.T) {
	client := newFakeReconcileClient()
	client.attachManagedErr = &ssoadmintypes.ConflictException{Message: aws.String("already attached")}
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:            "ReadOnly",
		Description:     "d",
		SessionDuration: "PT1H",
		ManagedPolicies: []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"},
	}}
	live := map[string]string{"ReadOnly": "arn:ps/readonly"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v, want conflict treated as success", err)
	}
	if len(client.provisioned) != 1 {
		t.Errorf("provisioned %d times, want 1", len(client.provisioned))
	}
}

func TestReconcileFacetFailureFatal(t *testing.T) {
	client := newFakeReconcileClient()
	client.attachManagedErr = errors.New("AccessDenied")
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:            "ReadOnly",
		Description:     "d",
		SessionDuration: "PT1H",
		ManagedPolicies: []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"},
	}}
	live := map[string]string{"ReadOnly": "arn:ps/readonly"}

	if err := r.Reconcile(context.Background(), desired, live); err == nil {
		t.Fatal("Reconcile() error = nil, want fatal facet failure")
	}
	if len(client.provisioned) != 0 {
		t.Errorf("provisioned after facet failure: %v", client.provisioned)
	}
}

func TestReconcileBoundaryFacet(t *testing.T) {
	client := newFakeReconcileClient()
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{
		Name:            "Bounded",
		Description:     "d",
		SessionDuration: "PT1H",
		PermissionBoundary: &templates.PermissionBoundary{
			PolicyType: templates.BoundaryTypeCustomer,
			Policy:     "team-boundary",
		},
	}}
	live := map[string]string{"Bounded": "arn:ps/bounded"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(client.putBoundary) != 1 {
		t.Errorf("putBoundary = %v, want one call", client.putBoundary)
	}
	if len(client.deletedBoundary) != 0 {
		t.Errorf("deletedBoundary = %v, want none", client.deletedBoundary)
	}
}

func TestReconcileBoundaryRemovalNotFoundBenign(t *testing.T) {
	client := newFakeReconcileClient()
	client.deleteBoundErr = &ssoadmintypes.ResourceNotFoundException{Message: aws.String("no boundary")}
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{Name: "Plain", Description: "d", SessionDuration: "PT1H"}}
	live := map[string]string{"Plain": "arn:ps/plain"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v, want not-found treated as success", err)
	}
}

func TestReconcileCreatesAndUpdatesBeforeDeletes(t *testing.T) {
	client := newFakeReconcileClient()
	r := newTestReconciler(client)

	desired := []templates.PermissionSet{{Name: "Fresh", Description: "d", SessionDuration: "PT1H"}}
	live := map[string]string{"Legacy": "arn:ps/legacy"}

	if err := r.Reconcile(context.Background(), desired, live); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	deleteIdx := -1
	provisionIdx := -1
	for i, call := range client.calls {
		switch call {
		case "delete":
			deleteIdx = i
		case "provision":
			provisionIdx = i
		}
	}
	if deleteIdx == -1 || provisionIdx == -1 {
		t.Fatalf("calls = %v, want both delete and provision", client.calls)
	}
	if deleteIdx < provisionIdx {
		t.Errorf("delete at %d before provision at %d; deletes must run last", deleteIdx, provisionIdx)
	}
}
