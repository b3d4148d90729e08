package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/tags"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// Reconciler converges each repository permission set to the live tenant.
// For every template it creates or updates the live permission set, syncing
// the five facets in fixed order (general info, inline policy, AWS managed
// policies, customer managed policies, permission boundary) and then
// reprovisioning. Owned permission sets absent from the repository are
// deleted after all creates and updates complete.
//
// There is no rollback: a facet failure outside the benign-idempotent set
// aborts the run and a subsequent run resumes convergence.
type Reconciler struct {
	client      awsapi.ReconcileAPI
	instanceARN string
	relayState  string
	log         *logging.Logger
}

// NewReconciler constructs a Reconciler. relayState is the default applied to
// templates that omit one.
func NewReconciler(client awsapi.ReconcileAPI, instanceARN, relayState string, log *logging.Logger) *Reconciler {
	return &Reconciler{
		client:      client,
		instanceARN: instanceARN,
		relayState:  relayState,
		log:         log,
	}
}

// Reconcile applies the repository catalog against the owned live index
// (name to ARN). The repository is authoritative: missing sets are created,
// existing sets are converged facet by facet, and owned orphans are deleted.
func (r *Reconciler) Reconcile(ctx context.Context, desired []templates.PermissionSet, live map[string]string) error {
	inRepository := make(map[string]bool, len(desired))

	for _, ps := range desired {
		inRepository[ps.Name] = true

		arn, exists := live[ps.Name]
		if exists {
			r.log.Infof("[PS: %s] permission set already exists in the tenant, so it will be UPDATED", ps.Name)
		} else {
			r.log.Infof("[PS: %s] permission set doesn't exist in the tenant, so it will be CREATED", ps.Name)
			created, err := r.create(ctx, ps)
			if err != nil {
				return err
			}
			arn = created
		}

		if err := r.apply(ctx, ps, arn); err != nil {
			return err
		}
	}

	// Deletes run last so they observe a stable view of the tenant.
	orphans := make([]string, 0, len(live))
	for name := range live {
		if !inRepository[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)

	for _, name := range orphans {
		r.log.Infof("[PS: %s] permission set was not found in the repository, so it will be DELETED", name)
		if err := r.delete(ctx, name, live[name]); err != nil {
			return err
		}
	}
	return nil
}

// create calls CreatePermissionSet with the ownership tag and returns the new
// ARN. Relay state is applied by the general-info facet immediately after.
func (r *Reconciler) create(ctx context.Context, ps templates.PermissionSet) (string, error) {
	out, err := r.client.CreatePermissionSet(ctx, &ssoadmin.CreatePermissionSetInput{
		InstanceArn:     aws.String(r.instanceARN),
		Name:            aws.String(ps.Name),
		Description:     aws.String(ps.Description),
		SessionDuration: aws.String(ps.SessionDuration),
		Tags:            tags.Ownership(),
	})
	if err != nil {
		return "", awsapi.Classify(fmt.Sprintf("create permission set %q", ps.Name), err)
	}

	r.log.Infof("[PS: %s] successfully created the permission set", ps.Name)
	return aws.ToString(out.PermissionSet.PermissionSetArn), nil
}

func (r *Reconciler) delete(ctx context.Context, name, arn string) error {
	_, err := r.client.DeletePermissionSet(ctx, &ssoadmin.DeletePermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("delete permission set %q", name), err)
	}

	r.log.Infof("[PS: %s] permission set was deleted: %s", name, arn)
	return nil
}

// apply runs the five facet updates in fixed order and reprovisions. Each
// facet converges independently and idempotently against the live state of
// just that facet.
func (r *Reconciler) apply(ctx context.Context, ps templates.PermissionSet, arn string) error {
	if err := r.updateGeneralInfo(ctx, ps, arn); err != nil {
		return err
	}
	if err := r.syncInlinePolicy(ctx, ps, arn); err != nil {
		return err
	}
	if err := r.syncManagedPolicies(ctx, ps, arn); err != nil {
		return err
	}
	if err := r.syncCustomerManagedPolicies(ctx, ps, arn); err != nil {
		return err
	}
	if err := r.syncPermissionBoundary(ctx, ps, arn); err != nil {
		return err
	}
	return r.reprovision(ctx, ps, arn)
}

// updateGeneralInfo overwrites description, session duration, and relay
// state (F1).
func (r *Reconciler) updateGeneralInfo(ctx context.Context, ps templates.PermissionSet, arn string) error {
	r.log.Infof("[PS: %s] updating general information", ps.Name)

	relayState := ps.RelayState
	if relayState == "" {
		relayState = r.relayState
	}

	_, err := r.client.UpdatePermissionSet(ctx, &ssoadmin.UpdatePermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
		Description:      aws.String(ps.Description),
		SessionDuration:  aws.String(ps.SessionDuration),
		RelayState:       aws.String(relayState),
	})
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("update general information of permission set %q", ps.Name), err)
	}
	return nil
}

// syncInlinePolicy puts the template's custom policy or removes any live one
// (F2). A not-found response on delete is idempotent removal.
func (r *Reconciler) syncInlinePolicy(ctx context.Context, ps templates.PermissionSet, arn string) error {
	r.log.Infof("[PS: %s] updating inline policy", ps.Name)

	if ps.HasCustomPolicy() {
		_, err := r.client.PutInlinePolicyToPermissionSet(ctx, &ssoadmin.PutInlinePolicyToPermissionSetInput{
			InstanceArn:      aws.String(r.instanceARN),
			PermissionSetArn: aws.String(arn),
			InlinePolicy:     aws.String(string(ps.CustomPolicy)),
		})
		if err != nil {
			return awsapi.Classify(fmt.Sprintf("put inline policy of permission set %q", ps.Name), err)
		}
		return nil
	}

	_, err := r.client.DeleteInlinePolicyFromPermissionSet(ctx, &ssoadmin.DeleteInlinePolicyFromPermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	if err != nil {
		if awsapi.IsNotFound(err) {
			r.log.Infof("[PS: %s] no inline policy found, nothing to delete", ps.Name)
			return nil
		}
		return awsapi.Classify(fmt.Sprintf("delete inline policy of permission set %q", ps.Name), err)
	}
	return nil
}

// syncManagedPolicies attaches desired-minus-current and detaches
// current-minus-desired AWS managed policies (F3).
func (r *Reconciler) syncManagedPolicies(ctx context.Context, ps templates.PermissionSet, arn string) error {
	r.log.Infof("[PS: %s] updating AWS managed policies", ps.Name)

	current := make(map[string]bool)
	paginator := ssoadmin.NewListManagedPoliciesInPermissionSetPaginator(r.client, &ssoadmin.ListManagedPoliciesInPermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return awsapi.Classify(fmt.Sprintf("list managed policies of permission set %q", ps.Name), err)
		}
		for _, attached := range page.AttachedManagedPolicies {
			current[aws.ToString(attached.Arn)] = true
		}
	}

	desired := make(map[string]bool, len(ps.ManagedPolicies))
	for _, policyARN := range ps.ManagedPolicies {
		desired[policyARN] = true
		if current[policyARN] {
			continue
		}
		_, err := r.client.AttachManagedPolicyToPermissionSet(ctx, &ssoadmin.AttachManagedPolicyToPermissionSetInput{
			InstanceArn:      aws.String(r.instanceARN),
			PermissionSetArn: aws.String(arn),
			ManagedPolicyArn: aws.String(policyARN),
		})
		if err != nil {
			if awsapi.IsConflict(err) {
				r.log.Infof("[PS: %s] managed policy was already attached: %s", ps.Name, policyARN)
				continue
			}
			return awsapi.Classify(fmt.Sprintf("attach managed policy %q to permission set %q", policyARN, ps.Name), err)
		}
		r.log.Infof("[PS: %s] successfully added managed policy: %s", ps.Name, policyARN)
	}

	for policyARN := range current {
		if desired[policyARN] {
			continue
		}
		r.log.Infof("[PS: %s] managed policy needs to be removed from permission set: %s", ps.Name, policyARN)
		_, err := r.client.DetachManagedPolicyFromPermissionSet(ctx, &ssoadmin.DetachManagedPolicyFromPermissionSetInput{
			InstanceArn:      aws.String(r.instanceARN),
			PermissionSetArn: aws.String(arn),
			ManagedPolicyArn: aws.String(policyARN),
		})
		if err != nil {
			return awsapi.Classify(fmt.Sprintf("detach managed policy %q from permission set %q", policyARN, ps.Name), err)
		}
	}
	return nil
}

// syncCustomerManagedPolicies applies the same symmetric-difference logic as
// F3, by policy name, via {Name, Path: "/"} references (F4).
func (r *Reconciler) syncCustomerManagedPolicies(ctx context.Context, ps templates.PermissionSet, arn string) error {
	r.log.Infof("[PS: %s] updating customer managed policies", ps.Name)

	current := make(map[string]bool)
	paginator := ssoadmin.NewListCustomerManagedPolicyReferencesInPermissionSetPaginator(r.client, &ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return awsapi.Classify(fmt.Sprintf("list customer managed policies of permission set %q", ps.Name), err)
		}
		for _, ref := range page.CustomerManagedPolicyReferences {
			current[aws.ToString(ref.Name)] = true
		}
	}

	desired := make(map[string]bool, len(ps.CustomerManagedPolicies))
	for _, name := range ps.CustomerManagedPolicies {
		desired[name] = true
		if current[name] {
			continue
		}
		_, err := r.client.AttachCustomerManagedPolicyReferenceToPermissionSet(ctx, &ssoadmin.AttachCustomerManagedPolicyReferenceToPermissionSetInput{
			InstanceArn:      aws.String(r.instanceARN),
			PermissionSetArn: aws.String(arn),
			CustomerManagedPolicyReference: &ssoadmintypes.CustomerManagedPolicyReference{
				Name: aws.String(name),
				Path: aws.String("/"),
			},
		})
		if err != nil {
			if awsapi.IsConflict(err) {
				r.log.Infof("[PS: %s] customer managed policy was already attached: %s", ps.Name, name)
				continue
			}
			return awsapi.Classify(fmt.Sprintf("attach customer managed policy %q to permission set %q", name, ps.Name), err)
		}
		r.log.Infof("[PS: %s] successfully added customer managed policy: %s", ps.Name, name)
	}

	for name := range current {
		if desired[name] {
			continue
		}
		r.log.Infof("[PS: %s] customer managed policy needs to be removed from permission set: %s", ps.Name, name)
		_, err := r.client.DetachCustomerManagedPolicyReferenceFromPermissionSet(ctx, &ssoadmin.DetachCustomerManagedPolicyReferenceFromPermissionSetInput{
			InstanceArn:      aws.String(r.instanceARN),
			PermissionSetArn: aws.String(arn),
			CustomerManagedPolicyReference: &ssoadmintypes.CustomerManagedPolicyReference{
				Name: aws.String(name),
				Path: aws.String("/"),
			},
		})
		if err != nil {
			return awsapi.Classify(fmt.Sprintf("detach customer managed policy %q from permission set %q", name, ps.Name), err)
		}
	}
	return nil
}

// syncPermissionBoundary attaches the template's boundary, overwriting any
// existing one, or removes the live boundary when the template has none
// (F5).
func (r *Reconciler) syncPermissionBoundary(ctx context.Context, ps templates.PermissionSet, arn string) error {
	r.log.Infof("[PS: %s] updating permission boundary", ps.Name)

	if ps.PermissionBoundary != nil {
		boundary := &ssoadmintypes.PermissionsBoundary{}
		if ps.PermissionBoundary.PolicyType == templates.BoundaryTypeAWS {
			boundary.ManagedPolicyArn = aws.String(ps.PermissionBoundary.Policy)
		} else {
			boundary.CustomerManagedPolicyReference = &ssoadmintypes.CustomerManagedPolicyReference{
				Name: aws.String(ps.PermissionBoundary.Policy),
				Path: aws.String("/"),
			}
		}

		_, err := r.client.PutPermissionsBoundaryToPermissionSet(ctx, &ssoadmin.PutPermissionsBoundaryToPermissionSetInput{
			InstanceArn:         aws.String(r.instanceARN),
			PermissionSetArn:    aws.String(arn),
			PermissionsBoundary: boundary,
		})
		if err != nil {
			if awsapi.IsConflict(err) {
				r.log.Infof("[PS: %s] permission boundary was already attached", ps.Name)
				return nil
			}
			return awsapi.Classify(fmt.Sprintf("attach permission boundary to permission set %q", ps.Name), err)
		}
		r.log.Infof("[PS: %s] successfully attached permission boundary", ps.Name)
		return nil
	}

	_, err := r.client.DeletePermissionsBoundaryFromPermissionSet(ctx, &ssoadmin.DeletePermissionsBoundaryFromPermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	if err != nil {
		if awsapi.IsNotFound(err) {
			r.log.Infof("[PS: %s] no permission boundary found, nothing to delete", ps.Name)
			return nil
		}
		return awsapi.Classify(fmt.Sprintf("delete permission boundary of permission set %q", ps.Name), err)
	}

	r.log.Infof("[PS: %s] permission boundary deleted", ps.Name)
	return nil
}

// reprovision pushes the converged permission set to all already-bound
// accounts. Provisioning continues server-side; the engine does not await
// convergence.
func (r *Reconciler) reprovision(ctx context.Context, ps templates.PermissionSet, arn string) error {
	_, err := r.client.ProvisionPermissionSet(ctx, &ssoadmin.ProvisionPermissionSetInput{
		InstanceArn:      aws.String(r.instanceARN),
		PermissionSetArn: aws.String(arn),
		TargetType:       ssoadmintypes.ProvisionTargetTypeAllProvisionedAccounts,
	})
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("provision permission set %q", ps.Name), err)
	}

	r.log.Infof("[PS: %s] re-provisioning permission set in all accounts; it continues in parallel on the service side", ps.Name)
	return nil
}
