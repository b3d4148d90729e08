// Package validate enforces repository-level invariants over the loaded
// template catalogs before any live change is attempted. The four checks run
// in a fixed order and the first failure aborts the run.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/accessanalyzer"
	aatypes "github.com/aws/aws-sdk-go-v2/service/accessanalyzer/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// Validator runs the static template checks. All AWS dependencies are
// injected for testability.
type Validator struct {
	analyzer awsapi.ValidatePolicyAPI
	iam      awsapi.GetPolicyAPI
	log      *logging.Logger
}

// New constructs a Validator.
func New(analyzer awsapi.ValidatePolicyAPI, iamClient awsapi.GetPolicyAPI, log *logging.Logger) *Validator {
	return &Validator{analyzer: analyzer, iam: iamClient, log: log}
}

// Validate runs the four checks in order:
//
//  1. Unique permission set names.
//  2. Unique assignment SIDs.
//  3. Custom policy validity via Access Analyzer (ERROR fatal, WARNING
//     logged).
//  4. Managed policy ARN resolvability via IAM, plus the not-ARN-shaped rule
//     for CUSTOMER permission boundaries.
//
// Any failure is returned as a TemplateError before a single live write.
func (v *Validator) Validate(ctx context.Context, sets []templates.PermissionSet, assignments []templates.Assignment) error {
	if err := v.uniqueNames(sets); err != nil {
		return err
	}
	if err := v.uniqueSIDs(assignments); err != nil {
		return err
	}
	if err := v.customPolicies(ctx, sets); err != nil {
		return err
	}
	return v.managedPolicyARNs(ctx, sets)
}

func (v *Validator) uniqueNames(sets []templates.PermissionSet) error {
	seen := make(map[string]bool, len(sets))
	for _, ps := range sets {
		if seen[ps.Name] {
			return &templates.TemplateError{
				Err: fmt.Errorf("duplicate permission set name %q", ps.Name),
			}
		}
		seen[ps.Name] = true
	}
	v.log.Infof("no permission sets with the same name were detected")
	return nil
}

func (v *Validator) uniqueSIDs(assignments []templates.Assignment) error {
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if seen[a.SID] {
			return &templates.TemplateError{
				Err: fmt.Errorf("duplicate assignment SID %q", a.SID),
			}
		}
		seen[a.SID] = true
	}
	v.log.Infof("no assignment templates with the same SID were detected")
	return nil
}

// customPolicies submits each non-empty CustomPolicy to Access Analyzer as an
// identity policy. Findings of type ERROR are fatal; WARNING findings are
// logged and the run continues.
func (v *Validator) customPolicies(ctx context.Context, sets []templates.PermissionSet) error {
	for _, ps := range sets {
		if !ps.HasCustomPolicy() {
			v.log.Infof("[PS: %s] no custom policy in the permission set, skipping", ps.Name)
			continue
		}

		v.log.Infof("[PS: %s] analyzing custom policy", ps.Name)
		paginator := accessanalyzer.NewValidatePolicyPaginator(v.analyzer, &accessanalyzer.ValidatePolicyInput{
			Locale:         aatypes.LocaleEn,
			PolicyDocument: aws.String(string(ps.CustomPolicy)),
			PolicyType:     aatypes.PolicyTypeIdentityPolicy,
		})

		for paginator.HasMorePages() {
			out, err := paginator.NextPage(ctx)
			if err != nil {
				return awsapi.Classify(fmt.Sprintf("validate policy of permission set %q", ps.Name), err)
			}
			for _, finding := range out.Findings {
				details := aws.ToString(finding.FindingDetails)
				switch finding.FindingType {
				case aatypes.ValidatePolicyFindingTypeError:
					return &templates.TemplateError{
						Err: fmt.Errorf("permission set %q custom policy: %s", ps.Name, details),
					}
				case aatypes.ValidatePolicyFindingTypeWarning:
					v.log.Warnf("[PS: %s] an issue was found in the custom policy: %s", ps.Name, details)
				}
			}
		}
	}
	return nil
}

// managedPolicyARNs confirms every referenced AWS managed policy ARN resolves
// in IAM, and that CUSTOMER permission boundaries are named rather than
// ARN-shaped.
func (v *Validator) managedPolicyARNs(ctx context.Context, sets []templates.PermissionSet) error {
	for _, ps := range sets {
		v.log.Infof("[PS: %s] analyzing AWS managed policies from permission set", ps.Name)
		for _, arn := range ps.ManagedPolicies {
			if _, err := v.iam.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: aws.String(arn)}); err != nil {
				return &templates.TemplateError{
					Err: fmt.Errorf("permission set %q managed policy %q: %w", ps.Name, arn, err),
				}
			}
		}
	}

	for _, ps := range sets {
		if ps.PermissionBoundary == nil {
			continue
		}
		v.log.Infof("[PS: %s] analyzing permission boundary policy from permission set", ps.Name)
		boundary := ps.PermissionBoundary
		switch boundary.PolicyType {
		case templates.BoundaryTypeAWS:
			if _, err := v.iam.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: aws.String(boundary.Policy)}); err != nil {
				return &templates.TemplateError{
					Err: fmt.Errorf("permission set %q permission boundary %q: %w", ps.Name, boundary.Policy, err),
				}
			}
		default:
			if strings.Contains(boundary.Policy, "arn:aws") {
				return &templates.TemplateError{
					Err: fmt.Errorf("permission set %q: customer permission boundary must be a policy name, got ARN %q", ps.Name, boundary.Policy),
				}
			}
		}
	}
	return nil
}
