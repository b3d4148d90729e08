// Package export turns live permission sets back into repository templates,
// one JSON file per permission set. It is the inverse of reconciliation and
// the on-ramp for adopting an existing tenant into the pipeline.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// Exporter reads every permission set in the tenant and writes its
// repository form to an output folder.
type Exporter struct {
	client      awsapi.ExportAPI
	instanceARN string
	log         *logging.Logger
}

// NewExporter constructs an Exporter for the given SSO instance.
func NewExporter(client awsapi.ExportAPI, instanceARN string, log *logging.Logger) *Exporter {
	return &Exporter{client: client, instanceARN: instanceARN, log: log}
}

// Export writes one <Name>.json template per live permission set into
// outputDir, creating the directory if needed. Returns the number of
// templates written.
func (e *Exporter) Export(ctx context.Context, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output folder %s: %w", outputDir, err)
	}

	count := 0
	paginator := ssoadmin.NewListPermissionSetsPaginator(e.client, &ssoadmin.ListPermissionSetsInput{
		InstanceArn: aws.String(e.instanceARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, awsapi.Classify("list permission sets", err)
		}
		for _, arn := range page.PermissionSets {
			tmpl, err := e.extract(ctx, arn)
			if err != nil {
				return count, err
			}

			path := filepath.Join(outputDir, tmpl.Name+".json")
			data, err := json.MarshalIndent(tmpl, "", "    ")
			if err != nil {
				return count, fmt.Errorf("encode template %s: %w", tmpl.Name, err)
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return count, fmt.Errorf("write %s: %w", path, err)
			}
			e.log.Infof("[PS: %s] exported to %s", tmpl.Name, path)
			count++
		}
	}
	return count, nil
}

// extract reads all five facets of one live permission set.
func (e *Exporter) extract(ctx context.Context, arn string) (*templates.PermissionSet, error) {
	desc, err := e.client.DescribePermissionSet(ctx, &ssoadmin.DescribePermissionSetInput{
		InstanceArn:      aws.String(e.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	if err != nil {
		return nil, awsapi.Classify(fmt.Sprintf("describe permission set %s", arn), err)
	}
	ps := desc.PermissionSet
	tmpl := &templates.PermissionSet{
		Name:            aws.ToString(ps.Name),
		Description:     aws.ToString(ps.Description),
		SessionDuration: aws.ToString(ps.SessionDuration),
		RelayState:      aws.ToString(ps.RelayState),
	}
	name := tmpl.Name

	inline, err := e.client.GetInlinePolicyForPermissionSet(ctx, &ssoadmin.GetInlinePolicyForPermissionSetInput{
		InstanceArn:      aws.String(e.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	if err != nil {
		return nil, awsapi.Classify(fmt.Sprintf("get inline policy of %s", name), err)
	}
	if doc := aws.ToString(inline.InlinePolicy); doc != "" {
		tmpl.CustomPolicy = json.RawMessage(doc)
	}

	managed := ssoadmin.NewListManagedPoliciesInPermissionSetPaginator(e.client, &ssoadmin.ListManagedPoliciesInPermissionSetInput{
		InstanceArn:      aws.String(e.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	for managed.HasMorePages() {
		page, err := managed.NextPage(ctx)
		if err != nil {
			return nil, awsapi.Classify(fmt.Sprintf("list managed policies of %s", name), err)
		}
		for _, policy := range page.AttachedManagedPolicies {
			tmpl.ManagedPolicies = append(tmpl.ManagedPolicies, aws.ToString(policy.Arn))
		}
	}

	custom := ssoadmin.NewListCustomerManagedPolicyReferencesInPermissionSetPaginator(e.client, &ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetInput{
		InstanceArn:      aws.String(e.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	for custom.HasMorePages() {
		page, err := custom.NextPage(ctx)
		if err != nil {
			return nil, awsapi.Classify(fmt.Sprintf("list customer managed policies of %s", name), err)
		}
		for _, ref := range page.CustomerManagedPolicyReferences {
			tmpl.CustomerManagedPolicies = append(tmpl.CustomerManagedPolicies, aws.ToString(ref.Name))
		}
	}

	boundary, err := e.client.GetPermissionsBoundaryForPermissionSet(ctx, &ssoadmin.GetPermissionsBoundaryForPermissionSetInput{
		InstanceArn:      aws.String(e.instanceARN),
		PermissionSetArn: aws.String(arn),
	})
	switch {
	case awsapi.IsNotFound(err):
		// No boundary attached.
	case err != nil:
		return nil, awsapi.Classify(fmt.Sprintf("get permissions boundary of %s", name), err)
	case boundary.PermissionsBoundary != nil:
		pb := boundary.PermissionsBoundary
		if pb.ManagedPolicyArn != nil {
			tmpl.PermissionBoundary = &templates.PermissionBoundary{
				PolicyType: templates.BoundaryTypeAWS,
				Policy:     aws.ToString(pb.ManagedPolicyArn),
			}
		} else if pb.CustomerManagedPolicyReference != nil {
			tmpl.PermissionBoundary = &templates.PermissionBoundary{
				PolicyType: templates.BoundaryTypeCustomer,
				Policy:     aws.ToString(pb.CustomerManagedPolicyReference.Name),
			}
		}
	}

	return tmpl, nil
}
