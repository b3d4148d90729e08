package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
)

// stubExportClient serves one permission set with empty facets.
type stubExportClient struct{}

func (stubExportClient) ListPermissionSets(_ context.Context, _ *ssoadmin.ListPermissionSetsInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListPermissionSetsOutput, error) {
	return &ssoadmin.ListPermissionSetsOutput{PermissionSets: []string{"arn:ps/readonly"}}, nil
}

func (stubExportClient) DescribePermissionSet(_ context.Context, in *ssoadmin.DescribePermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.DescribePermissionSetOutput, error) {
	return &ssoadmin.DescribePermissionSetOutput{
		PermissionSet: &ssoadmintypes.PermissionSet{
			PermissionSetArn: in.PermissionSetArn,
			Name:             aws.String("ReadOnly"),
			Description:      aws.String("Read only"),
			SessionDuration:  aws.String("PT1H"),
		},
	}, nil
}

func (stubExportClient) GetInlinePolicyForPermissionSet(_ context.Context, _ *ssoadmin.GetInlinePolicyForPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.GetInlinePolicyForPermissionSetOutput, error) {
	return &ssoadmin.GetInlinePolicyForPermissionSetOutput{InlinePolicy: aws.String("")}, nil
}

func (stubExportClient) ListManagedPoliciesInPermissionSet(_ context.Context, _ *ssoadmin.ListManagedPoliciesInPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListManagedPoliciesInPermissionSetOutput, error) {
	return &ssoadmin.ListManagedPoliciesInPermissionSetOutput{}, nil
}

func (stubExportClient) ListCustomerManagedPolicyReferencesInPermissionSet(_ context.Context, _ *ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetOutput, error) {
	return &ssoadmin.ListCustomerManagedPolicyReferencesInPermissionSetOutput{}, nil
}

func (stubExportClient) GetPermissionsBoundaryForPermissionSet(_ context.Context, _ *ssoadmin.GetPermissionsBoundaryForPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.GetPermissionsBoundaryForPermissionSetOutput, error) {
	return nil, &ssoadmintypes.ResourceNotFoundException{Message: aws.String("no boundary")}
}

func TestExportCommandWritesTemplates(t *testing.T) {
	outputFolder := filepath.Join(t.TempDir(), "exported")

	buf := new(bytes.Buffer)
	cmd := newExportCommandWithDeps(&exportDeps{
		client:      stubExportClient{},
		instanceARN: "arn:aws:sso:::instance/ssoins-test123",
	})
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--output-folder", outputFolder})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outputFolder, "ReadOnly.json")); err != nil {
		t.Errorf("expected exported template: %v", err)
	}
	if !strings.Contains(buf.String(), "Exported 1 permission sets") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
