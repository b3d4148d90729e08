package cmd

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/tags"
)

// adoptDeps holds the injectable dependencies for the adopt command.
type adoptDeps struct {
	list        awsapi.ListPermissionSetsAPI
	describe    awsapi.DescribePermissionSetAPI
	listTags    awsapi.ListTagsForResourceAPI
	tag         awsapi.TagResourceAPI
	instanceARN string
}

// newAdoptCommand creates the production adopt command.
func newAdoptCommand() *cobra.Command {
	return newAdoptCommandWithDeps(nil)
}

// newAdoptCommandWithDeps creates the adopt command with explicit
// dependencies for testing.
func newAdoptCommandWithDeps(deps *adoptDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "adopt <permission-set-name>",
		Short: "Place an existing permission set under pipeline ownership",
		Long:  "Tag a tenant-native permission set with the pipeline ownership tag so the next reconciliation run manages it. The permission set must already have a matching repository template, or it will be deleted as an orphan.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps != nil {
				return runAdopt(cmd, deps, args[0])
			}
			clients := awsClientsFromContext(cmd.Context())
			if clients == nil {
				return fmt.Errorf("AWS clients not configured")
			}
			return runAdopt(cmd, &adoptDeps{
				list:        clients.ssoClient,
				describe:    clients.ssoClient,
				listTags:    clients.ssoClient,
				tag:         clients.ssoClient,
				instanceARN: clients.instance.ARN,
			}, args[0])
		},
	}
}

// runAdopt finds the named permission set anywhere in the tenant and applies
// the ownership tag. Adopting an already-owned permission set is a no-op.
func runAdopt(cmd *cobra.Command, deps *adoptDeps, name string) error {
	ctx := cmd.Context()

	arn, err := findPermissionSetByName(cmd, deps, name)
	if err != nil {
		return err
	}
	if arn == "" {
		return fmt.Errorf("permission set %q not found in the tenant", name)
	}

	tagsOut, err := deps.listTags.ListTagsForResource(ctx, &ssoadmin.ListTagsForResourceInput{
		InstanceArn: aws.String(deps.instanceARN),
		ResourceArn: aws.String(arn),
	})
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("list tags for %s", arn), err)
	}
	if tags.IsOwned(tagsOut.Tags) {
		fmt.Fprintf(cmd.OutOrStdout(), "Permission set %q is already pipeline-owned.\n", name)
		return nil
	}

	_, err = deps.tag.TagResource(ctx, &ssoadmin.TagResourceInput{
		InstanceArn: aws.String(deps.instanceARN),
		ResourceArn: aws.String(arn),
		Tags:        tags.Ownership(),
	})
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("tag permission set %q", name), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Permission set %q is now pipeline-owned. The next reconciliation run will manage it.\n", name)
	return nil
}

// findPermissionSetByName scans the whole tenant, owned or not, and returns
// the ARN of the permission set with the given name, or "" when absent.
func findPermissionSetByName(cmd *cobra.Command, deps *adoptDeps, name string) (string, error) {
	ctx := cmd.Context()

	paginator := ssoadmin.NewListPermissionSetsPaginator(deps.list, &ssoadmin.ListPermissionSetsInput{
		InstanceArn: aws.String(deps.instanceARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", awsapi.Classify("list permission sets", err)
		}
		for _, arn := range page.PermissionSets {
			desc, err := deps.describe.DescribePermissionSet(ctx, &ssoadmin.DescribePermissionSetInput{
				InstanceArn:      aws.String(deps.instanceARN),
				PermissionSetArn: aws.String(arn),
			})
			if err != nil {
				return "", awsapi.Classify(fmt.Sprintf("describe permission set %s", arn), err)
			}
			if desc.PermissionSet != nil && aws.ToString(desc.PermissionSet.Name) == name {
				return arn, nil
			}
		}
	}
	return "", nil
}
