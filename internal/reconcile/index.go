// Package reconcile converges the live SSO tenant to the repository catalog:
// it indexes the pipeline-owned permission sets, diffs them against the
// templates, and applies create, update, and delete operations per permission
// set.
package reconcile

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/tags"
)

// Indexer builds the owned live-state index of the tenant.
type Indexer struct {
	client      awsapi.IndexAPI
	instanceARN string
	log         *logging.Logger
}

// NewIndexer constructs an Indexer for the given SSO instance.
func NewIndexer(client awsapi.IndexAPI, instanceARN string, log *logging.Logger) *Indexer {
	return &Indexer{client: client, instanceARN: instanceARN, log: log}
}

// OwnedPermissionSets enumerates every permission set in the tenant and
// returns a name-to-ARN map of those carrying the ownership tag. Untagged
// permission sets are invisible to reconciliation: a same-name tenant-native
// set will collide on create rather than be silently taken over.
func (ix *Indexer) OwnedPermissionSets(ctx context.Context) (map[string]string, error) {
	index := make(map[string]string)

	paginator := ssoadmin.NewListPermissionSetsPaginator(ix.client, &ssoadmin.ListPermissionSetsInput{
		InstanceArn: aws.String(ix.instanceARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, awsapi.Classify("list permission sets", err)
		}

		for _, arn := range page.PermissionSets {
			tagsOut, err := ix.client.ListTagsForResource(ctx, &ssoadmin.ListTagsForResourceInput{
				InstanceArn: aws.String(ix.instanceARN),
				ResourceArn: aws.String(arn),
			})
			if err != nil {
				return nil, awsapi.Classify(fmt.Sprintf("list tags for %s", arn), err)
			}
			if !tags.IsOwned(tagsOut.Tags) {
				continue
			}

			desc, err := ix.client.DescribePermissionSet(ctx, &ssoadmin.DescribePermissionSetInput{
				InstanceArn:      aws.String(ix.instanceARN),
				PermissionSetArn: aws.String(arn),
			})
			if err != nil {
				return nil, awsapi.Classify(fmt.Sprintf("describe permission set %s", arn), err)
			}
			if desc.PermissionSet != nil {
				index[aws.ToString(desc.PermissionSet.Name)] = arn
			}
		}
	}

	ix.log.Infof("indexed %d pipeline-owned permission sets", len(index))
	return index, nil
}
