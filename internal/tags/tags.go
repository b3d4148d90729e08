// Package tags defines the ownership tag schema for pipeline-managed
// permission sets.
//
// A live permission set belongs to the pipeline iff it carries a tag with key
// SSOPipeline; the value is ignored on match. Permission sets the pipeline
// creates always carry SSOPipeline=true. This package centralises the schema
// so the indexer, reconciler, and adopt command share a single source of
// truth.
package tags

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
)

const (
	// TagPipeline marks a permission set as managed by the pipeline.
	TagPipeline = "SSOPipeline"

	// PipelineValue is the value written on creation and adoption. Matching
	// is on key only, so drifted values still count as owned.
	PipelineValue = "true"
)

// Ownership returns the tag set applied to every permission set the pipeline
// creates or adopts.
func Ownership() []ssoadmintypes.Tag {
	return []ssoadmintypes.Tag{
		{
			Key:   aws.String(TagPipeline),
			Value: aws.String(PipelineValue),
		},
	}
}

// IsOwned reports whether the given live tag set marks the resource as
// pipeline-owned. Only the key is inspected.
func IsOwned(tagSet []ssoadmintypes.Tag) bool {
	for _, t := range tagSet {
		if aws.ToString(t.Key) == TagPipeline {
			return true
		}
	}
	return false
}
