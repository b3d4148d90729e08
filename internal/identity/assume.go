package identity

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// RoleSessionName identifies pipeline role sessions in CloudTrail.
const RoleSessionName = "identitycenter-pipeline"

// OrgConfig returns a copy of base whose credentials come from assuming
// roleARN, for Organizations calls that must run in the management account.
// Credentials are cached and refreshed automatically by the SDK.
func OrgConfig(base aws.Config, roleARN string) aws.Config {
	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(base), roleARN,
		func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = RoleSessionName
		})

	cfg := base.Copy()
	cfg.Credentials = aws.NewCredentialsCache(provider)
	return cfg
}
