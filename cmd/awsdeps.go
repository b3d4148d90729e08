// Package cmd provides CLI commands for ssopipeline.
// This file defines the shared AWS client infrastructure used by
// PersistentPreRunE to initialize SDK clients once and share them
// across subcommands via context.
package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/accessanalyzer"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/config"
	"github.com/nicholasgasior/ssopipeline/internal/identity"
)

// awsClients holds pre-initialized AWS SDK clients, the discovered SSO
// instance, and the resolved caller identity. Created once in
// PersistentPreRunE and stored on the command context.
type awsClients struct {
	ssoClient      *ssoadmin.Client
	idsClient      *identitystore.Client
	analyzerClient *accessanalyzer.Client
	iamClient      *iam.Client
	s3Client       *s3.Client

	// baseConfig is kept so the assignments command can derive a second
	// config with assumed management-role credentials.
	baseConfig aws.Config

	// instance is the SSO instance every SSO Admin call targets.
	instance *awsapi.Instance

	// caller is the ambient identity, logged for run attribution.
	caller *identity.Caller

	// pipelineConfig holds the loaded user preferences for template folders,
	// output file, and the retry ceiling.
	pipelineConfig *config.Config
}

// awsClientsKey is the context key for storing awsClients.
type awsClientsKey struct{}

// awsClientsFromContext retrieves the awsClients from the context.
// Returns nil if no clients have been stored.
func awsClientsFromContext(ctx context.Context) *awsClients {
	v, _ := ctx.Value(awsClientsKey{}).(*awsClients)
	return v
}

// contextWithAWSClients returns a new context carrying the given awsClients.
func contextWithAWSClients(ctx context.Context, clients *awsClients) context.Context {
	return context.WithValue(ctx, awsClientsKey{}, clients)
}

// commandNeedsAWS returns true if the command requires AWS client
// initialization. Commands that operate locally (version, help) return false.
func commandNeedsAWS(cmdName string) bool {
	switch cmdName {
	case "version", "help", "completion":
		return false
	default:
		return true
	}
}

// loadPipelineConfig returns the pipeline config from the command context
// when AWS clients were initialized, loading it from disk otherwise (the
// WithDeps test path has no context clients).
func loadPipelineConfig(cmd *cobra.Command) (*config.Config, error) {
	if clients := awsClientsFromContext(cmd.Context()); clients != nil {
		return clients.pipelineConfig, nil
	}
	return config.Load(config.DefaultConfigDir())
}

// initAWSClients loads the pipeline config and the AWS SDK config with the
// adaptive retryer, creates all SDK clients, discovers the SSO instance, and
// resolves the caller identity. Returns an awsClients struct ready to be
// stored on the command context. With debug set, the SDK logs each request
// and response to stderr.
func initAWSClients(ctx context.Context, debug bool) (*awsClients, error) {
	pipelineCfg, err := config.Load(config.DefaultConfigDir())
	if err != nil {
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRetryer(func() aws.Retryer {
			return awsapi.NewRetryer(pipelineCfg.RetryMaxAttempts)
		}),
	}
	if debug {
		opts = append(opts, awscfg.WithClientLogMode(aws.LogRequest|aws.LogResponseWithBody))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	ssoClient := ssoadmin.NewFromConfig(cfg)
	instance, err := awsapi.DiscoverInstance(ctx, ssoClient)
	if err != nil {
		return nil, err
	}

	resolver := identity.NewResolver(sts.NewFromConfig(cfg))
	caller, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	return &awsClients{
		ssoClient:      ssoClient,
		idsClient:      identitystore.NewFromConfig(cfg),
		analyzerClient: accessanalyzer.NewFromConfig(cfg),
		iamClient:      iam.NewFromConfig(cfg),
		s3Client:       s3.NewFromConfig(cfg),
		baseConfig:     cfg,
		instance:       instance,
		caller:         caller,
		pipelineConfig: pipelineCfg,
	}, nil
}
