package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/cli"
	"github.com/nicholasgasior/ssopipeline/internal/expand"
	"github.com/nicholasgasior/ssopipeline/internal/identity"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/progress"
	"github.com/nicholasgasior/ssopipeline/internal/reconcile"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// assignmentsDeps holds the injectable dependencies for the assignments
// command.
type assignmentsDeps struct {
	index           awsapi.IndexAPI
	org             awsapi.OrganizationsAPI
	ids             awsapi.IdentityStoreAPI
	uploader        awsapi.PutObjectAPI
	instanceARN     string
	identityStoreID string
}

// newAssignmentsCommand creates the production assignments command.
func newAssignmentsCommand() *cobra.Command {
	return newAssignmentsCommandWithDeps(nil)
}

// newAssignmentsCommandWithDeps creates the assignments command with explicit
// dependencies for testing. The Organizations client always runs with the
// assumed management-account role, so in production it is built here rather
// than in PersistentPreRunE.
func newAssignmentsCommandWithDeps(deps *assignmentsDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "Expand assignment templates into resolved per-account records",
		Long:  "Expand the repository assignment templates: resolve principals against the identity store, expand symbolic targets against the organization tree, and write the flat assignments file for the downstream applier.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps != nil {
				return runAssignments(cmd, deps)
			}
			clients := awsClientsFromContext(cmd.Context())
			if clients == nil {
				return fmt.Errorf("AWS clients not configured")
			}

			orgRole, _ := cmd.Flags().GetString("org_role")
			orgCfg := identity.OrgConfig(clients.baseConfig, orgRole)

			return runAssignments(cmd, &assignmentsDeps{
				index:           clients.ssoClient,
				org:             organizations.NewFromConfig(orgCfg),
				ids:             clients.idsClient,
				uploader:        clients.s3Client,
				instanceARN:     clients.instance.ARN,
				identityStoreID: clients.instance.IdentityStoreID,
			})
		},
	}

	cmd.Flags().String("org_role", "", "ARN of the management-account role to assume for Organizations calls")
	cmd.Flags().String("mgmt_account", "", "Management account ID, excluded from every expansion")
	cmd.Flags().String("assignments-folder", "", "Folder containing assignment templates (default from config)")
	cmd.Flags().String("output", "", "Path of the resolved assignments file (default from config)")
	cmd.Flags().String("upload-bucket", "", "S3 bucket to upload the resolved assignments file to")
	_ = cmd.MarkFlagRequired("org_role")
	_ = cmd.MarkFlagRequired("mgmt_account")

	return cmd
}

// runAssignments expands the repository assignments and writes the resolved
// artifact, optionally publishing it to S3.
func runAssignments(cmd *cobra.Command, deps *assignmentsDeps) error {
	ctx := cmd.Context()
	cliCtx := cli.FromCommand(cmd)

	mgmtAccount, _ := cmd.Flags().GetString("mgmt_account")
	assignmentsFolder, _ := cmd.Flags().GetString("assignments-folder")
	output, _ := cmd.Flags().GetString("output")
	uploadBucket, _ := cmd.Flags().GetString("upload-bucket")

	if assignmentsFolder == "" || output == "" {
		cfg, err := loadPipelineConfig(cmd)
		if err != nil {
			return err
		}
		if assignmentsFolder == "" {
			assignmentsFolder = cfg.AssignmentsFolder
		}
		if output == "" {
			output = cfg.OutputFile
		}
	}

	log := logging.New(cmd.ErrOrStderr(), cliCtx != nil && cliCtx.Debug)
	steps := progress.New(cmd.ErrOrStderr(), cliCtx == nil || !cliCtx.Verbose)

	steps.Step("Loading assignment templates from %s...", assignmentsFolder)
	assignments, err := templates.LoadAssignments(assignmentsFolder)
	if err != nil {
		return err
	}

	steps.Step("Indexing pipeline-owned permission sets...")
	indexer := reconcile.NewIndexer(deps.index, deps.instanceARN, log)
	live, err := indexer.OwnedPermissionSets(ctx)
	if err != nil {
		return err
	}

	steps.Step("Expanding %d assignments...", len(assignments))
	expander := expand.NewExpander(
		expand.NewTargetResolver(deps.org, log),
		expand.NewPrincipalResolver(deps.ids, deps.identityStoreID),
		live,
		mgmtAccount,
		log,
	)
	resolved, err := expander.Expand(ctx, assignments)
	if err != nil {
		return err
	}

	if err := expand.WriteFile(output, resolved); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d resolved assignments to %s.\n", len(resolved), output)

	if uploadBucket != "" {
		steps.Step("Uploading %s to s3://%s...", output, uploadBucket)
		if err := uploadArtifact(cmd, deps.uploader, log, uploadBucket, output); err != nil {
			return err
		}
	}
	return nil
}

// uploadArtifact publishes the resolved assignments file to the artifact
// bucket under its base name.
func uploadArtifact(cmd *cobra.Command, uploader awsapi.PutObjectAPI, log *logging.Logger, bucket, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}

	key := filepath.Base(path)
	start := time.Now()
	_, err = uploader.PutObject(cmd.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	log.APICall("s3", "PutObject", time.Since(start), err)
	if err != nil {
		return awsapi.Classify(fmt.Sprintf("upload %s to bucket %s", key, bucket), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s.\n", bucket, key)
	return nil
}
