package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/cli"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/progress"
	"github.com/nicholasgasior/ssopipeline/internal/reconcile"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// permissionSetsDeps holds the injectable dependencies for the
// permission-sets command.
type permissionSetsDeps struct {
	index       awsapi.IndexAPI
	reconciler  awsapi.ReconcileAPI
	instanceARN string
	relayState  string
}

// newPermissionSetsCommand creates the production permission-sets command.
func newPermissionSetsCommand() *cobra.Command {
	return newPermissionSetsCommandWithDeps(nil)
}

// newPermissionSetsCommandWithDeps creates the permission-sets command with
// explicit dependencies for testing.
func newPermissionSetsCommandWithDeps(deps *permissionSetsDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission-sets",
		Short: "Reconcile permission sets against the repository templates",
		Long:  "Reconcile the live tenant's pipeline-owned permission sets against the repository templates: create missing ones, converge existing ones facet by facet, and delete owned orphans.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps != nil {
				return runPermissionSets(cmd, deps)
			}
			clients := awsClientsFromContext(cmd.Context())
			if clients == nil {
				return fmt.Errorf("AWS clients not configured")
			}
			return runPermissionSets(cmd, &permissionSetsDeps{
				index:       clients.ssoClient,
				reconciler:  clients.ssoClient,
				instanceARN: clients.instance.ARN,
				relayState:  clients.pipelineConfig.RelayState,
			})
		},
	}

	cmd.Flags().String("ps-folder", "", "Folder containing permission set templates (default from config)")

	return cmd
}

// runPermissionSets loads the templates, indexes the owned live state, and
// converges the tenant.
func runPermissionSets(cmd *cobra.Command, deps *permissionSetsDeps) error {
	ctx := cmd.Context()
	cliCtx := cli.FromCommand(cmd)

	psFolder, _ := cmd.Flags().GetString("ps-folder")
	if psFolder == "" {
		cfg, err := loadPipelineConfig(cmd)
		if err != nil {
			return err
		}
		psFolder = cfg.PermissionSetFolder
	}

	log := logging.New(cmd.ErrOrStderr(), cliCtx != nil && cliCtx.Debug)
	steps := progress.New(cmd.ErrOrStderr(), cliCtx == nil || !cliCtx.Verbose)

	steps.Step("Loading permission set templates from %s...", psFolder)
	sets, err := templates.LoadPermissionSets(psFolder)
	if err != nil {
		return err
	}

	steps.Step("Indexing pipeline-owned permission sets...")
	indexer := reconcile.NewIndexer(deps.index, deps.instanceARN, log)
	live, err := indexer.OwnedPermissionSets(ctx)
	if err != nil {
		return err
	}

	steps.Step("Reconciling %d permission sets...", len(sets))
	r := reconcile.NewReconciler(deps.reconciler, deps.instanceARN, deps.relayState, log)
	if err := r.Reconcile(ctx, sets, live); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d permission sets.\n", len(sets))
	return nil
}
