package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/cli"
	"github.com/nicholasgasior/ssopipeline/internal/export"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
)

// exportDeps holds the injectable dependencies for the export command.
type exportDeps struct {
	client      awsapi.ExportAPI
	instanceARN string
}

// newExportCommand creates the production export command.
func newExportCommand() *cobra.Command {
	return newExportCommandWithDeps(nil)
}

// newExportCommandWithDeps creates the export command with explicit
// dependencies for testing.
func newExportCommandWithDeps(deps *exportDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export live permission sets as repository templates",
		Long:  "Export every permission set in the tenant into repository template form, one JSON file per permission set. Useful when onboarding an existing tenant into the pipeline.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps != nil {
				return runExport(cmd, deps)
			}
			clients := awsClientsFromContext(cmd.Context())
			if clients == nil {
				return fmt.Errorf("AWS clients not configured")
			}
			return runExport(cmd, &exportDeps{
				client:      clients.ssoClient,
				instanceARN: clients.instance.ARN,
			})
		},
	}

	cmd.Flags().String("output-folder", "exported", "Folder to write the exported templates to")

	return cmd
}

func runExport(cmd *cobra.Command, deps *exportDeps) error {
	ctx := cmd.Context()
	cliCtx := cli.FromCommand(cmd)

	outputFolder, _ := cmd.Flags().GetString("output-folder")
	log := logging.New(cmd.ErrOrStderr(), cliCtx != nil && cliCtx.Debug)

	e := export.NewExporter(deps.client, deps.instanceARN, log)
	count, err := e.Export(ctx, outputFolder)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d permission sets to %s.\n", count, outputFolder)
	return nil
}
