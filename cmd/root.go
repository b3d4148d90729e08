package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/cli"
)

// NewRootCommand creates and returns the root cobra command with all global
// persistent flags registered. Subcommands are attached here.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ssopipeline",
		Short:         "Manage IAM Identity Center permission sets and assignments from templates",
		Long:          "Manage IAM Identity Center permission sets and account assignments declaratively from JSON templates stored in the repository.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := cli.NewCLIContext(cmd)
			ctx := cli.WithContext(context.Background(), cliCtx)

			if commandNeedsAWS(cmd.Name()) {
				clients, err := initAWSClients(ctx, cliCtx.Debug)
				if err != nil {
					return err
				}
				ctx = contextWithAWSClients(ctx, clients)
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Show progress steps")
	rootCmd.PersistentFlags().Bool("debug", false, "Show AWS SDK details")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newPermissionSetsCommand())
	rootCmd.AddCommand(newAssignmentsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newAdoptCommand())

	return rootCmd
}

// Execute creates the root command and runs it. Called from main.
func Execute() error {
	return NewRootCommand().Execute()
}
