package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/cli"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
	"github.com/nicholasgasior/ssopipeline/internal/validate"
)

// validateDeps holds the injectable dependencies for the validate command.
type validateDeps struct {
	analyzer awsapi.ValidatePolicyAPI
	iam      awsapi.GetPolicyAPI
}

// validateResultJSON is the machine-readable outcome of a validate run.
type validateResultJSON struct {
	Valid          bool   `json:"valid"`
	PermissionSets int    `json:"permission_sets"`
	Assignments    int    `json:"assignments"`
	Error          string `json:"error,omitempty"`
}

// newValidateCommand creates the production validate command, wired with real
// AWS clients in PersistentPreRunE.
func newValidateCommand() *cobra.Command {
	return newValidateCommandWithDeps(nil)
}

// newValidateCommandWithDeps creates the validate command with explicit
// dependencies for testing. When deps is nil, clients come from the command
// context.
func newValidateCommandWithDeps(deps *validateDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate permission set and assignment templates",
		Long:  "Validate the repository templates: unique names and SIDs, custom policy analysis via Access Analyzer, and managed policy ARN resolution via IAM. No live state is modified.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps != nil {
				return runValidate(cmd, deps)
			}
			clients := awsClientsFromContext(cmd.Context())
			if clients == nil {
				return fmt.Errorf("AWS clients not configured")
			}
			return runValidate(cmd, &validateDeps{
				analyzer: clients.analyzerClient,
				iam:      clients.iamClient,
			})
		},
	}

	cmd.Flags().String("ps-folder", "", "Folder containing permission set templates")
	cmd.Flags().String("assignments-folder", "", "Folder containing assignment templates")
	_ = cmd.MarkFlagRequired("ps-folder")
	_ = cmd.MarkFlagRequired("assignments-folder")

	return cmd
}

// runValidate loads both template catalogs and runs the static checks.
func runValidate(cmd *cobra.Command, deps *validateDeps) error {
	ctx := cmd.Context()
	cliCtx := cli.FromCommand(cmd)
	jsonOut := cliCtx != nil && cliCtx.JSON

	psFolder, _ := cmd.Flags().GetString("ps-folder")
	assignmentsFolder, _ := cmd.Flags().GetString("assignments-folder")

	log := logging.New(cmd.ErrOrStderr(), cliCtx != nil && cliCtx.Debug)

	sets, err := templates.LoadPermissionSets(psFolder)
	if err != nil {
		return reportValidateResult(cmd, jsonOut, 0, 0, err)
	}
	assignments, err := templates.LoadAssignments(assignmentsFolder)
	if err != nil {
		return reportValidateResult(cmd, jsonOut, len(sets), 0, err)
	}

	v := validate.New(deps.analyzer, deps.iam, log)
	err = v.Validate(ctx, sets, assignments)
	return reportValidateResult(cmd, jsonOut, len(sets), len(assignments), err)
}

// reportValidateResult prints the outcome in plain or JSON form. In JSON mode
// a failure is reported on stdout and the command exits silently non-zero.
func reportValidateResult(cmd *cobra.Command, jsonOut bool, setCount, assignmentCount int, verr error) error {
	if jsonOut {
		result := validateResultJSON{
			Valid:          verr == nil,
			PermissionSets: setCount,
			Assignments:    assignmentCount,
		}
		if verr != nil {
			result.Error = verr.Error()
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if verr != nil {
			return silentExitError{}
		}
		return nil
	}

	if verr != nil {
		return fmt.Errorf("validation failed: %w", verr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Templates are valid: %d permission sets, %d assignments.\n", setCount, assignmentCount)
	return nil
}
