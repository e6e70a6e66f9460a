package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandforge/internal/logging"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect the persisted workflow document",
	}
	cmd.AddCommand(newWorkflowShowCommand(ctx))
	cmd.AddCommand(newWorkflowClearCommand(ctx))
	return cmd
}

func newWorkflowShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show per-domain records of the active instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.workflowStore(logging.NewNop())
			if err != nil {
				return err
			}
			doc, err := store.Read()
			if err != nil {
				return err
			}
			instanceID, instance, ok := doc.ActiveInstance()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Workflow document is empty.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Instance %s:\n", instanceID)
			fmt.Fprintln(cmd.OutOrStdout(), renderInstance(instance))
			return nil
		},
	}
}

func newWorkflowClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the workflow document, abandoning the active instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.workflowStore(logging.NewNop())
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Workflow document cleared. Pending delegated jobs are abandoned.")
			return nil
		},
	}
}
