package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"brandforge/internal/logging"
	"brandforge/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and the active workflow instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledgerStore, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer ledgerStore.Close()

			stats, err := ledgerStore.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Total", "Active", "Completed"},
				[][]string{{
					strconv.Itoa(stats.Total),
					strconv.Itoa(stats.Active),
					strconv.Itoa(stats.Completed),
				}},
				0, 1, 2,
			))

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
				fmt.Fprintln(cmd.OutOrStdout(), "No active workflow instance.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Instance %s:\n", instanceID)
			fmt.Fprintln(cmd.OutOrStdout(), renderInstance(instance))
			return nil
		},
	}
}

func renderInstance(instance workflow.Instance) string {
	rows := make([][]string, 0, len(instance))
	for _, domain := range workflow.PipelineOrder() {
		rec, ok := instance[domain]
		if !ok || rec == nil {
			rows = append(rows, []string{string(domain), "-", "", ""})
			continue
		}
		jobRef := ""
		if rec.JobRef != nil {
			jobRef = strconv.FormatInt(*rec.JobRef, 10)
		}
		completed := ""
		if rec.CompletedAt != nil {
			completed = rec.CompletedAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{string(domain), string(rec.Status), jobRef, completed})
	}
	return renderTable([]string{"Domain", "Status", "Job", "Completed"}, rows, 2)
}
