package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"brandforge/internal/ledger"
)

func newUnitCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Manage work units in the ledger",
	}
	cmd.AddCommand(newUnitAddCommand(ctx))
	cmd.AddCommand(newUnitListCommand(ctx))
	cmd.AddCommand(newUnitShowCommand(ctx))
	cmd.AddCommand(newUnitRemoveCommand(ctx))
	return cmd
}

func newUnitAddCommand(ctx *commandContext) *cobra.Command {
	var (
		unitID string
		brief  string
		owner  string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Submit a new brand brief for pipeline processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			if strings.TrimSpace(unitID) == "" {
				unitID = uuid.NewString()
			}
			unit, err := store.AddUnit(cmd.Context(), unitID, args[0], brief, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added unit %s (%s)\n", unit.UnitID, unit.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&unitID, "id", "", "External unit identifier (generated when omitted)")
	cmd.Flags().StringVar(&brief, "brief", "", "Brand brief for the strategy agent")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner wallet address for IP registration")
	return cmd
}

func newUnitListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []ledger.UnitStatus
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				statuses = append(statuses, ledger.UnitStatus(trimmed))
			}
			units, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(units) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No work units.")
				return nil
			}

			rows := make([][]string, 0, len(units))
			for _, unit := range units {
				rows = append(rows, []string{
					unit.UnitID,
					unit.Name,
					string(unit.Status),
					unit.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Status", "Created"}, rows,
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (active, completed)")
	return cmd
}

func newUnitShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a work unit and its completion summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			unit, err := store.GetUnit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if unit == nil {
				return fmt.Errorf("unit %q not found", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", unit.UnitID)
			fmt.Fprintf(out, "Name:    %s\n", unit.Name)
			fmt.Fprintf(out, "Status:  %s\n", unit.Status)
			fmt.Fprintf(out, "Owner:   %s\n", unit.OwnerAddress)
			fmt.Fprintf(out, "Brief:   %s\n", unit.Brief)
			fmt.Fprintf(out, "Created: %s\n", unit.CreatedAt.Format("2006-01-02 15:04:05"))
			if unit.CompletedAt != nil {
				fmt.Fprintf(out, "Completed: %s\n", unit.CompletedAt.Format("2006-01-02 15:04:05"))
			}
			if unit.SummaryJSON != "" {
				var summary ledger.Summary
				if err := json.Unmarshal([]byte(unit.SummaryJSON), &summary); err == nil {
					fmt.Fprintln(out, "Summary:")
					fmt.Fprintf(out, "  Narrative:  %s\n", summary.Narrative)
					fmt.Fprintf(out, "  Go to market: %s\n", summary.GoToMarket)
					fmt.Fprintf(out, "  Avatar: %s (%s)\n", summary.AvatarURL, summary.AvatarRegistration)
					fmt.Fprintf(out, "  Video:  %s (%s)\n", summary.VideoURL, summary.VideoRegistration)
					fmt.Fprintf(out, "  Meme:   %s (%s)\n", summary.MemeURL, summary.MemeRegistration)
				}
			}
			return nil
		},
	}
}

func newUnitRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a work unit from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("unit %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed unit %s\n", args[0])
			return nil
		},
	}
}
