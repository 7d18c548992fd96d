package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
	"github.com/freightline-io/freightline/pkg/utsf"
)

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <vendor-id>",
		Short: "Migrate one vendor file to the current format",
		Long: `Repair migrates a vendor serviceability file in place:

  - backfills governance metadata (created, version, update log)
  - forces strict coverage mode
  - promotes stale FULL_ZONE claims to FULL_MINUS_EXCEPT, turning the
    master pincodes their recorded served lists miss into exceptions
  - lifts soft exclusions for pincodes both the master catalog and the
    rebuilt served set contain, and drops soft exclusions already
    shadowed by permanent exceptions
  - recomputes the compliance score

The prior state is captured in an update entry so the change can be
rolled back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := manager.Repair(args[0], editorID)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			printRepairResult(result)
			return nil
		},
	}
}

func newRepairAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair-all",
		Short: "Repair every vendor file in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := manager.RepairAll(editorID)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			t := cli.NewTable("VENDOR", "CHANGES", "PROMOTED", "UNBLOCKED", "COMPLIANCE")
			for _, r := range result.Repaired {
				t.Row(r.VendorID,
					fmt.Sprintf("%d", len(r.Changes)),
					fmt.Sprintf("%d", len(r.PromotedZones)),
					fmt.Sprintf("%d", r.Unblocked),
					fmt.Sprintf("%.2f", r.Compliance))
			}
			t.Flush()

			if len(result.Failed) > 0 {
				ids := make([]string, 0, len(result.Failed))
				for id := range result.Failed {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				fmt.Println()
				for _, id := range ids {
					fmt.Printf("%s %s: %s\n", cli.Red("FAILED"), id, result.Failed[id])
				}
			}

			fmt.Printf("\n%d repaired, %d failed\n", len(result.Repaired), len(result.Failed))
			return nil
		},
	}
}

func printRepairResult(r *utsf.RepairResult) {
	fmt.Printf("Repaired %s\n", cli.Bold(r.VendorID))
	for _, c := range r.Changes {
		fmt.Printf("  - %s\n", c)
	}
	if len(r.PromotedZones) > 0 {
		fmt.Printf("Promoted to FULL_MINUS_EXCEPT: %v\n", r.PromotedZones)
	}
	if r.Unblocked > 0 {
		fmt.Printf("Unblocked %d soft-excluded pincodes\n", r.Unblocked)
	}
	fmt.Printf("Compliance: %.2f\n", r.Compliance)
}
