package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
)

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Scan all vendor files for governance and compliance drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := manager.Audit()
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if len(report.Files) == 0 {
				fmt.Println("No vendor files found")
				return nil
			}

			t := cli.NewTable("VENDOR", "COMPANY", "GOVERNANCE", "STORED", "COMPUTED", "OVERRIDES", "STATUS")
			for _, f := range report.Files {
				status := cli.Green("ok")
				if f.NeedsRepair {
					status = cli.Yellow("needs repair")
				}
				gov := "yes"
				if !f.HasGovernance {
					gov = cli.Red("no")
				}
				t.Row(f.VendorID, f.CompanyName, gov,
					fmt.Sprintf("%.2f", f.StoredScore),
					fmt.Sprintf("%.2f", f.ComputedScore),
					fmt.Sprintf("%d", f.OverrideCount),
					status)
			}
			t.Flush()

			fmt.Printf("\n%d of %d files need repair\n", report.NeedsRepair, len(report.Files))
			return nil
		},
	}
}
