package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
)

func newCompareCmd() *cobra.Command {
	var showMissing bool

	cmd := &cobra.Command{
		Use:   "compare <vendor-id>",
		Short: "Diff one vendor's coverage against the master catalog, per zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := manager.Compare(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Printf("Vendor: %s\n\n", report.VendorID)
			t := cli.NewTable("ZONE", "MASTER", "SERVED", "MISSING")
			for _, z := range report.Zones {
				missing := fmt.Sprintf("%d", z.MissingCount)
				if z.MissingCount > 0 {
					missing = cli.Yellow(missing)
				}
				t.Row(z.Zone, fmt.Sprintf("%d", z.MasterCount), fmt.Sprintf("%d", z.ServedCount), missing)
			}
			t.Flush()

			if showMissing {
				for _, z := range report.Zones {
					if z.MissingCount == 0 {
						continue
					}
					fmt.Printf("\n%s missing pincodes:\n", z.Zone)
					for _, pin := range z.Missing {
						fmt.Printf("  %d\n", pin)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMissing, "missing", false, "list the missing pincodes per zone")
	return cmd
}
