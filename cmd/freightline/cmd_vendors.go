package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
)

func newVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors <from-pincode> <to-pincode>",
		Short: "List vendors serving a route",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePincode(args[0])
			if err != nil {
				return err
			}
			to, err := parsePincode(args[1])
			if err != nil {
				return err
			}

			route, err := cat.Candidates(context.Background(), from, to)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(route)
			}

			if len(route.Vendors) == 0 {
				fmt.Printf("No vendor serves %d -> %d\n", from, to)
				return nil
			}

			fmt.Printf("Route %d (%s) -> %d (%s)\n\n", from, route.FromZone, to, route.ToZone)
			t := cli.NewTable("VENDOR", "COMPANY", "TYPE", "RATING", "ODA")
			for _, v := range route.Vendors {
				oda := ""
				if v.DestIsOda {
					oda = "yes"
				}
				t.Row(v.ID, v.CompanyName, v.Type, fmt.Sprintf("%.1f", v.Rating), oda)
			}
			t.Flush()
			return nil
		},
	}
}
