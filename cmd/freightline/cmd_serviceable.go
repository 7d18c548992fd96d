package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
	"github.com/freightline-io/freightline/pkg/util"
)

func newServiceableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serviceable <vendor-id> <pincode-spec>",
		Short: "Check whether a vendor serves one or more pincodes",
		Long: `Serviceable checks a vendor's coverage for a pincode specification.
The spec accepts single pincodes, ranges, and comma-separated mixes:

  freightline serviceable fasttrack 110001
  freightline serviceable fasttrack 110001-110005,110009`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pins, err := util.ExpandRangeSpec(args[1])
			if err != nil {
				return err
			}
			if len(pins) == 0 {
				return util.NewInputError("pincode-spec", "must name at least one pincode")
			}
			for _, pin := range pins {
				if pin < 100000 || pin > 999999 {
					return util.NewInputError("pincode-spec", fmt.Sprintf("%d is not a 6-digit pincode", pin))
				}
			}

			sn := svc.Snapshot()
			if _, ok := sn.VendorFile(args[0]); !ok {
				return fmt.Errorf("no serviceability file for vendor %q", args[0])
			}

			served := 0
			for _, pin := range pins {
				if sn.IsServiceable(args[0], pin) {
					served++
					zone, _ := sn.EffectiveZone(args[0], pin)
					fmt.Printf("%s %s serves %d (zone %s)\n", cli.Green("YES"), args[0], pin, zone)
				} else {
					fmt.Printf("%s %s does not serve %d\n", cli.Red("NO"), args[0], pin)
				}
			}
			if len(pins) > 1 {
				fmt.Printf("\n%d of %d serviceable\n", served, len(pins))
			}
			return nil
		},
	}
}
