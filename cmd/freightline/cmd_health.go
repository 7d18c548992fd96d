package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
	"github.com/freightline-io/freightline/pkg/utsf"
)

const healthPadWidth = 36

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			healthy := true
			sn := svc.Snapshot()

			fmt.Printf("%s %s\n", cli.DotPad("master pincode catalog", healthPadWidth),
				cli.Green(fmt.Sprintf("ok (%d pincodes, %d zones)", sn.MPC.Size(), len(sn.MPC.Zones()))))

			ids := sn.VendorIDs()
			invalid := 0
			for _, id := range ids {
				f, ok := sn.VendorFile(id)
				if !ok {
					continue
				}
				if err := f.Validate(); err != nil {
					invalid++
					fmt.Printf("%s %s\n", cli.DotPad("  "+id, healthPadWidth), cli.Red(err.Error()))
					continue
				}
				for zone, cov := range f.Serviceability {
					if phantoms := utsf.PhantomPincodes(cov, sn.MPC.Contains); len(phantoms) > 0 {
						invalid++
						fmt.Printf("%s %s\n", cli.DotPad("  "+id, healthPadWidth),
							cli.Red(fmt.Sprintf("zone %s lists %d pincodes unknown to the master catalog", zone, len(phantoms))))
						break
					}
				}
			}
			if invalid == 0 {
				fmt.Printf("%s %s\n", cli.DotPad("serviceability files", healthPadWidth),
					cli.Green(fmt.Sprintf("ok (%d vendors)", len(ids))))
			} else {
				healthy = false
				fmt.Printf("%s %s\n", cli.DotPad("serviceability files", healthPadWidth),
					cli.Red(fmt.Sprintf("%d of %d invalid", invalid, len(ids))))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				healthy = false
				fmt.Printf("%s %s\n", cli.DotPad("redis "+cfg.RedisAddr, healthPadWidth), cli.Red(err.Error()))
			} else {
				fmt.Printf("%s %s\n", cli.DotPad("redis "+cfg.RedisAddr, healthPadWidth), cli.Green("ok"))
			}

			if !healthy {
				os.Exit(1)
			}
			return nil
		},
	}
}
