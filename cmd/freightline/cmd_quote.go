package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/cli"
	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/quote"
	"github.com/freightline-io/freightline/pkg/util"
)

func newQuoteCmd() *cobra.Command {
	var (
		weight       float64
		invoiceValue float64
		customerID   string
		boxes        int
		length       float64
		breadth      float64
		height       float64
		showHidden   bool
	)

	cmd := &cobra.Command{
		Use:   "quote <from-pincode> <to-pincode>",
		Short: "Price a route across all serviceable vendors",
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

			req := &quote.Request{
				From:         from,
				To:           to,
				ActualWeight: weight,
				InvoiceValue: invoiceValue,
				CustomerID:   customerID,
			}
			if boxes > 0 {
				req.Legacy = &model.LegacyDims{
					NoOfBoxes: boxes,
					Length:    length,
					Width:     breadth,
					Height:    height,
				}
			}

			resp, err := dispatcher.Quote(context.Background(), req)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if len(resp.Quotes) == 0 {
				fmt.Println(resp.Note)
				return nil
			}

			printQuotes(resp.Quotes)
			if showHidden && len(resp.Hidden) > 0 {
				fmt.Println("\nHidden vendors:")
				printQuotes(resp.Hidden)
			}
			if resp.Note != "" {
				fmt.Println(cli.Yellow(resp.Note))
			}
			fmt.Printf("\n%d vendors processed, %d priced, %d errors in %s\n",
				resp.Stats.VendorsProcessed, resp.Stats.ValidResults, resp.Stats.Errors, resp.Stats.Duration)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&weight, "weight", "w", 0, "actual weight in kg")
	cmd.Flags().Float64Var(&invoiceValue, "invoice", 0, "declared invoice value")
	cmd.Flags().StringVar(&customerID, "customer", "", "customer ID for tied-up pricing")
	cmd.Flags().IntVar(&boxes, "boxes", 0, "number of boxes (with --length/--breadth/--height)")
	cmd.Flags().Float64Var(&length, "length", 0, "box length in cm")
	cmd.Flags().Float64Var(&breadth, "breadth", 0, "box breadth in cm")
	cmd.Flags().Float64Var(&height, "height", 0, "box height in cm")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "also show hidden vendors")
	return cmd
}

func printQuotes(quotes []*model.Quote) {
	t := cli.NewTable("#", "VENDOR", "TIER", "TOTAL", "CHARGEABLE", "RATING")
	for i, q := range quotes {
		t.Row(
			fmt.Sprintf("%d", i+1),
			q.CompanyName,
			q.Tier,
			fmt.Sprintf("%d", q.Total),
			fmt.Sprintf("%.2f", q.ChargeableWeight),
			fmt.Sprintf("%.1f", q.Rating),
		)
	}
	t.Flush()
}

func parsePincode(s string) (int, error) {
	pin, err := strconv.Atoi(s)
	if err != nil || len(s) != 6 {
		return 0, util.NewInputError("pincode", fmt.Sprintf("%q is not a 6-digit pincode", s))
	}
	return pin, nil
}
