package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/audit"
	"github.com/freightline-io/freightline/pkg/cli"
)

func newLogCmd() *cobra.Command {
	var (
		vendor    string
		operation string
		editor    string
		failed    bool
		since     time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the operations trail",
		Long: `Log lists control-plane events recorded against vendor files.

  utsfctl log                        # most recent events
  utsfctl log --vendor fasttrack     # one vendor's history
  utsfctl log --op rollback --failed # failed rollbacks only
  utsfctl log --since 24h            # last day`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := audit.Filter{
				Vendor:      vendor,
				Operation:   operation,
				Editor:      editor,
				FailureOnly: failed,
			}
			if since > 0 {
				filter.StartTime = time.Now().Add(-since)
			}

			events, err := opsLogger.Query(filter)
			if err != nil {
				return fmt.Errorf("reading operations trail: %w", err)
			}
			// The trail is append-only; keep the newest entries.
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			if len(events) == 0 {
				fmt.Println("no matching events")
				return nil
			}

			t := cli.NewTable("TIME", "EDITOR", "VENDOR", "OPERATION", "STATUS", "SUMMARY")
			for _, e := range events {
				status := cli.Green("ok")
				if !e.Success {
					status = cli.Red("failed")
				}
				summary := e.ChangeSummary
				if e.Error != "" {
					summary = e.Error
				}
				t.Row(e.Timestamp.Format("2006-01-02 15:04:05"), e.Editor, e.Vendor, e.Operation, status, summary)
			}
			t.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "Only events for this vendor")
	cmd.Flags().StringVar(&operation, "op", "", "Only events for this operation (repair, rollback)")
	cmd.Flags().StringVar(&editor, "editor-id", "", "Only events recorded by this editor")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only failed operations")
	cmd.Flags().DurationVar(&since, "since", 0, "Only events newer than this age (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Most recent events to show (0 for all)")
	return cmd
}
