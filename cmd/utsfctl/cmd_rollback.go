package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/util"
)

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <vendor-id> <version-index>",
		Short: "Restore a vendor file to a prior logged version",
		Long: `Rollback restores the state captured in the update entry at the given
index (0 is the oldest entry). The rollback itself is appended as a new
update entry, so it can in turn be rolled back.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return util.NewInputError("version-index", "must be an integer")
			}

			if err := manager.Rollback(args[0], idx, editorID); err != nil {
				return err
			}

			fmt.Printf("Rolled back %s to version index %d\n", args[0], idx)
			return nil
		},
	}
}
