// Utsfctl - serviceability file control tool
//
// A CLI for operating on UTSF vendor serviceability files:
//   - audit: scan all files for governance and compliance drift
//   - compare: per-zone diff of one vendor against the master catalog
//   - repair: migrate one vendor file to the current format
//   - repair-all: repair every file in the directory
//   - rollback: restore a vendor file to a prior logged version
//   - log: list events from the operations trail
//
// Every mutating verb appends a versioned update entry to the file and
// an event to the operations trail.
//
// Exit codes:
//
//	0  success
//	1  usage or internal error
//	2  vendor file not found
//	3  rollback version index out of bounds
package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/audit"
	"github.com/freightline-io/freightline/pkg/pincode"
	"github.com/freightline-io/freightline/pkg/settings"
	"github.com/freightline-io/freightline/pkg/util"
	"github.com/freightline-io/freightline/pkg/utsf"
	"github.com/freightline-io/freightline/pkg/version"
)

var (
	utsfDir     string // -D, --dir
	pincodeFile string // -P, --pincodes
	editorID    string // -e, --editor
	verbose     bool   // -v, --verbose
	jsonOutput  bool   // --json

	userSettings *settings.Settings
	manager      *utsf.Manager
	opsLogger    audit.Logger
)

func main() {
	err := rootCmd.Execute()
	if opsLogger != nil {
		opsLogger.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if strings.Contains(err.Error(), "unknown command") {
			fmt.Fprint(os.Stderr, rootCmd.UsageString())
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the documented process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, util.ErrNotFound):
		return 2
	case errors.Is(err, utsf.ErrVersionIndex):
		return 3
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:               "utsfctl",
	Short:             "UTSF serviceability file control tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Utsfctl audits, repairs, and rolls back UTSF vendor serviceability files.

  utsfctl audit                      # scan all files for drift
  utsfctl compare fasttrack          # per-zone diff against master catalog
  utsfctl repair fasttrack           # migrate one file to current format
  utsfctl repair-all                 # migrate every file
  utsfctl rollback fasttrack 2       # restore version at update index 2
  utsfctl log --vendor fasttrack     # operations trail for one vendor`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if utsfDir == "" {
			utsfDir = userSettings.GetUTSFDir()
		}
		if pincodeFile == "" {
			pincodeFile = userSettings.GetPincodeFile()
		}
		if editorID == "" {
			editorID = defaultEditor()
		}

		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		opsPath := userSettings.AuditLog
		if opsPath == "" {
			opsPath = utsfDir + "/ops.log"
		}
		logger, err := audit.NewFileLogger(opsPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize operations trail: %v", err)
			opsLogger = audit.NopLogger{}
		} else {
			opsLogger = logger
		}

		// The log verb only reads the trail.
		if cmd.Name() == "log" {
			return nil
		}

		mpc, err := pincode.Load(pincodeFile)
		if err != nil {
			return fmt.Errorf("loading master pincode catalog: %w", err)
		}

		manager = utsf.NewManager(utsf.NewStore(utsfDir), mpc).WithOpsLog(opsLogger)

		return nil
	},
}

// defaultEditor resolves the recorded editor identity: settings first,
// then the OS user.
func defaultEditor() string {
	if userSettings != nil && userSettings.Editor != "" {
		return userSettings.Editor
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&utsfDir, "dir", "D", "", "UTSF file directory")
	rootCmd.PersistentFlags().StringVarP(&pincodeFile, "pincodes", "P", "", "Master pincode catalog path")
	rootCmd.PersistentFlags().StringVarP(&editorID, "editor", "e", "", "Editor identity recorded on changes (default: OS user)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddCommand(
		newAuditCmd(),
		newCompareCmd(),
		newRepairCmd(),
		newRepairAllCmd(),
		newRollbackCmd(),
		newLogCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("utsfctl %s\n", version.Info())
			},
		},
	)
}
