// Freightline - freight quote engine CLI
//
// A CLI front end for the freightline quote engine:
//   - quote: price a route across all serviceable vendors, ranked
//   - serviceable: check whether a vendor serves a pincode
//   - vendors: list vendors serving a route
//   - health: check data sources (pincode catalog, UTSF files, redis)
//
// Vendor commercial data comes from redis; serviceability comes from
// the UTSF file directory; zones come from the master pincode catalog.
package main

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/freightline-io/freightline/pkg/catalog"
	"github.com/freightline-io/freightline/pkg/config"
	"github.com/freightline-io/freightline/pkg/quote"
	"github.com/freightline-io/freightline/pkg/util"
	"github.com/freightline-io/freightline/pkg/utsf"
	"github.com/freightline-io/freightline/pkg/version"
)

var (
	configPath string // -c, --config
	verbose    bool   // -v, --verbose
	jsonOutput bool   // --json

	cfg        *config.Config
	svc        *utsf.Service
	store      *catalog.RedisStore
	cat        *catalog.Catalog
	pool       *quote.Pool
	dispatcher *quote.Dispatcher
)

func main() {
	err := rootCmd.Execute()
	if pool != nil {
		pool.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "freightline",
	Short:             "Freight quote engine",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Freightline prices freight routes across serviceable vendors.

  freightline quote 110001 400001 --weight 120
  freightline serviceable fasttrack 110001
  freightline vendors 110001 400001
  freightline health`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		svc, err = utsf.NewService(cfg.UTSFDir, cfg.PincodeFile)
		if err != nil {
			return fmt.Errorf("loading serviceability data: %w", err)
		}

		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		store = catalog.NewRedisStore(client)
		cat = catalog.New(store, svc)

		pool = quote.NewPool(cfg.Workers)
		dispatcher = quote.NewDispatcher(cat, pool, cfg.BatchMin, cfg.Timeout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "freightline.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddCommand(
		newQuoteCmd(),
		newServiceableCmd(),
		newVendorsCmd(),
		newHealthCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("freightline %s\n", version.Info())
			},
		},
	)
}
