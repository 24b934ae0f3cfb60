package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bellweaver-backend/internal/components/chrono"
	"bellweaver-backend/internal/components/configutil"
	"bellweaver-backend/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	forceMock  *bool
)

// environment is what every subcommand works with, it is set up once the
// flags are parsed.
type environment struct {
	config Config
	time   chrono.TimeAPI
	tel    telemetry.API
}

var env environment

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, <name>.local.json5 is merged over it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
	forceMock = rootCmd.PersistentFlags().Bool("mock", false, "Use the mock client instead of a real portal.")
}

var rootCmd = &cobra.Command{
	Use:           "compass-cli",
	Short:         "compass-cli fetches calendar events from a Compass school portal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := configutil.ReadConfig[Config](*configPath)
		if errors.Is(err, os.ErrNotExist) && *forceMock {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("read config %s: %w", *configPath, err)
		}
		cfg, err = cfg.withDefaults(*forceMock)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		timeApi, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}

		env = environment{
			config: cfg,
			time:   timeApi,
			tel:    telemetry.SlogAPI{},
		}
		return nil
	},
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
