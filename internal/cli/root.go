package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-strategist/internal/config"
	"options-strategist/internal/engine"
	"options-strategist/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Engine *engine.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Engine: engine.New(cfg.Engine, logger),
	}

	rootCmd := &cobra.Command{
		Use:   "strategist",
		Short: "Options Strategist - profit/loss and probability analytics for options strategies",
		Long: `Options Strategist computes profit/loss profiles, probability-of-profit
statistics and option pricing analytics for multi-leg options and stock
strategies.

Strategies are described in a YAML or JSON file; see 'strategist help evaluate'
for the file format. Pricing models include Black-Scholes, the
Cox-Ross-Rubinstein binomial tree and the Bjerksund-Stensland American
approximation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-strategist)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newEvaluateCmd(app))
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newPayoffCmd(app))
	rootCmd.AddCommand(newExportCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
				return
			}
			output.Printf("strategist %s\n", Version)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(app.Config)
				return
			}
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			output.Info("Config file: %s", filepath.Join(dir, "config.toml"))
			output.Bold("Engine")
			output.Printf("  days_in_year:   %v\n", app.Config.Engine.DaysInYear)
			output.Printf("  grid_step:      %v\n", app.Config.Engine.GridStep)
			output.Printf("  binomial_steps: %d\n", app.Config.Engine.BinomialSteps)
			output.Printf("  country:        %s\n", app.Config.Engine.Country)
			output.Printf("  workers:        %d\n", app.Config.Engine.Workers)
			output.Bold("Logging")
			output.Printf("  level:   %s\n", app.Config.Logging.Level)
			output.Printf("  console: %v\n", app.Config.Logging.Console)
			output.Printf("  file:    %v\n", app.Config.Logging.File)
		},
	}
}
