// Command worldsim runs the world event engine as a service, replays it
// offline, or prints a forecast.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	"github.com/randalmurphal/worldevents/pkg/worldevents/catalog"
	"github.com/randalmurphal/worldevents/pkg/worldevents/config"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

var rootCmd = &cobra.Command{
	Use:   "worldsim",
	Short: "Simulate disruptions to a global shipping network",
	Long: `worldsim generates weather, political, economic and other disruption events
against a catalog of ports and routes, ages and resolves them, and reports their
impact on ports and routes.

Subcommands:
  run       run the engine with its HTTP API until interrupted
  simulate  replay a number of ticks on a simulated clock and print the result
  forecast  print a provider forecast for the next days`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("WORLDSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "engine config file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().String("catalog", "", "port and route catalog YAML (default: built-in catalog)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON instead of tables")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(forecastCmd())
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if name := viper.GetString("log-level"); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	switch format := viper.GetString("log-format"); format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func loadCatalog() (model.Catalog, error) {
	path := viper.GetString("catalog")
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// engineOptions reads the --config file, if any, into engine options.
func engineOptions() ([]worldevents.Option, error) {
	path := viper.GetString("config")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.FromFile(path)
	if err != nil {
		return nil, err
	}
	return worldevents.OptionsFromConfig(cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
