// Package main is the entry point for the optimade-cli tool: query
// OPTIMADE structure databases from the command line, with filter
// composition, pagination, and provider discovery handled by the
// client library.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matgraph/optimade-client/pkg/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the optimade-cli.
var rootCmd = &cobra.Command{
	Use:   "optimade-cli",
	Short: "Query OPTIMADE structure databases",
	Long: `optimade-cli queries OPTIMADE providers for crystal structures. A search
composes your filter with a curated exclusion predicate, pages through the
results, and reports provider errors without retrying them.

Use "providers" to discover queryable databases from the official index,
then "search" against one of their base URLs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := logging.DefaultConfig()
		cfg.Level = logging.LogLevel(viper.GetString("log-level"))
		cfg.Pretty = viper.GetBool("log-pretty")
		logging.Setup(cfg)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./optimade-cli.yaml or ~/.config/optimade-cli/config.yaml)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for response caching and provider cooldowns (empty disables both)")
	rootCmd.PersistentFlags().String("user-agent", "optimade-client/0.1.0", "User-Agent header sent to providers")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output instead of JSON")

	viper.BindPFlag("redis", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("optimade-cli")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "optimade-cli"))
		}
	}

	viper.SetEnvPrefix("OPTIMADE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
