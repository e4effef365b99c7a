// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sloany CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the sloany CLI.
var rootCmd = &cobra.Command{
	Use:   "sloany",
	Short: "Query the SDSS database and retrieve spectra files",
	Long: `sloany searches the Sloan Digital Sky Survey through the SkyServer SQL
service and retrieves the spectrum files for the objects a query returns.

Each pipeline stage is a subcommand: query, fetch, reduce, helium, and
catalog. A query run can chain the later stages directly with --fetch and
--reduce, or save its results for a separate fetch run later.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sloany.yaml or ~/.config/sloany/sloany.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sloany")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sloany"))
		}
	}

	viper.SetEnvPrefix("SLOANY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// logger returns the CLI logger: development-style debug output under
// --verbose, silent otherwise.
func logger() *zap.SugaredLogger {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if !verbose {
		return zap.NewNop().Sugar()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// durationSetting resolves an option declared as a zero-default flag: the
// flag value wins when set, then the config file, then the built-in default.
func durationSetting(cmd *cobra.Command, flag, key string, fallback time.Duration) time.Duration {
	if v, _ := cmd.Flags().GetDuration(flag); v != 0 {
		return v
	}
	if v := viper.GetDuration(key); v != 0 {
		return v
	}
	return fallback
}

// stringSetting is durationSetting for string options.
func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return configString(key, fallback)
}

// configString returns the config value for key, or fallback when unset.
func configString(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
