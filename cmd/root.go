// Package cmd provides the command-line interface for Forge.
//
// Configuration is loaded from multiple sources with clear precedence:
//  1. Command-line flags (--port, --token, etc.) - highest priority
//  2. Individual environment variables (FORGE_SERVER_PORT, FORGE_DEPLOY_TOKEN, ...)
//  3. Configuration file (.forge.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Build and deploy React components as live static sites",
	Long: `Forge accepts a React component, scaffolds a disposable Vite + React +
TypeScript project around it, wires in Tailwind CSS and shadcn/ui, builds the
project, and publishes the static bundle to surge.sh.

Quick Start:
  forge init                      Write a starter .forge.yml
  forge doctor                    Verify npm, npx, and surge are available
  forge serve                     Start the HTTP build service
  forge build component.tsx       Build and deploy a local component once
  forge watch component.tsx       Redeploy a local component on every save`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .forge.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("token", "", "surge.sh authentication token")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("deploy.token", rootCmd.PersistentFlags().Lookup("token"))
}

// initConfig initializes the configuration system.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".forge")
	}

	// Enable automatic environment variable binding with FORGE_ prefix,
	// e.g. FORGE_SERVER_PORT, FORGE_DEPLOY_TOKEN.
	viper.SetEnvPrefix("FORGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env vars still apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
