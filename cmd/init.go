package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/previewlab/forge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .forge.yml configuration file",
	Long: `Write a .forge.yml in the current directory populated with the default
configuration, ready to edit.

Examples:
  forge init
  forge init --force     # Overwrite an existing .forge.yml`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	const path = ".forge.yml"

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	header := []byte("# Forge configuration. Environment variables with the FORGE_ prefix\n# override these values, e.g. FORGE_DEPLOY_TOKEN.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	color.Green("✔ Wrote %s", path)
	return nil
}
