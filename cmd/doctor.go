package cmd

import (
	"fmt"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/previewlab/forge/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify the external tools the pipeline depends on",
	Long: `Check that the external CLIs every build invokes are available on PATH
and that a deploy token is configured.

Examples:
  forge doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Forge environment check")
	fmt.Println("=======================")

	failures := 0
	for _, tool := range []string{cfg.Build.PackageManager, "npx", "surge"} {
		if path, err := exec.LookPath(tool); err != nil {
			color.Red("✘ %s not found on PATH", tool)
			failures++
		} else {
			color.Green("✔ %s (%s)", tool, path)
		}
	}

	if cfg.Deploy.Token == "" {
		color.Yellow("! no deploy token configured (set deploy.token or FORGE_DEPLOY_TOKEN)")
		failures++
	} else {
		color.Green("✔ deploy token configured")
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Println("All checks passed.")
	return nil
}
