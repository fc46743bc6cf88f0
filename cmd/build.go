package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/previewlab/forge/internal/config"
	"github.com/previewlab/forge/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build <component.tsx>",
	Short: "Build and deploy a local component once",
	Long: `Build and deploy a single local React component without starting the
HTTP service. The file goes through the same pipeline as a POST /build
request: scaffold, configure, bundle, deploy.

Examples:
  forge build hero.tsx
  forge build hero.tsx --token $SURGE_TOKEN`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("project-name", "", "Override the scaffolded project name")
	viper.BindPFlag("build.project_name", buildCmd.Flags().Lookup("project-name"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	url, err := buildFile(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}

	color.Green("✔ Deployed: %s", url)
	return nil
}

// buildFile runs the pipeline on a local component file. Shared by the build
// and watch commands.
func buildFile(ctx context.Context, cfg *config.Config, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading component %s: %w", path, err)
	}

	logger := newLogger(cfg)
	p := newPipeline(cfg, logger, func(event pipeline.Event) {
		if event.Type == "step" {
			color.Cyan("→ %s", event.Step)
		}
	})

	if ctx == nil {
		ctx = context.Background()
	}
	return p.RunSource(ctx, string(source))
}
