package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/previewlab/forge/internal/config"
	"github.com/previewlab/forge/internal/deploy"
	"github.com/previewlab/forge/internal/logging"
	"github.com/previewlab/forge/internal/pipeline"
	"github.com/previewlab/forge/internal/runner"
	"github.com/previewlab/forge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP build-and-deploy service",
	Long: `Start the HTTP service. POST a JSON body {"code": "<base64 component>"}
to /build and receive the deployment URL. Progress events stream on /ws.

Examples:
  forge serve                       # Listen on the configured port
  forge serve --port 8080           # Override the port
  FORGE_DEPLOY_TOKEN=... forge serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "Port to serve on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("max-concurrent", 2, "Maximum concurrent builds")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("build.max_concurrent", serveCmd.Flags().Lookup("max-concurrent"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	srv := server.New(cfg, nil, logger)
	srv.SetBuilder(newPipeline(cfg, logger, srv.PublishEvent))

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "error during server shutdown")
		}
		cancel()
	}()

	fmt.Printf("Starting Forge server at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newLogger builds the logger from config.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})
}

// newPipeline wires the pipeline with the real tool runner and surge client.
func newPipeline(cfg *config.Config, logger logging.Logger, observer pipeline.Observer) *pipeline.Pipeline {
	executor := runner.NewExecRunner(os.Stdout, os.Stderr,
		cfg.Build.PackageManager, "npx", "surge")
	deployer := deploy.NewSurgeClient(executor, cfg.Deploy.Token, cfg.Deploy.Domain)
	return pipeline.New(cfg, executor, deployer, logger, observer)
}
