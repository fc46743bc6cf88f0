// Package pipeline orchestrates the end-to-end build of a submitted React
// component: staging, scaffolding, configuration, component installation,
// bundling, and deployment.
//
// Each run operates inside its own workspace directory, so concurrent runs
// never share filesystem state, and every external command inherits the run's
// context plus a per-step timeout. The workspace is removed when the run
// finishes regardless of outcome. Any step failure aborts the remaining
// steps; no step is retried.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/previewlab/forge/internal/config"
	"github.com/previewlab/forge/internal/deploy"
	forgeerrors "github.com/previewlab/forge/internal/errors"
	"github.com/previewlab/forge/internal/logging"
	"github.com/previewlab/forge/internal/runner"
	"github.com/previewlab/forge/internal/scaffold"
	"github.com/previewlab/forge/internal/staging"
	"github.com/previewlab/forge/internal/transform"
)

// BuildOutputDir is the directory the bundler produces inside the project.
const BuildOutputDir = "dist"

// Event describes pipeline progress, consumed by the websocket hub and the
// CLI.
type Event struct {
	Type      string    `json:"type"` // "step", "done", or "error"
	RequestID string    `json:"request_id"`
	Step      string    `json:"step,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer receives progress events. It must not block; slow consumers drop.
type Observer func(Event)

// Pipeline runs builds. Safe for concurrent use.
type Pipeline struct {
	cfg      *config.Config
	executor runner.Executor
	deployer *deploy.SurgeClient
	logger   logging.Logger
	observer Observer
}

// New creates a Pipeline. observer may be nil.
func New(cfg *config.Config, executor runner.Executor, deployer *deploy.SurgeClient, logger logging.Logger, observer Observer) *Pipeline {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Pipeline{
		cfg:      cfg,
		executor: executor,
		deployer: deployer,
		logger:   logger.WithComponent("pipeline"),
		observer: observer,
	}
}

// Run decodes the base64-encoded component source and executes the full
// build, returning the deployment URL.
func (p *Pipeline) Run(ctx context.Context, encodedSource string) (string, error) {
	source, err := staging.DecodeSource(encodedSource)
	if err != nil {
		return "", err
	}
	return p.RunSource(ctx, source)
}

// RunSource executes the full build for already-decoded component source.
func (p *Pipeline) RunSource(ctx context.Context, source string) (url string, err error) {
	ws, err := staging.NewWorkspace(p.cfg.Build.WorkspaceRoot)
	if err != nil {
		return "", err
	}
	logger := p.logger.With("request_id", ws.ID)

	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			logger.Warn(ctx, cleanupErr, "workspace cleanup failed", "path", ws.Root)
		}
		if err != nil {
			p.emit(Event{Type: "error", RequestID: ws.ID, Message: forgeerrors.ClientMessage(err)})
		} else {
			p.emit(Event{Type: "done", RequestID: ws.ID, Message: url})
		}
	}()

	logger.Info(ctx, "build started")

	if err = ws.StageSource(source); err != nil {
		return "", err
	}

	staged, err := ws.ReadStaged()
	if err != nil {
		return "", err
	}

	transformed, err := transform.Apply(staged)
	if err != nil {
		return "", err
	}

	projectName := p.cfg.Build.ProjectName
	projectDir := ws.ProjectDir(projectName)
	pm := p.cfg.Build.PackageManager
	writer := scaffold.NewWriter(projectDir, scaffold.DefaultAlias)

	steps := []struct {
		name string
		tool string
		run  func(context.Context) error
	}{
		{"scaffold", pm, func(ctx context.Context) error {
			return p.executor.Run(ctx, runner.Command{
				Dir:  ws.Root,
				Name: pm,
				Args: []string{"create", "vite@latest", projectName, "--", "--template", p.cfg.Build.Template},
			})
		}},
		{"install", pm, func(ctx context.Context) error {
			return p.executor.Run(ctx, runner.Command{
				Dir:  projectDir,
				Name: pm,
				Args: []string{"install"},
			})
		}},
		{"tailwind-install", pm, func(ctx context.Context) error {
			return p.executor.Run(ctx, runner.Command{
				Dir:  projectDir,
				Name: pm,
				Args: []string{"install", "-D", "tailwindcss@3", "postcss", "autoprefixer"},
			})
		}},
		{"tailwind-init", "npx", func(ctx context.Context) error {
			if err := p.executor.Run(ctx, runner.Command{
				Dir:  projectDir,
				Name: "npx",
				Args: []string{"tailwindcss", "init", "-p"},
			}); err != nil {
				return err
			}
			if err := writer.WriteTailwindConfig(); err != nil {
				return err
			}
			return writer.WriteGlobalStylesheet()
		}},
		{"tsconfig-alias", "", func(context.Context) error {
			return writer.WriteTSConfig()
		}},
		{"vite-alias", "", func(context.Context) error {
			return writer.WriteViteConfig()
		}},
		{"shadcn-init", "npx", func(ctx context.Context) error {
			if err := p.executor.Run(ctx, runner.Command{
				Dir:  projectDir,
				Name: "npx",
				Args: []string{"shadcn@latest", "init", "-d"},
			}); err != nil {
				return forgeerrors.NewShadcnInitError(err)
			}
			return nil
		}},
		{"install-component", "", func(context.Context) error {
			return writer.WriteAppComponent(transformed)
		}},
		{"entry-stylesheet", "", func(context.Context) error {
			return writer.RewriteEntryFile(transform.EnsureStylesheetImport)
		}},
		{"build", pm, func(ctx context.Context) error {
			return p.executor.Run(ctx, runner.Command{
				Dir:  projectDir,
				Name: pm,
				Args: []string{"run", "build"},
			})
		}},
		{"verify-output", "", func(context.Context) error {
			outputDir := filepath.Join(projectDir, BuildOutputDir)
			if info, statErr := os.Stat(outputDir); statErr != nil || !info.IsDir() {
				return fmt.Errorf("%w: expected %s", forgeerrors.ErrBuildOutputMissing, outputDir)
			}
			return nil
		}},
	}

	for _, step := range steps {
		if err = p.runStep(ctx, ws.ID, logger, step.name, step.tool, step.run); err != nil {
			return "", err
		}
	}

	target := p.deployer.Target(projectName)
	err = p.runStep(ctx, ws.ID, logger, "deploy", "surge", func(ctx context.Context) error {
		_, deployErr := p.deployer.Deploy(ctx, filepath.Join(projectDir, BuildOutputDir), target)
		return deployErr
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "build finished", "url", target)
	return target, nil
}

// runStep executes one step under the configured timeout, emitting a progress
// event and wrapping failures with the step name.
func (p *Pipeline) runStep(ctx context.Context, requestID string, logger logging.Logger, name, tool string, fn func(context.Context) error) error {
	p.emit(Event{Type: "step", RequestID: requestID, Step: name})
	logger.Debug(ctx, "step started", "step", name)

	stepCtx := ctx
	if p.cfg.Build.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, p.cfg.Build.StepTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := fn(stepCtx); err != nil {
		logger.Error(ctx, err, "step failed", "step", name, "duration", time.Since(start).String())
		return forgeerrors.NewStepError(name, tool, err)
	}

	logger.Debug(ctx, "step finished", "step", name, "duration", time.Since(start).String())
	return nil
}

func (p *Pipeline) emit(event Event) {
	if p.observer == nil {
		return
	}
	event.Timestamp = time.Now()
	p.observer(event)
}
