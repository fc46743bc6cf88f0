package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/previewlab/forge/internal/config"
	"github.com/previewlab/forge/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <component.tsx>",
	Short: "Rebuild and redeploy a local component on every save",
	Long: `Watch a local component file and run the full build-and-deploy pipeline
whenever it changes. Each save produces a fresh deployment URL.

Examples:
  forge watch hero.tsx
  forge watch hero.tsx --debounce 1s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Delay before rebuilding after a change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("component file: %w", err)
	}

	fileWatcher, err := watcher.NewFileWatcher(watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.ComponentFilter)
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	// The parent directory is watched; only the target file triggers.
	fileWatcher.AddFilter(func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && abs == target
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		color.Yellow("⟳ %s changed, rebuilding", filepath.Base(target))
		url, err := buildFile(ctx, cfg, target)
		if err != nil {
			color.Red("✘ build failed: %v", err)
			return nil
		}
		color.Green("✔ Deployed: %s", url)
		return nil
	})

	if err := fileWatcher.AddPath(target); err != nil {
		return fmt.Errorf("watching %s: %w", target, err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fileWatcher.Start(ctx)

	// Deploy once up front so the first URL exists before the first save.
	if url, err := buildFile(ctx, cfg, target); err != nil {
		color.Red("✘ initial build failed: %v", err)
	} else {
		color.Green("✔ Deployed: %s", url)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", target)
	<-ctx.Done()
	return nil
}
