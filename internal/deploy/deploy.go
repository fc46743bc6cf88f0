// Package deploy publishes a built static bundle to surge.sh.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/previewlab/forge/internal/runner"
)

// Clock returns the current time; swapped in tests for deterministic targets.
type Clock func() time.Time

// SurgeClient invokes the surge CLI to publish a directory to a synthesized
// target domain.
type SurgeClient struct {
	executor runner.Executor
	token    string
	domain   string // hosting domain suffix, e.g. "surge.sh"
	now      Clock
}

// NewSurgeClient creates a SurgeClient authenticated with token publishing
// under domain.
func NewSurgeClient(executor runner.Executor, token, domain string) *SurgeClient {
	return &SurgeClient{
		executor: executor,
		token:    token,
		domain:   domain,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Test hook.
func (c *SurgeClient) WithClock(clock Clock) *SurgeClient {
	c.now = clock
	return c
}

// Target synthesizes the deployment target identifier from the project name
// and the current time. The same string is used as the publish destination
// and returned to the caller as the live URL.
func (c *SurgeClient) Target(projectName string) string {
	return fmt.Sprintf("https://%s-%d.%s", projectName, c.now().Unix(), c.domain)
}

// Deploy publishes outputDir to target and returns the target on success.
func (c *SurgeClient) Deploy(ctx context.Context, outputDir, target string) (string, error) {
	cmd := runner.Command{
		Name: "surge",
		Args: []string{outputDir, target, "--token", c.token},
	}
	if err := c.executor.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("deploying to %s: %w", target, err)
	}
	return target, nil
}
