package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			setup: func() {
				viper.Reset()
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3000, cfg.Server.Port)
				assert.Equal(t, "npm", cfg.Build.PackageManager)
				assert.Equal(t, "react-ts", cfg.Build.Template)
				assert.Equal(t, "react-vite-project", cfg.Build.ProjectName)
				assert.Equal(t, "surge.sh", cfg.Deploy.Domain)
				assert.Equal(t, 10*time.Minute, cfg.Build.StepTimeout)
				assert.Equal(t, 2, cfg.Build.MaxConcurrent)
			},
		},
		{
			name: "custom values",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 8080)
				viper.Set("build.project_name", "demo-app")
				viper.Set("deploy.token", "tok")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "demo-app", cfg.Build.ProjectName)
				assert.Equal(t, "tok", cfg.Deploy.Token)
			},
		},
		{
			name: "invalid port",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 70000)
			},
			expectError: true,
		},
		{
			name: "dangerous host",
			setup: func() {
				viper.Reset()
				viper.Set("server.host", "localhost;rm -rf /")
			},
			expectError: true,
		},
		{
			name: "unsupported package manager",
			setup: func() {
				viper.Reset()
				viper.Set("build.package_manager", "cargo")
			},
			expectError: true,
		},
		{
			name: "project name with uppercase",
			setup: func() {
				viper.Reset()
				viper.Set("build.project_name", "MyProject")
			},
			expectError: true,
		},
		{
			name: "workspace root traversal",
			setup: func() {
				viper.Reset()
				viper.Set("build.workspace_root", "../../etc")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			cfg, err := Load()
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	assert.NoError(t, validateProjectName("react-vite-project"))
	assert.NoError(t, validateProjectName("a1"))
	assert.Error(t, validateProjectName(""))
	assert.Error(t, validateProjectName("-leading"))
	assert.Error(t, validateProjectName("trailing-"))
	assert.Error(t, validateProjectName("under_score"))
	assert.Error(t, validateProjectName("spaced name"))
}
