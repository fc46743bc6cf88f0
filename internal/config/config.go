// Package config provides configuration management for Forge using Viper for
// flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the FORGE_ prefix. It manages server settings, build
// pipeline options (package manager, scaffold template, timeouts), and the
// deploy target (surge token and domain suffix).
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Build   BuildConfig   `yaml:"build"`
	Deploy  DeployConfig  `yaml:"deploy"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

type BuildConfig struct {
	// PackageManager executes install and build steps. Only npm is
	// exercised today but the value flows through to the runner allowlist.
	PackageManager string `yaml:"package_manager"`
	// Template is the create-vite template used for scaffolding.
	Template string `yaml:"template"`
	// ProjectName names the scaffolded directory and prefixes the deploy
	// target hostname.
	ProjectName string `yaml:"project_name"`
	// WorkspaceRoot is where per-request workspaces are created. Empty
	// means the system temporary directory.
	WorkspaceRoot string `yaml:"workspace_root"`
	// StepTimeout bounds every external command invocation.
	StepTimeout time.Duration `yaml:"step_timeout"`
	// MaxConcurrent limits in-flight builds; further requests get 429.
	MaxConcurrent int `yaml:"max_concurrent"`
}

type DeployConfig struct {
	Token  string `yaml:"token"`
	Domain string `yaml:"domain"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Underscore keys do not unmarshal into CamelCase fields, so pull them
	// through viper's typed getters explicitly.
	if viper.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("build.package_manager") {
		config.Build.PackageManager = viper.GetString("build.package_manager")
	}
	if viper.IsSet("build.project_name") {
		config.Build.ProjectName = viper.GetString("build.project_name")
	}
	if viper.IsSet("build.workspace_root") {
		config.Build.WorkspaceRoot = viper.GetString("build.workspace_root")
	}
	if viper.IsSet("build.step_timeout") {
		config.Build.StepTimeout = viper.GetDuration("build.step_timeout")
	}
	if viper.IsSet("build.max_concurrent") {
		config.Build.MaxConcurrent = viper.GetInt("build.max_concurrent")
	}

	// Server defaults
	if !viper.IsSet("server.port") && config.Server.Port == 0 {
		config.Server.Port = 3000
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	// Build defaults
	if config.Build.PackageManager == "" {
		config.Build.PackageManager = "npm"
	}
	if config.Build.Template == "" {
		config.Build.Template = "react-ts"
	}
	if config.Build.ProjectName == "" {
		config.Build.ProjectName = "react-vite-project"
	}
	if config.Build.StepTimeout == 0 {
		config.Build.StepTimeout = 10 * time.Minute
	}
	if config.Build.MaxConcurrent == 0 {
		config.Build.MaxConcurrent = 2
	}

	// Deploy defaults; token comes from config file or FORGE_DEPLOY_TOKEN.
	if config.Deploy.Domain == "" {
		config.Deploy.Domain = "surge.sh"
	}
	if config.Deploy.Token == "" && viper.IsSet("deploy.token") {
		config.Deploy.Token = viper.GetString("deploy.token")
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	switch config.PackageManager {
	case "npm", "pnpm", "yarn", "bun":
	default:
		return fmt.Errorf("unsupported package manager: %s", config.PackageManager)
	}

	// The project name becomes a directory name and a hostname label.
	if err := validateProjectName(config.ProjectName); err != nil {
		return fmt.Errorf("invalid project name '%s': %w", config.ProjectName, err)
	}

	if config.WorkspaceRoot != "" {
		cleanPath := filepath.Clean(config.WorkspaceRoot)
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("workspace_root contains path traversal: %s", config.WorkspaceRoot)
		}
	}

	if config.StepTimeout < 0 {
		return fmt.Errorf("step_timeout must be positive")
	}
	if config.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must be positive")
	}

	return nil
}

// validateProjectName rejects names that cannot serve as both a directory
// name and a DNS hostname label.
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if len(name) > 63 {
		return fmt.Errorf("longer than 63 characters")
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("contains character %q (only lowercase letters, digits, and hyphens allowed)", r)
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("must not start or end with a hyphen")
	}
	return nil
}
