package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkspaceRoot string `toml:"workspace_root"`
	WebDir        string `toml:"web_dir"`
	LogDir        string `toml:"log_dir"`
}

// Server contains configuration for the backend HTTP daemon.
type Server struct {
	Bind            string   `toml:"bind"`
	TLSCert         string   `toml:"tls_cert"`
	TLSKey          string   `toml:"tls_key"`
	CORSOrigins     []string `toml:"cors_origins"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
}

// Backend describes how the backend daemon process is launched by the runner.
type Backend struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Web describes how the frontend dev server is launched.
type Web struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// TypeGen contains configuration for TypeScript definition generation.
type TypeGen struct {
	Output     string   `toml:"output"`
	Exclude    []string `toml:"exclude"`
	Json2TSCmd string   `toml:"json2ts_cmd"`
	Banner     bool     `toml:"banner"`
}

// Check describes a single type checker invocation.
type Check struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Dir     string   `toml:"dir"`
}

// Workflow contains timing configuration for process supervision.
type Workflow struct {
	StopGraceSeconds     int `toml:"stop_grace_seconds"`
	StatusTimeoutSeconds int `toml:"status_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for loom.
//
// Configuration sections by subsystem:
//   - Paths: workspace layout and log directory
//   - Server: backend daemon bind address, TLS, and CORS
//   - Backend/Web: dev-server launch commands
//   - TypeGen: schema-to-TypeScript generation
//   - Checks: type checker commands run by `loom check types`
//   - Workflow: process stop grace and client timeouts
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Server   Server   `toml:"server"`
	Backend  Backend  `toml:"backend"`
	Web      Web      `toml:"web"`
	TypeGen  TypeGen  `toml:"typegen"`
	Checks   []Check  `toml:"checks"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/loom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("loom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon and CLI operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TypeGenOutput returns the absolute path the TypeScript definitions are written to.
func (c *Config) TypeGenOutput() string {
	output := strings.TrimSpace(c.TypeGen.Output)
	if output == "" {
		output = defaultTypeGenOutput
	}
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(c.Paths.WorkspaceRoot, output)
}

// WebDir returns the absolute path to the frontend package.
func (c *Config) WebDir() string {
	if filepath.IsAbs(c.Paths.WebDir) {
		return c.Paths.WebDir
	}
	return filepath.Join(c.Paths.WorkspaceRoot, c.Paths.WebDir)
}

// TLSEnabled reports whether the backend should serve HTTPS.
func (c *Config) TLSEnabled() bool {
	return strings.TrimSpace(c.Server.TLSCert) != "" && strings.TrimSpace(c.Server.TLSKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
