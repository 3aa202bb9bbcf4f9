package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeCommands()
	c.normalizeTypeGen()
	c.normalizeChecks()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkspaceRoot) == "" {
		c.Paths.WorkspaceRoot = "."
	}
	if c.Paths.WorkspaceRoot, err = expandPath(c.Paths.WorkspaceRoot); err != nil {
		return fmt.Errorf("paths.workspace_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WebDir) == "" {
		c.Paths.WebDir = defaultWebDir
	}
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	var err error
	if cert := strings.TrimSpace(c.Server.TLSCert); cert != "" {
		if c.Server.TLSCert, err = expandPath(cert); err != nil {
			return fmt.Errorf("server.tls_cert: %w", err)
		}
	} else {
		c.Server.TLSCert = ""
	}
	if key := strings.TrimSpace(c.Server.TLSKey); key != "" {
		if c.Server.TLSKey, err = expandPath(key); err != nil {
			return fmt.Errorf("server.tls_key: %w", err)
		}
	} else {
		c.Server.TLSKey = ""
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	return nil
}

func (c *Config) normalizeCommands() {
	c.Backend.Command = strings.TrimSpace(c.Backend.Command)
	if c.Backend.Command == "" {
		c.Backend.Command = "loomd"
	}
	c.Web.Command = strings.TrimSpace(c.Web.Command)
	if c.Web.Command == "" {
		c.Web.Command = "npm"
		c.Web.Args = []string{"run", "dev"}
	}
}

func (c *Config) normalizeTypeGen() {
	c.TypeGen.Output = strings.TrimSpace(c.TypeGen.Output)
	if c.TypeGen.Output == "" {
		c.TypeGen.Output = defaultTypeGenOutput
	}
	c.TypeGen.Json2TSCmd = strings.TrimSpace(c.TypeGen.Json2TSCmd)
	cleaned := make([]string, 0, len(c.TypeGen.Exclude))
	for _, name := range c.TypeGen.Exclude {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	c.TypeGen.Exclude = cleaned
}

func (c *Config) normalizeChecks() {
	cleaned := make([]Check, 0, len(c.Checks))
	for _, check := range c.Checks {
		check.Name = strings.TrimSpace(check.Name)
		check.Command = strings.TrimSpace(check.Command)
		check.Dir = strings.TrimSpace(check.Dir)
		if check.Command == "" {
			continue
		}
		if check.Name == "" {
			check.Name = check.Command
		}
		cleaned = append(cleaned, check)
	}
	c.Checks = cleaned
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.StopGraceSeconds <= 0 {
		c.Workflow.StopGraceSeconds = defaultStopGraceSeconds
	}
	if c.Workflow.StatusTimeoutSeconds <= 0 {
		c.Workflow.StatusTimeoutSeconds = defaultStatusTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
