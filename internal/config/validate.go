package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTypeGen(); err != nil {
		return err
	}
	if err := c.validateChecks(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port, got %q: %w", c.Server.Bind, err)
	}
	cert := strings.TrimSpace(c.Server.TLSCert)
	key := strings.TrimSpace(c.Server.TLSKey)
	if (cert == "") != (key == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	return nil
}

func (c *Config) validateTypeGen() error {
	if !strings.HasSuffix(c.TypeGen.Output, ".ts") {
		return fmt.Errorf("typegen.output must be a .ts file, got %q", c.TypeGen.Output)
	}
	return nil
}

func (c *Config) validateChecks() error {
	seen := make(map[string]struct{}, len(c.Checks))
	for _, check := range c.Checks {
		if _, dup := seen[check.Name]; dup {
			return fmt.Errorf("checks: duplicate name %q", check.Name)
		}
		seen[check.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("logging.format must be auto, json, or console, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
