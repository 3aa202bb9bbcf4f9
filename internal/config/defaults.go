package config

const (
	defaultLogDir               = "~/.local/share/loom/logs"
	defaultWebDir               = "packages/web"
	defaultServerBind           = "127.0.0.1:7892"
	defaultShutdownTimeout      = 5
	defaultTypeGenOutput        = "packages/web/src/lib/models/dtos.ts"
	defaultLogFormat            = "auto"
	defaultLogLevel             = "info"
	defaultStopGraceSeconds     = 10
	defaultStatusTimeoutSeconds = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceRoot: ".",
			WebDir:        defaultWebDir,
			LogDir:        defaultLogDir,
		},
		Server: Server{
			Bind:            defaultServerBind,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Backend: Backend{
			Command: "loomd",
		},
		Web: Web{
			Command: "npm",
			Args:    []string{"run", "dev"},
		},
		TypeGen: TypeGen{
			Output: defaultTypeGenOutput,
			Banner: true,
		},
		Checks: []Check{
			{Name: "backend", Command: "go", Args: []string{"vet", "./..."}},
			{Name: "web", Command: "npm", Args: []string{"run", "check"}, Dir: defaultWebDir},
		},
		Workflow: Workflow{
			StopGraceSeconds:     defaultStopGraceSeconds,
			StatusTimeoutSeconds: defaultStatusTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
