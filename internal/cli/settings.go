package cli

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shinji-kodama/sqlfluff-check/internal/config"
	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
)

// envPrefix namespaces environment overrides, e.g.
// SQLFLUFF_CHECK_DOCKER_IMAGE for --docker-image.
const envPrefix = "SQLFLUFF_CHECK"

// Setting keys. Each key is also the long flag name.
const (
	keyConfig      = "config"
	keyCommand     = "sqlfluff"
	keyDockerImage = "docker-image"
	keyJSON        = "json"
	keyVerbose     = "verbose"
)

// settings is the resolved tool configuration for one run. Explicit flags
// win over environment variables, which win over flag defaults.
type settings struct {
	// ConfigPath is the sqlfluff configuration file to require and read.
	ConfigPath string

	// Command is the local linter command line.
	Command string

	// DockerImage, when non-empty, runs the linter in this image instead
	// of as a local process.
	DockerImage string

	// JSON selects the JSON report on stdout.
	JSON bool

	// Verbose enables debug diagnostics on stderr.
	Verbose bool
}

// bindSettings registers the viper-backed flags on fs and binds them,
// together with their environment variables, into v.
func bindSettings(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String(keyConfig, config.DefaultFileName,
		"Path to the sqlfluff configuration file (.sqlfluff or pyproject.toml)")
	fs.String(keyCommand, lint.DefaultCommand,
		`Command used to run sqlfluff, e.g. "python -m sqlfluff"`)
	fs.String(keyDockerImage, "",
		"Run sqlfluff inside this Docker image instead of a local process")
	fs.Bool(keyJSON, false, "Output the result as JSON")
	fs.BoolP(keyVerbose, "v", false, "Enable verbose output")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		// Only the flags registered above are tool settings.
		switch f.Name {
		case keyConfig, keyCommand, keyDockerImage, keyJSON, keyVerbose:
			_ = v.BindPFlag(f.Name, f)
		}
	})
}

// loadSettings reads the resolved values out of v.
func loadSettings(v *viper.Viper) settings {
	return settings{
		ConfigPath:  v.GetString(keyConfig),
		Command:     v.GetString(keyCommand),
		DockerImage: v.GetString(keyDockerImage),
		JSON:        v.GetBool(keyJSON),
		Verbose:     v.GetBool(keyVerbose),
	}
}
