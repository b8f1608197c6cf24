package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ewingjm/scenario-builder/internal/expect"
)

// Config is the harness configuration of the scenario CLI.
type Config struct {
	Version  string   `yaml:"version"`
	Log      Log      `yaml:"log,omitempty"`
	GitHub   GitHub   `yaml:"github"`
	Defaults Defaults `yaml:"defaults,omitempty"`
	Scenario Scenario `yaml:"scenario,omitempty"`
}

type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// GitHub locates the repository issues are opened in and the token each
// persona authenticates with.
type GitHub struct {
	BaseURL string            `yaml:"base_url,omitempty"`
	Owner   string            `yaml:"owner"`
	Repo    string            `yaml:"repo"`
	Tokens  map[string]string `yaml:"tokens"`
}

// Defaults are the values events use when they are not configured.
type Defaults struct {
	Title     string   `yaml:"title,omitempty"`
	Body      string   `yaml:"body,omitempty"`
	Labels    []string `yaml:"labels,omitempty"`
	Assignees []string `yaml:"assignees,omitempty"`
	Priority  string   `yaml:"priority,omitempty"`
}

// Scenario holds the build settings the command line can also set.
type Scenario struct {
	Configure    []string `yaml:"configure,omitempty"`
	Policy       string   `yaml:"policy,omitempty"`
	Expectations []string `yaml:"expectations,omitempty"`
}

// Priorities are the issue priorities a maintainer can label with.
var Priorities = []string{"low", "medium", "high", "critical"}

var (
	logLevels   = []string{"debug", "info", "warn", "error"}
	logFormats  = []string{"text", "json"}
	policies    = []string{"all", "configured", "preceding"}
	personas    = []string{"reporter", "maintainer"}
	defaultLog  = Log{Level: "info", Format: "text"}
	defaultHost = "https://api.github.com/"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document. ${VAR} references are expanded
// from the environment before decoding.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if config.Log.Level == "" {
		config.Log.Level = defaultLog.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = defaultLog.Format
	}
	if config.GitHub.BaseURL == "" {
		config.GitHub.BaseURL = defaultHost
	}
	if !strings.HasSuffix(config.GitHub.BaseURL, "/") {
		config.GitHub.BaseURL += "/"
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.Version == "" {
		return fmt.Errorf("missing required field: version")
	}

	if !slices.Contains(logLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level '%s': must be one of %v", config.Log.Level, logLevels)
	}
	if !slices.Contains(logFormats, config.Log.Format) {
		return fmt.Errorf("invalid log format '%s': must be one of %v", config.Log.Format, logFormats)
	}

	if err := validateGitHub(&config.GitHub); err != nil {
		return fmt.Errorf("invalid github section: %w", err)
	}

	if p := config.Defaults.Priority; p != "" && !slices.Contains(Priorities, p) {
		return fmt.Errorf("invalid default priority '%s': must be one of %v", p, Priorities)
	}

	if p := config.Scenario.Policy; p != "" && !slices.Contains(policies, p) {
		return fmt.Errorf("invalid scenario policy '%s': must be one of %v", p, policies)
	}
	if err := validateExpectations(config.Scenario.Expectations); err != nil {
		return err
	}

	return nil
}

func validateGitHub(gh *GitHub) error {
	if gh.Owner == "" {
		return fmt.Errorf("missing required field: owner")
	}
	if gh.Repo == "" {
		return fmt.Errorf("missing required field: repo")
	}

	u, err := url.Parse(gh.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url '%s'", gh.BaseURL)
	}

	for _, persona := range personas {
		if strings.TrimSpace(gh.Tokens[persona]) == "" {
			return fmt.Errorf("missing token for persona '%s'", persona)
		}
	}
	for persona := range gh.Tokens {
		if !slices.Contains(personas, persona) {
			return fmt.Errorf("unknown persona '%s': must be one of %v", persona, personas)
		}
	}

	return nil
}

// validateExpectations compiles every expectation so syntax errors and
// undeclared variables are reported at load time.
func validateExpectations(exprs []string) error {
	if len(exprs) == 0 {
		return nil
	}

	evaluator, err := expect.NewEvaluator()
	if err != nil {
		return err
	}
	for i, expr := range exprs {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("invalid expectation %d: CEL expression cannot be empty", i)
		}
		if err := evaluator.Compile(expr); err != nil {
			return fmt.Errorf("invalid expectation %d: %w", i, err)
		}
	}
	return nil
}
