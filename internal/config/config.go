// Package config holds the run configuration for the insights tool.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// an optional YAML file, environment variables and finally command-line flags
// (applied by the cmd package after LoadFile/ApplyEnv).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by ApplyEnv.
const (
	EnvToken         = "GITHUB_TOKEN"
	EnvReleasesCount = "GH_FETCH_REPO_RELEASES_COUNT"
	EnvLogDir        = "LOG_DIR"
	EnvAPIURL        = "GH_API_URL"
)

// Defaults.
const (
	DefaultBaseURL           = "https://api.github.com"
	DefaultTrunk             = "master"
	DefaultOutputFile        = "graph.dot"
	DefaultLogDir            = "logs"
	DefaultReleasesLimit     = 3
	DefaultRequestsPerSecond = 10
	DefaultMaxRetries        = 3
	DefaultTimeout           = 30 * time.Second
)

// Config is the complete run configuration.
type Config struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	Trunk  string `yaml:"trunk"`  // Integration branch the feature branch is compared against
	Branch string `yaml:"branch"` // Feature branch whose history is reconstructed

	OutputFile  string `yaml:"output_file"`  // Graph-description output path
	ReportFile  string `yaml:"report_file"`  // Optional JSON report path
	MetricsFile string `yaml:"metrics_file"` // Optional prometheus textfile path
	LocalRepo   string `yaml:"local_repo"`   // Read commits from a local clone instead of the API

	LogDir   string `yaml:"log_dir"`
	ToStdout bool   `yaml:"stdout"`
	Debug    bool   `yaml:"debug"`

	ReleasesLimit     int           `yaml:"releases_limit"`
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Trunk:             DefaultTrunk,
		OutputFile:        DefaultOutputFile,
		LogDir:            DefaultLogDir,
		ReleasesLimit:     DefaultReleasesLimit,
		BaseURL:           DefaultBaseURL,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxRetries:        DefaultMaxRetries,
		Timeout:           DefaultTimeout,
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvLogDir); v != "" {
		c.LogDir = v
	}
	if v := getenv(EnvAPIURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvReleasesCount)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q: %w", EnvReleasesCount, v, err)
		}
		c.ReleasesLimit = n
	}
	return nil
}

// Validate checks the fields needed by the requested work. Graph runs need a
// branch; report runs need a non-negative releases limit.
func (c Config) Validate(graph, report bool) error {
	var errs []error

	if err := ValidateOwner(c.Owner); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRepo(c.Repo); err != nil {
		errs = append(errs, err)
	}

	if graph {
		if err := ValidateRef(c.Trunk); err != nil {
			errs = append(errs, fmt.Errorf("trunk: %w", err))
		}
		if err := ValidateRef(c.Branch); err != nil {
			errs = append(errs, fmt.Errorf("branch: %w", err))
		}
		if c.Trunk != "" && c.Trunk == c.Branch {
			errs = append(errs, fmt.Errorf("branch %q must differ from trunk", c.Branch))
		}
		if c.OutputFile == "" {
			errs = append(errs, errors.New("output file cannot be empty"))
		}
	}

	if report && c.ReleasesLimit < 0 {
		errs = append(errs, fmt.Errorf("releases limit must be >= 0, got %d", c.ReleasesLimit))
	}

	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max retries must be >= 1, got %d", c.MaxRetries))
	}

	return errors.Join(errs...)
}
