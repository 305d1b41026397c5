package server

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txn2/mcp-sqlcontext/pkg/query/postgres"
	"github.com/txn2/mcp-sqlcontext/pkg/query/trino"
)

// Connection kinds.
const (
	KindTrino    = "trino"
	KindPostgres = "postgres"
)

// Config holds the complete server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Tables     TablesConfig     `yaml:"tables"`
}

// ServerConfig configures the MCP server identity.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ConnectionConfig selects and configures the query engine.
type ConnectionConfig struct {
	Kind     string          `yaml:"kind"` // "trino", "postgres"
	Trino    trino.Config    `yaml:"trino"`
	Postgres postgres.Config `yaml:"postgres"`
}

// TablesConfig configures table selection and table info rendering.
type TablesConfig struct {
	Include      []string          `yaml:"include"`
	Ignore       []string          `yaml:"ignore"`
	SampleRows   int               `yaml:"sample_rows"`
	Descriptions map[string]string `yaml:"descriptions"`
}

// LoadConfig loads configuration from a file.
// The path is expected to come from command line arguments, controlled by the administrator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "mcp-sqlcontext"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = Version
	}
	if cfg.Connection.Kind == "" {
		cfg.Connection.Kind = KindTrino
	}
	if cfg.Connection.Trino.Timeout == 0 {
		cfg.Connection.Trino.Timeout = 120 * time.Second
	}
}

// Validate checks the configuration for construction-time errors.
func (c *Config) Validate() error {
	switch c.Connection.Kind {
	case KindTrino, KindPostgres:
	default:
		return fmt.Errorf("unknown connection kind: %q", c.Connection.Kind)
	}

	if len(c.Tables.Include) > 0 && len(c.Tables.Ignore) > 0 {
		return fmt.Errorf("tables.include and tables.ignore are mutually exclusive")
	}

	return nil
}
