// Package config reads the storefront configuration. Sources apply in order
// defaults, YAML file, command line flags, environment; the last one wins.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"WonderFarm/internal/localstore"
	"WonderFarm/internal/wallet"
)

const (
	SourceMock   = "mock"
	SourceRemote = "remote"
)

var ErrInvalidDataSource = errors.New("invalid data source")

type Config struct {
	RunAddress   string   `yaml:"run_address" env:"RUN_ADDRESS"`
	DataSource   string   `yaml:"data_source" env:"DATA_SOURCE"`
	DatabaseURI  string   `yaml:"database_uri" env:"DATABASE_URI"`
	MockLatency  bool     `yaml:"mock_latency" env:"MOCK_LATENCY"`
	MetricsToken string   `yaml:"metrics_token" env:"METRICS_TOKEN"`
	LogLevel     string   `yaml:"log_level" env:"LOG_LEVEL"`
	Snapshot     Snapshot `yaml:"snapshot"`
	User         User     `yaml:"user"`
}

type Snapshot struct {
	Backend string `yaml:"backend" env:"SNAPSHOT_BACKEND"`
	Path    string `yaml:"path" env:"SNAPSHOT_PATH"`
}

type User struct {
	ID        string `yaml:"id" env:"USER_ID"`
	FirstName string `yaml:"first_name" env:"USER_FIRST_NAME"`
	LastName  string `yaml:"last_name" env:"USER_LAST_NAME"`
	FarmAlias string `yaml:"farm_alias" env:"USER_FARM_ALIAS"`
	Avatar    string `yaml:"avatar" env:"USER_AVATAR"`
	Coins     int64  `yaml:"coins" env:"USER_COINS"`
}

func (u User) Wallet() wallet.User {
	return wallet.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FarmAlias: u.FarmAlias,
		Avatar:    u.Avatar,
		Coins:     u.Coins,
	}
}

func Default() Config {
	u := wallet.DefaultUser()
	return Config{
		RunAddress:  "localhost:8080",
		DataSource:  SourceMock,
		MockLatency: true,
		LogLevel:    "info",
		Snapshot: Snapshot{
			Backend: localstore.BackendFile,
			Path:    ".wonderfarm",
		},
		User: User{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			FarmAlias: u.FarmAlias,
			Avatar:    u.Avatar,
			Coins:     u.Coins,
		},
	}
}

// Parse builds the configuration from args (without the program name) and
// the process environment.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)

	var (
		file   = fs.String("c", "", "path to YAML config file")
		addr   = fs.String("a", "", "address and port for HTTP server")
		source = fs.String("s", "", "data source: mock or remote")
		dsn    = fs.String("d", "", "database URI for the remote data source")
	)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg := Default()

	path := *file
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		path = v
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.RunAddress = *addr
		case "s":
			cfg.DataSource = *source
		case "d":
			cfg.DatabaseURI = *dsn
		}
	})

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DataSource = strings.ToLower(strings.TrimSpace(cfg.DataSource))
	cfg.Snapshot.Backend = strings.ToLower(strings.TrimSpace(cfg.Snapshot.Backend))
	if cfg.RunAddress == "" {
		cfg.RunAddress = Default().RunAddress
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceMock:
	case SourceRemote:
		if c.DatabaseURI == "" {
			return fmt.Errorf("%w: %s requires DATABASE_URI", ErrInvalidDataSource, SourceRemote)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDataSource, c.DataSource)
	}

	switch c.Snapshot.Backend {
	case localstore.BackendFile, localstore.BackendSQLite:
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot backend %s requires a path", c.Snapshot.Backend)
		}
	case localstore.BackendMemory:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}

	if c.User.ID == "" {
		return errors.New("user id required")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
