package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// config is the relq.yaml file. Every field is optional.
type config struct {
	Dialect  string   `yaml:"dialect"`
	Engine   string   `yaml:"engine"`
	DSN      string   `yaml:"dsn"`
	Passes   []string `yaml:"passes"`
	Validate bool     `yaml:"validate"`
	LogLevel string   `yaml:"log_level"`
	// Setup is an SQL script run right after connecting, typically the
	// schema of an in-memory sqlite database.
	Setup string `yaml:"setup"`
}

func defaultConfig() config {
	return config{
		Dialect:  "postgres",
		Engine:   "sqlite",
		DSN:      ":memory:",
		Validate: true,
		LogLevel: "warn",
	}
}

// configPath picks the config file: the flag, then RELQ_CONFIG, then
// ./relq.yaml, then ~/.config/relq/relq.yaml. An empty result means no
// file; only an explicitly named file has to exist.
func configPath(flag string, getenv func(string) string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := getenv("RELQ_CONFIG"); env != "" {
		return env, true
	}
	candidates := []string{"relq.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "relq", "relq.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, false
		}
	}
	return "", false
}

// loadConfig reads path over the defaults and applies the environment.
func loadConfig(path string, explicit bool, getenv func(string) string) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return cfg, fmt.Errorf("config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}
	if engine := getenv("RELQ_ENGINE"); engine != "" {
		cfg.Engine = engine
	}
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		cfg.DSN = dsn
	}
	return cfg, cfg.check()
}

func (c config) check() error {
	if _, err := visitors.ForDialect(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !isValidEngine(c.Engine) {
		return fmt.Errorf("config: unknown engine %q", c.Engine)
	}
	if _, err := c.pipeline(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// pipeline resolves the configured passes, or the default pipeline when
// none are named.
func (c config) pipeline() ([]optimizer.Pass, error) {
	if len(c.Passes) == 0 {
		return optimizer.DefaultPasses(), nil
	}
	return optimizer.ParsePasses(c.Passes)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

func isValidEngine(engine string) bool {
	_, ok := driverName[engine]
	return ok
}
