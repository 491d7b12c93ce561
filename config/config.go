package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvPort      = "HIVEMIND_PORT"
	EnvTeam      = "HIVEMIND_TEAM"
	EnvVariant   = "HIVEMIND_VARIANT"
	EnvDebug     = "HIVEMIND_DEBUG"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// Config is the process configuration
type Config struct {
	Port      string
	Team      int
	Variant   string
	Debug     bool
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:      "8080",
		Variant:   "primary",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads .env files, if present, and then the environment. Variables
// already set in the environment take precedence over .env entries.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment on top of Default
func FromEnv() (Config, error) {
	cfg := Default()

	if v, err := GetEnvVariable(EnvPort); err == nil {
		cfg.Port = v
	}
	if v, err := GetEnvVariable(EnvTeam); err == nil {
		team, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTeam, err)
		}
		cfg.Team = team
	}
	if v, err := GetEnvVariable(EnvVariant); err == nil {
		cfg.Variant = strings.ToLower(v)
	}
	if v, err := GetEnvVariable(EnvDebug); err == nil {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	if v, err := GetEnvVariable(EnvLogLevel); err == nil {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, err := GetEnvVariable(EnvLogFormat); err == nil {
		cfg.LogFormat = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.Team != 0 && c.Team != 1 {
		return fmt.Errorf("invalid team %d: want 0 (blue) or 1 (orange)", c.Team)
	}
	switch c.Variant {
	case "primary", "permissive":
	default:
		return fmt.Errorf("invalid variant %q: want primary or permissive", c.Variant)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}
