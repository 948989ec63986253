package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDirectory       = "./"
	DefaultPort            = 9000
	DefaultHost            = "0.0.0.0"
	DefaultWorkers         = 8
	DefaultChunkSize       = 64 << 10
	DefaultShutdownTimeout = 15 * time.Second

	defaultConfigPath = "./fileshare.yaml"
)

// Config is built once at startup and passed by value afterwards.
type Config struct {
	Directory       string        `yaml:"directory" json:"directory"`
	Port            int           `yaml:"port" json:"port"`
	Host            string        `yaml:"host" json:"host"`
	Workers         int           `yaml:"workers" json:"workers"`
	ChunkSize       int           `yaml:"chunk_size" json:"chunk_size"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	LogFile         string        `yaml:"log_file" json:"log_file"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Directory:       DefaultDirectory,
		Port:            DefaultPort,
		Host:            DefaultHost,
		Workers:         DefaultWorkers,
		ChunkSize:       DefaultChunkSize,
		LogLevel:        "info",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load reads the YAML configuration on top of the defaults and applies ENV
// overrides. path == "" falls back to CONFIG_PATH and then ./fileshare.yaml;
// only an explicitly requested file has to exist.
func Load(path string) (Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path, explicit = v, true
		} else {
			path = defaultConfigPath
		}
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}

	if err = c.applyEnv(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// applyEnv overrides fields from FILESHARE_* variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("FILESHARE_DIRECTORY"); v != "" {
		c.Directory = v
	}
	if v := os.Getenv("FILESHARE_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("FILESHARE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FILESHARE_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("FILESHARE_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FILESHARE_PORT: %w", err)
		}
		c.Port = n
	}
	if v := os.Getenv("FILESHARE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FILESHARE_WORKERS: %w", err)
		}
		c.Workers = n
	}

	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return errors.New("directory is empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0, got %d", c.ChunkSize)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must be >= 0, got %d", c.MaxUploadBytes)
	}

	return nil
}

// Normalize validates c, resolves the directory to an absolute path and checks
// that it is an existing directory.
func (c Config) Normalize() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	abs, err := filepath.Abs(c.Directory)
	if err != nil {
		return Config{}, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return Config{}, err
	}
	if !st.IsDir() {
		return Config{}, fmt.Errorf("%s is not a directory", abs)
	}
	c.Directory = abs

	return c, nil
}

// ListenAddr renders host:port for http.Server.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
