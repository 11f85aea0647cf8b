package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultMaxImageBytes is the ceiling on an encoded image attachment.
const DefaultMaxImageBytes = 5 * 1024 * 1024

// EnvPrefix namespaces environment overrides, e.g. TASKFLOW_STORAGE_BACKEND.
const EnvPrefix = "TASKFLOW"

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks" json:"tasks"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr" json:"addr"`
	DevStatic bool   `mapstructure:"dev_static" yaml:"dev_static" json:"dev_static"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir" json:"static_dir"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" json:"backend"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	Key     string `mapstructure:"key" yaml:"key" json:"key"`
	DSN     string `mapstructure:"dsn" yaml:"dsn,omitempty" json:"-"`
}

type TasksConfig struct {
	MaxImageBytes int `mapstructure:"max_image_bytes" yaml:"max_image_bytes" json:"max_image_bytes"`
	RecentLimit   int `mapstructure:"recent_limit" yaml:"recent_limit" json:"recent_limit"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":42069"
	}
	if strings.TrimSpace(c.Server.StaticDir) == "" {
		c.Server.StaticDir = "static"
	}
	if strings.TrimSpace(c.Storage.Backend) == "" {
		c.Storage.Backend = BackendFile
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = "data"
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		c.Storage.Key = "tasks"
	}
	if c.Tasks.MaxImageBytes <= 0 {
		c.Tasks.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.Tasks.RecentLimit <= 0 {
		c.Tasks.RecentLimit = 5
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if strings.ContainsAny(c.Storage.Key, `/\`) {
		return fmt.Errorf("storage.key %q must not contain path separators", c.Storage.Key)
	}
	return nil
}

// NewViper returns a viper instance with every key registered and
// TASKFLOW_* environment overrides enabled. Callers may bind flags to it
// before passing it to FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.dev_static", d.Server.DevStatic)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("tasks.max_image_bytes", d.Tasks.MaxImageBytes)
	v.SetDefault("tasks.recent_limit", d.Tasks.RecentLimit)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path (a missing file yields defaults) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	return FromViper(NewViper(), path)
}

func FromViper(v *viper.Viper, path string) (*Config, error) {
	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Encode writes c as YAML. The DSN is redacted.
func Encode(w io.Writer, c *Config) error {
	out := *c
	if out.Storage.DSN != "" {
		out.Storage.DSN = "<redacted>"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
