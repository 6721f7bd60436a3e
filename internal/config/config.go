// Package config loads portalmon settings from a YAML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".portalmon.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/portalmon"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"

	// EnvPrefix is prepended to every environment override, e.g.
	// PORTALMON_BASE_URL or PORTALMON_RECONNECT_MAX_BACKOFF.
	EnvPrefix = "PORTALMON"
)

// Defaults.
const (
	DefaultBaseURL        = "http://127.0.0.1:8000"
	DefaultRequestTimeout = 10 * time.Second
	DefaultReconnectBase  = time.Second
	DefaultMaxBackoff     = 60 * time.Second
	DefaultLogFile        = "portalmon.log"
)

// Config is the effective configuration.
type Config struct {
	BaseURL        string          `mapstructure:"base_url" yaml:"base_url"`
	Period         string          `mapstructure:"period" yaml:"period"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout" yaml:"request_timeout"`
	Reconnect      ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
	MetricsAddr    string          `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	LogFile        string          `mapstructure:"log_file" yaml:"log_file"`
	NoColor        bool            `mapstructure:"no_color" yaml:"no_color"`
	Plain          bool            `mapstructure:"plain" yaml:"plain"`

	// Source is the file the config was read from, empty when none was found.
	Source string `mapstructure:"-" yaml:"-"`
}

// ReconnectConfig controls the live stream backoff.
type ReconnectConfig struct {
	Base       time.Duration `mapstructure:"base" yaml:"base"`
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags on it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("period", model.DefaultPeriod.String())
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("reconnect.base", DefaultReconnectBase)
	v.SetDefault("reconnect.max_backoff", DefaultMaxBackoff)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("no_color", false)
	v.SetDefault("plain", false)
}

// Load resolves the config file (see Find), reads it into v if one exists and
// returns the validated result. A missing file is not an error.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file exists and is valid YAML")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config",
			"Durations take Go syntax, e.g. 10s or 1m30s")
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .portalmon.yaml in the current directory
// 3. ~/.config/portalmon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	local := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// Validate checks the values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid base_url "+c.BaseURL,
			"Use a full URL such as "+DefaultBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			"Unsupported base_url scheme "+u.Scheme,
			"base_url must start with http:// or https://")
	}
	if u.Hostname() == "" {
		return errors.New(errors.ErrConfig,
			"base_url has no host: "+c.BaseURL,
			"Use a full URL such as "+DefaultBaseURL)
	}

	if _, err := model.ParsePeriod(c.Period); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid period",
			"Use one of 12h, 24h or today")
	}

	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"request_timeout must be positive", "")
	}
	if c.Reconnect.Base <= 0 || c.Reconnect.MaxBackoff <= 0 {
		return errors.New(errors.ErrConfig,
			"reconnect delays must be positive", "")
	}
	if c.Reconnect.MaxBackoff < c.Reconnect.Base {
		return errors.New(errors.ErrConfig,
			"reconnect.max_backoff is shorter than reconnect.base",
			"Raise reconnect.max_backoff or lower reconnect.base")
	}
	return nil
}

// InitialPeriod returns the parsed startup period. Validate has already
// rejected unknown values.
func (c *Config) InitialPeriod() model.Period {
	p, _ := model.ParsePeriod(c.Period)
	return p
}

// YAML renders the effective config with durations in Go syntax.
func (c *Config) YAML() (string, error) {
	type shown struct {
		BaseURL        string `yaml:"base_url"`
		Period         string `yaml:"period"`
		RequestTimeout string `yaml:"request_timeout"`
		Reconnect      struct {
			Base       string `yaml:"base"`
			MaxBackoff string `yaml:"max_backoff"`
		} `yaml:"reconnect"`
		MetricsAddr string `yaml:"metrics_addr"`
		LogFile     string `yaml:"log_file"`
		NoColor     bool   `yaml:"no_color"`
		Plain       bool   `yaml:"plain"`
	}

	s := shown{
		BaseURL:        c.BaseURL,
		Period:         c.InitialPeriod().String(),
		RequestTimeout: c.RequestTimeout.String(),
		MetricsAddr:    c.MetricsAddr,
		LogFile:        c.LogFile,
		NoColor:        c.NoColor,
		Plain:          c.Plain,
	}
	s.Reconnect.Base = c.Reconnect.Base.String()
	s.Reconnect.MaxBackoff = c.Reconnect.MaxBackoff.String()

	out, err := yaml.Marshal(s)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Failed to render config", "")
	}
	return string(out), nil
}
