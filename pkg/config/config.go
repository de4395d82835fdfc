package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		// CredsPath is the pebble directory holding opaque session
		// credentials. Empty disables persistence (pairing required on
		// every start).
		CredsPath string `yaml:"creds_path"`
	} `yaml:"storage"`
	History struct {
		Capacity Count `yaml:"capacity"`
	} `yaml:"history"`
	Webhook struct {
		URL   string  `yaml:"url"`
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"webhook"`
	Groups struct {
		TTL       Duration `yaml:"ttl"`
		SweepCron string   `yaml:"sweep_cron"`
	} `yaml:"groups"`
	Session struct {
		ReconnectDelay Duration `yaml:"reconnect_delay"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Defaults used when neither file, env nor flags say otherwise.
const (
	DefaultHistoryCapacity = 200
	DefaultGroupTTL        = 300 * time.Second
	DefaultReconnectDelay  = 2 * time.Second
)

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// HistoryCapacity returns the configured capacity clamped to at least 1.
func (c *Config) HistoryCapacity() int {
	n := c.History.Capacity.Int()
	if n <= 0 {
		return DefaultHistoryCapacity
	}
	return n
}

// GroupTTL returns the group metadata TTL with its default applied.
func (c *Config) GroupTTL() time.Duration {
	if d := c.Groups.TTL.Duration(); d > 0 {
		return d
	}
	return DefaultGroupTTL
}

// ReconnectDelay returns the delay before an automatic session re-entry.
func (c *Config) ReconnectDelay() time.Duration {
	if d := c.Session.ReconnectDelay.Duration(); d > 0 {
		return d
	}
	return DefaultReconnectDelay
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, credsPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	credsPtr := flag.String("creds", "./.wabridge-creds", "Pebble directory for session credentials")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *credsPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env var was used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("WABRIDGE_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("WABRIDGE_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("WABRIDGE_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("WABRIDGE_CREDS_PATH"); v != "" {
		envUsed = true
		cfg.Storage.CredsPath = v
	}
	if v := os.Getenv("WABRIDGE_WEBHOOK_URL"); v != "" {
		envUsed = true
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("WABRIDGE_WEBHOOK_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Webhook.RPS = f
		}
	}
	if v := os.Getenv("WABRIDGE_WEBHOOK_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Webhook.Burst = n
		}
	}
	if v := os.Getenv("WABRIDGE_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			envUsed = true
			cfg.History.Capacity = Count(n)
		}
	}
	if v := os.Getenv("WABRIDGE_GROUP_TTL"); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Groups.TTL = Duration(d)
		}
	}
	if v := os.Getenv("WABRIDGE_GROUP_SWEEP_CRON"); v != "" {
		envUsed = true
		cfg.Groups.SweepCron = v
	}
	if v := os.Getenv("WABRIDGE_RECONNECT_DELAY"); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Session.ReconnectDelay = Duration(d)
		}
	}
	if v := os.Getenv("WABRIDGE_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides. A missing file is not an error; env and defaults still
// apply. A file that exists but fails to parse is an error: starting on
// defaults would silently drop the operator's settings.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and WABRIDGE_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("WABRIDGE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
