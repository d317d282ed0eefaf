package config

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/hostsearch/pkg/hosts"
)

//go:embed config.toml.sample
var configTemplate string

// Environment variables that override the file.
const (
	EnvAPIID     = "CENSYS_API_ID"
	EnvAPISecret = "CENSYS_API_SECRET"
	EnvPort      = "PORT"
	EnvProxyURL  = "HOSTSEARCH_PROXY_URL"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Censys CensysConfig `toml:"censys"`
	Client ClientConfig `toml:"client"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type CensysConfig struct {
	APIID     string `toml:"api_id"`
	APISecret string `toml:"api_secret"`
	// URL is the hosts search endpoint. Empty means the public Censys API.
	URL string `toml:"url,omitempty"`
}

type ClientConfig struct {
	// ProxyURL is the hostsearch backend the frontends talk to. Empty means
	// the local server address.
	ProxyURL     string `toml:"proxy_url,omitempty"`
	PerPage      int    `toml:"per_page"`
	VirtualHosts string `toml:"virtual_hosts"`
	Sort         string `toml:"sort"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Client: ClientConfig{
			PerPage:      hosts.DefaultPerPage,
			VirtualHosts: hosts.DefaultVirtualHosts,
			Sort:         hosts.DefaultSort,
		},
	}
}

// LoadConfig reads configPath, fills defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIID); ok {
		c.Censys.APIID = v
	}
	if v, ok := lookup(EnvAPISecret); ok {
		c.Censys.APISecret = v
	}
	if v, ok := lookup(EnvProxyURL); ok {
		c.Client.ProxyURL = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Client.PerPage == 0 {
		c.Client.PerPage = hosts.DefaultPerPage
	}
	if c.Client.VirtualHosts == "" {
		c.Client.VirtualHosts = hosts.DefaultVirtualHosts
	}
	if c.Client.Sort == "" {
		c.Client.Sort = hosts.DefaultSort
	}
}

func (c *Config) Validate() error {
	if !hosts.ValidPort(c.Server.Port) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.PerPage < 0 {
		return fmt.Errorf("invalid per_page %d", c.Client.PerPage)
	}
	return nil
}

// HasCredentials reports whether both Censys credentials are set.
func (c *Config) HasCredentials() bool {
	return c.Censys.APIID != "" && c.Censys.APISecret != ""
}

// Addr is the listen address of the backend.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ProxyURL is the backend base URL used by the search and tui commands.
func (c *Config) ProxyURL() string {
	if c.Client.ProxyURL != "" {
		return strings.TrimRight(c.Client.ProxyURL, "/")
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Credentials live in this file.
	return os.WriteFile(configPath, data, 0600)
}

// SaveTemplateConfig writes the commented sample config.
func SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0600)
}

// GetConfigDir returns the configuration directory for hostsearch
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "hostsearch"), nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
