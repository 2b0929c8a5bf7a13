package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/send2-name/delegate2name-api/networks"
)

const (
	DefaultPort         = 8080
	DefaultStageTimeout = 2 * time.Second
	CustomNodeName      = "custom-node"
)

var DefaultFlows = []string{"op", "arb"}

// ShareConfig controls the cast composer links of share buttons.
type ShareConfig struct {
	ComposeURL string `yaml:"compose_url,omitempty"`
	Credit     string `yaml:"credit,omitempty"`
}

// Config of the frame server. It is loaded once at start and never
// changed afterwards.
type Config struct {
	Port      int    `yaml:"port"`
	LogFormat string `yaml:"log_format"` // "json" or "console"

	AirstackAPIKey string `yaml:"airstack_api_key"`
	AirstackURL    string `yaml:"airstack_url,omitempty"`
	HubValidateURL string `yaml:"hub_validate_url,omitempty"`
	// ValidateSignatures sends signed envelopes to the hub. Results are
	// only logged.
	ValidateSignatures bool   `yaml:"validate_signatures"`
	ENSDataURL         string `yaml:"ensdata_url,omitempty"`
	MoralisAPIKey      string `yaml:"moralis_api_key,omitempty"`
	MoralisURL         string `yaml:"moralis_url,omitempty"`

	StageTimeout time.Duration `yaml:"stage_timeout"`
	NameSuffixes []string      `yaml:"name_suffixes,omitempty"`

	// Flows lists the network slugs a delegate flow is served for.
	Flows []string `yaml:"flows"`
	// Networks adds networks or replaces built-in ones with the same chain
	// id.
	Networks []networks.Config `yaml:"networks,omitempty"`
	// Nodes overrides the RPC nodes of a network, keyed by network name.
	Nodes map[string]map[string]string `yaml:"nodes,omitempty"`

	Share ShareConfig `yaml:"share,omitempty"`
}

func Default() Config {
	return Config{
		Port:               DefaultPort,
		LogFormat:          "json",
		ValidateSignatures: true,
		StageTimeout:       DefaultStageTimeout,
		Flows:              append([]string{}, DefaultFlows...),
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		err := godotenv.Load(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the variables getenv knows about.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	if port := get("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT env variable: %w", err)
		}
		c.Port = p
	}
	if v := get("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := get("AIRSTACK_API_KEY"); v != "" {
		c.AirstackAPIKey = v
	}
	if v := get("MORALIS_API_KEY"); v != "" {
		c.MoralisAPIKey = v
	}
	if v := get("STAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STAGE_TIMEOUT env variable: %w", err)
		}
		c.StageTimeout = d
	}
	if v := get("FLOWS"); v != "" {
		c.Flows = strings.Split(v, ",")
		for i := range c.Flows {
			c.Flows[i] = strings.TrimSpace(c.Flows[i])
		}
	}

	registry, err := c.Registry()
	if err != nil {
		return err
	}
	for _, n := range registry.Networks() {
		if n.GetNodeVariableName() == "" {
			continue
		}
		if node := get(n.GetNodeVariableName()); node != "" {
			if c.Nodes == nil {
				c.Nodes = map[string]map[string]string{}
			}
			if c.Nodes[n.GetName()] == nil {
				c.Nodes[n.GetName()] = map[string]string{}
			}
			c.Nodes[n.GetName()][CustomNodeName] = node
		}
	}
	return nil
}

// Registry returns the built-in networks merged with the configured ones.
func (c Config) Registry() (*networks.Registry, error) {
	custom := []networks.Network{}
	for _, nc := range c.Networks {
		if err := nc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", nc.Name, err)
		}
		custom = append(custom, networks.NewGenericNetwork(nc))
	}
	return networks.NewRegistry(networks.BuiltinNetworks(), custom...)
}

// NodesFor returns the RPC nodes to read n from: its default nodes plus
// the configured ones, which win on name clashes.
func (c Config) NodesFor(n networks.Network) map[string]string {
	nodes := map[string]string{}
	for name, url := range n.GetDefaultNodes() {
		nodes[name] = url
	}
	for name, url := range c.Nodes[n.GetName()] {
		nodes[name] = url
	}
	return nodes
}

// Validate checks everything the server needs before it starts serving.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("unsupported log format: %s (expected: json or console)", c.LogFormat)
	}
	if c.AirstackAPIKey == "" {
		return errors.New("airstack API key required (use airstack_api_key or AIRSTACK_API_KEY env)")
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("invalid stage timeout: %s", c.StageTimeout)
	}
	if len(c.Flows) == 0 {
		return errors.New("no flows configured")
	}

	registry, err := c.Registry()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, slug := range c.Flows {
		n, err := registry.GetNetwork(slug)
		if err != nil {
			return fmt.Errorf("flow %q: %w", slug, err)
		}
		if seen[n.GetSlug()] {
			return fmt.Errorf("flow %q configured twice", slug)
		}
		seen[n.GetSlug()] = true
		if !n.HasDelegateToken() {
			return fmt.Errorf("flow %q: network '%s' has no delegate token", slug, n.GetName())
		}
		if len(c.NodesFor(n)) == 0 {
			return fmt.Errorf("flow %q: network '%s' has no RPC node", slug, n.GetName())
		}
	}
	return nil
}
