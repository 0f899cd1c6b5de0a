// Package config defines the execution engine's configuration. Config is
// loaded from a YAML file with sensitive fields overridable via
// LATENTSPEED_* environment variables, the same load/override split the
// teacher uses for Polymarket credentials.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, mapping directly onto the YAML
// file structure.
type Config struct {
	Transport TransportConfig        `mapstructure:"transport"`
	Engine    EngineConfig           `mapstructure:"engine"`
	Signer    SignerConfig           `mapstructure:"signer"`
	Venues    map[string]VenueConfig `mapstructure:"venues"`
	Logging   LoggingConfig          `mapstructure:"logging"`
	Snapshot  SnapshotConfig         `mapstructure:"snapshot"`
}

// TransportConfig sets the ingress PULL and egress PUB bind addresses (§6).
type TransportConfig struct {
	IngressBind string `mapstructure:"ingress_bind"`
	EgressBind  string `mapstructure:"egress_bind"`
}

// EngineConfig tunes the execution core's fixed-capacity resources and
// thread timings (§4.A, §4.H).
type EngineConfig struct {
	PendingCapacity    int           `mapstructure:"pending_capacity"`
	ProcessedCapacity  int           `mapstructure:"processed_capacity"`
	OrderPoolCapacity  int           `mapstructure:"order_pool_capacity"`
	PublishQueueCap    int           `mapstructure:"publish_queue_capacity"`
	CallbackQueueCap   int           `mapstructure:"callback_queue_capacity"`
	StatsInterval      time.Duration `mapstructure:"stats_interval"`
	CallTimeout        time.Duration `mapstructure:"call_timeout"`
	PublisherDrainWait time.Duration `mapstructure:"publisher_drain_wait"`
	PinThreads         bool          `mapstructure:"pin_threads"`
	PinReceiverCore    int           `mapstructure:"pin_receiver_core"`
	PinPublisherCore   int           `mapstructure:"pin_publisher_core"`
	RealtimePriority   int           `mapstructure:"realtime_priority"`
}

// SignerConfig points at the signer subprocess binary (§9, "cryptographic
// signer outsourced to a subprocess").
type SignerConfig struct {
	Command        string        `mapstructure:"command"`
	Args           []string      `mapstructure:"args"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// VenueConfig holds one venue's connection parameters. Credentials
// themselves are never read from this struct's zero value — Load overrides
// them from LATENTSPEED_<VENUE>_* environment variables per §6.
type VenueConfig struct {
	UserAddress string `mapstructure:"user_address"`
	PrivateKey  string `mapstructure:"private_key"`
	UseTestnet  bool   `mapstructure:"use_testnet"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SnapshotConfig controls the diagnostic snapshot writer (internal/core).
type SnapshotConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Dir      string        `mapstructure:"dir"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads config from a YAML file and applies LATENTSPEED_* environment
// overrides for per-venue credentials, matching §6's environment-inputs
// contract.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("LATENTSPEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for venue, vc := range cfg.Venues {
		prefix := "LATENTSPEED_" + strings.ToUpper(venue) + "_"
		if addr := os.Getenv(prefix + "USER_ADDRESS"); addr != "" {
			vc.UserAddress = addr
		}
		if key := os.Getenv(prefix + "PRIVATE_KEY"); key != "" {
			vc.PrivateKey = key
		}
		switch os.Getenv(prefix + "USE_TESTNET") {
		case "true", "1":
			vc.UseTestnet = true
		case "false", "0":
			vc.UseTestnet = false
		}
		cfg.Venues[venue] = vc
	}

	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Transport.IngressBind == "" {
		return fmt.Errorf("transport.ingress_bind is required")
	}
	if c.Transport.EgressBind == "" {
		return fmt.Errorf("transport.egress_bind is required")
	}
	if len(c.Venues) == 0 {
		return fmt.Errorf("at least one entry under venues is required")
	}
	for name, vc := range c.Venues {
		if vc.PrivateKey == "" && c.Signer.Command == "" {
			return fmt.Errorf("venues.%s.private_key or signer.command is required", name)
		}
	}
	if c.Engine.PendingCapacity < 0 {
		return fmt.Errorf("engine.pending_capacity must be >= 0")
	}
	return nil
}
