// Package config builds the process-wide configuration from the
// environment, once at startup. Components receive it by value; nothing
// reads ambient environment state after construction.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration.
type Config struct {
	// RPCURL is the ledger-index endpoint base, e.g.
	// "https://mainnet.helius-rpc.com/?api-key=". The access key is
	// appended verbatim.
	RPCURL    string `mapstructure:"rpc_url"`
	RPCAPIKey string `mapstructure:"rpc_api_key"`

	// ListenPort is the API listen port.
	ListenPort string `mapstructure:"listen_port"`

	// MetricsPort is the Prometheus scrape port.
	MetricsPort string `mapstructure:"metrics_port"`

	// AnalyzeTimeout is the overall per-request time budget.
	AnalyzeTimeout time.Duration `mapstructure:"analyze_timeout"`

	// RPCTimeout bounds a single RPC round trip.
	RPCTimeout time.Duration `mapstructure:"rpc_timeout"`

	// PageInterval is the pause between account pages.
	PageInterval time.Duration `mapstructure:"page_interval"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the environment (RPC_URL, RPC_API_KEY,
// LISTEN_PORT, ...), applying defaults for everything optional.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("rpc_url", "")
	v.SetDefault("rpc_api_key", "")
	v.SetDefault("listen_port", "8080")
	v.SetDefault("metrics_port", "9090")
	v.SetDefault("analyze_timeout", 60*time.Second)
	v.SetDefault("rpc_timeout", 30*time.Second)
	v.SetDefault("page_interval", 100*time.Millisecond)
	v.SetDefault("log_level", "info")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC_URL is required")
	}

	return &cfg, nil
}

// Endpoint is the full RPC endpoint with the access key appended.
func (c *Config) Endpoint() string {
	return c.RPCURL + c.RPCAPIKey
}
