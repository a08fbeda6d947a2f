package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// SdkVersion is part of the key of every cached contract ABI.
const SdkVersion = "2.3.0"

type Network string

const (
	NetworkLocal       Network = "local"
	NetworkDevelopment Network = "development"
	NetworkProduction  Network = "production"
)

var requestUrls = map[Network]string{
	NetworkLocal:       "http://localhost:3333",
	NetworkDevelopment: "https://ecs-dev.cargo.engineering",
	NetworkProduction:  "https://api3.cargo.build",
}

var (
	ErrInvalidNetwork = errors.New("not a valid network")
	ErrInvalidOption  = errors.New("not a valid Cargo option")
)

type Cargo struct {
	Network    Network  `toml:"network"`
	Rpcs       []string `toml:"rpcs"`
	ChainId    int64    `toml:"chain_id"`
	PrivateKey string   `toml:"private_key"`

	// Confirmation tracking
	PollIntervalMs     int    `toml:"poll_interval_ms"`
	RpcTimeoutMs       int    `toml:"rpc_timeout_ms"`
	ConfirmationDepth  uint64 `toml:"confirmation_depth"`
	MaxPollAttempts    int    `toml:"max_poll_attempts"`
	MaxPollDurationMs  int    `toml:"max_poll_duration_ms"`
	CompletedCacheSize int    `toml:"completed_cache_size"`

	// Submission
	EstimateGas              bool `toml:"estimate_gas"`
	GasBumpPercent           int  `toml:"gas_bump_percent"`
	GasPriceUpdateIntervalMs int  `toml:"gas_price_update_interval_ms"`
	CheckReceipt             bool `toml:"check_receipt"`

	// Session store. DbPath is used by sqlite3, the other Db fields by mysql.
	DbDriver   string `toml:"db_driver"`
	DbPath     string `toml:"db_path"`
	DbHost     string `toml:"db_host"`
	DbPort     int    `toml:"db_port"`
	DbUsername string `toml:"db_username"`
	DbPassword string `toml:"db_password"`
	DbSchema   string `toml:"db_schema"`

	ServerPort int `toml:"server_port"`
}

// Default returns the configuration used when no option is given.
func Default() Cargo {
	return Cargo{
		Network:                  NetworkDevelopment,
		Rpcs:                     []string{"http://localhost:8545"},
		ChainId:                  1,
		PollIntervalMs:           1000,
		RpcTimeoutMs:             10_000,
		ConfirmationDepth:        0,
		CompletedCacheSize:       10_000,
		GasBumpPercent:           12,
		GasPriceUpdateIntervalMs: 60_000,
		DbDriver:                 "sqlite3",
		DbPath:                   ":memory:",
		ServerPort:               25456,
	}
}

func (c Cargo) Validate() error {
	if _, ok := requestUrls[c.Network]; !ok {
		return fmt.Errorf("%s is %w", c.Network, ErrInvalidNetwork)
	}

	if len(c.Rpcs) == 0 {
		return fmt.Errorf("at least one rpc url is required")
	}

	for _, rpc := range c.Rpcs {
		if strings.TrimSpace(rpc) == "" {
			return fmt.Errorf("rpc url cannot be empty")
		}
	}

	switch {
	case c.PollIntervalMs <= 0:
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	case c.RpcTimeoutMs <= 0:
		return fmt.Errorf("rpc_timeout_ms must be positive, got %d", c.RpcTimeoutMs)
	case c.MaxPollAttempts < 0:
		return fmt.Errorf("max_poll_attempts cannot be negative, got %d", c.MaxPollAttempts)
	case c.MaxPollDurationMs < 0:
		return fmt.Errorf("max_poll_duration_ms cannot be negative, got %d", c.MaxPollDurationMs)
	case c.CompletedCacheSize <= 0:
		return fmt.Errorf("completed_cache_size must be positive, got %d", c.CompletedCacheSize)
	case c.GasBumpPercent < 0:
		return fmt.Errorf("gas_bump_percent cannot be negative, got %d", c.GasBumpPercent)
	}

	switch c.DbDriver {
	case "sqlite3", "":
	case "mysql":
		if c.DbHost == "" || c.DbSchema == "" {
			return fmt.Errorf("db_host and db_schema are required for mysql")
		}
	default:
		return fmt.Errorf("unknown db_driver %s", c.DbDriver)
	}

	return nil
}

// RequestUrl returns the marketplace backend url of the configured network.
func (c Cargo) RequestUrl() string {
	return requestUrls[c.Network]
}

func (c Cargo) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c Cargo) RpcTimeout() time.Duration {
	return time.Duration(c.RpcTimeoutMs) * time.Millisecond
}

func (c Cargo) MaxPollDuration() time.Duration {
	return time.Duration(c.MaxPollDurationMs) * time.Millisecond
}

func (c Cargo) GasPriceUpdateInterval() time.Duration {
	return time.Duration(c.GasPriceUpdateIntervalMs) * time.Millisecond
}

// Load reads a toml config file on top of the defaults. Unknown keys are rejected. Environment
// variables (optionally from a .env file) override file values.
func Load(path string) (Cargo, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, err
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("%s is %w", undecoded[0].String(), ErrInvalidOption)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// ApplyEnv loads .env (if present) and overrides cfg with CARGO_* variables.
func ApplyEnv(cfg *Cargo) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	if v := os.Getenv("CARGO_NETWORK"); v != "" {
		cfg.Network = Network(v)
	}
	if v := os.Getenv("CARGO_RPC_URL"); v != "" {
		cfg.Rpcs = strings.Split(v, ",")
	}
	if v := os.Getenv("CARGO_PRIVATE_KEY"); v != "" {
		cfg.PrivateKey = v
	}
	if v := os.Getenv("CARGO_DB_PATH"); v != "" {
		cfg.DbPath = v
	}
	if v := os.Getenv("CARGO_CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CARGO_CHAIN_ID %s: %w", v, err)
		}
		cfg.ChainId = id
	}

	return nil
}
