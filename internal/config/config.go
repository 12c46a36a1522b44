package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the long-form environment overrides, e.g.
// SP500_SERVER_PORT.
const EnvPrefix = "SP500"

// DefaultPath is read when $SP500_CONFIG is unset.
const DefaultPath = "config/sp500.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the dashboard services.
type Config struct {
	Storage   Storage   `yaml:"storage" envconfig:"STORAGE"`
	Server    Server    `yaml:"server" envconfig:"SERVER"`
	Alpaca    Alpaca    `yaml:"alpaca" envconfig:"ALPACA"`
	Logging   Logging   `yaml:"logging" envconfig:"LOGGING"`
	Gather    Gather    `yaml:"gather" envconfig:"GATHER"`
	Basket    Basket    `yaml:"basket" envconfig:"BASKET"`
	Dashboard Dashboard `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	Backend    string `yaml:"backend" envconfig:"BACKEND"` // parquet | sqlite
}

// Server holds network listener configuration.
type Server struct {
	Host           string  `yaml:"host" envconfig:"HOST"`
	Port           int     `yaml:"port" envconfig:"PORT"`
	GRPCPort       int     `yaml:"grpc_port" envconfig:"GRPC_PORT"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// Alpaca holds credentials and endpoints for the Alpaca APIs. The canonical
// SDK variables APCA_API_KEY_ID and APCA_API_SECRET_KEY are honoured.
type Alpaca struct {
	APIKey    string `yaml:"api_key" envconfig:"APCA_API_KEY_ID"`
	APISecret string `yaml:"api_secret" envconfig:"APCA_API_SECRET_KEY"`
	BaseURL   string `yaml:"base_url" envconfig:"BASE_URL"`
	DataURL   string `yaml:"data_url" envconfig:"DATA_URL"`
	Feed      string `yaml:"feed" envconfig:"FEED"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Gather controls how the basket history is fetched.
type Gather struct {
	Source          string `yaml:"source" envconfig:"SOURCE"` // alpaca | yahoo
	YahooURL        string `yaml:"yahoo_url" envconfig:"YAHOO_URL"`
	LookbackDays    int    `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
	BatchSize       int    `yaml:"batch_size" envconfig:"BATCH_SIZE"`
	MaxWorkers      int    `yaml:"max_workers" envconfig:"MAX_WORKERS"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min" envconfig:"RATE_LIMIT_PER_MIN"`
	MaxAttempts     int    `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	RefreshCron     string `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
}

// Basket is the fixed symbol universe and its sector mapping.
type Basket struct {
	Symbols     []string          `yaml:"symbols" envconfig:"SYMBOLS"`
	Sectors     map[string]string `yaml:"sectors" ignored:"true"`
	SectorsFile string            `yaml:"sectors_file" envconfig:"SECTORS_FILE"`
	Choices     []string          `yaml:"choices" envconfig:"CHOICES"`
}

// Dashboard holds engine and filter-control parameters.
type Dashboard struct {
	TopN      int     `yaml:"top_n" envconfig:"TOP_N"`
	PriceMin  float64 `yaml:"price_min" envconfig:"PRICE_MIN"`
	PriceMax  float64 `yaml:"price_max" envconfig:"PRICE_MAX"`
	PriceStep float64 `yaml:"price_step" envconfig:"PRICE_STEP"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Path returns $SP500_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("SP500_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML configuration file at path, applies environment
// overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Storage.DataDir, "data")
	setDefault(&c.Storage.SQLitePath, "data/sp500.db")
	setDefault(&c.Storage.Backend, "parquet")

	setDefault(&c.Server.Host, "0.0.0.0")
	setDefault(&c.Server.Port, 8080)
	setDefault(&c.Server.GRPCPort, 9090)
	setDefault(&c.Server.RateLimitRPS, 20.0)
	setDefault(&c.Server.RateLimitBurst, 40)

	setDefault(&c.Alpaca.BaseURL, "https://api.alpaca.markets")
	setDefault(&c.Alpaca.Feed, "sip")

	setDefault(&c.Logging.Level, "info")
	setDefault(&c.Logging.Format, "json")

	setDefault(&c.Gather.Source, "alpaca")
	setDefault(&c.Gather.LookbackDays, 365)
	setDefault(&c.Gather.BatchSize, 50)
	setDefault(&c.Gather.MaxWorkers, 4)
	setDefault(&c.Gather.RateLimitPerMin, 180)
	setDefault(&c.Gather.MaxAttempts, 3)

	setDefault(&c.Dashboard.TopN, 10)
	setDefault(&c.Dashboard.PriceMax, 500.0)
	setDefault(&c.Dashboard.PriceStep, 10.0)
}

func setDefault[T comparable](field *T, v T) {
	var zero T
	if *field == zero {
		*field = v
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case "parquet", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q: want parquet or sqlite", c.Storage.Backend))
	}
	switch c.Gather.Source {
	case "alpaca", "yahoo":
	default:
		errs = append(errs, fmt.Errorf("gather.source %q: want alpaca or yahoo", c.Gather.Source))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("server.grpc_port %d out of range", c.Server.GRPCPort))
	}
	if len(c.Basket.Symbols) == 0 {
		errs = append(errs, errors.New("basket.symbols is empty"))
	}
	if c.Dashboard.PriceMin > c.Dashboard.PriceMax {
		errs = append(errs, fmt.Errorf("dashboard.price_min %.2f exceeds price_max %.2f", c.Dashboard.PriceMin, c.Dashboard.PriceMax))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the HTTP listen address.
func (s Server) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// GRPCAddr returns the gRPC listen address, or "" when gRPC is disabled.
func (s Server) GRPCAddr() string {
	if s.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

// BasketSymbols returns the configured symbols upper-cased, in order,
// without duplicates.
func (c *Config) BasketSymbols() []string {
	seen := make(map[string]bool, len(c.Basket.Symbols))
	out := make([]string, 0, len(c.Basket.Symbols))
	for _, s := range c.Basket.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// SymbolChoices returns the symbols offered by the picker: the configured
// choices, or the first ten basket symbols.
func (c *Config) SymbolChoices() []string {
	if len(c.Basket.Choices) > 0 {
		return c.Basket.Choices
	}
	syms := c.BasketSymbols()
	return syms[:min(len(syms), 10)]
}
