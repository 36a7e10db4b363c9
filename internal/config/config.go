// Package config loads the finratios configuration from YAML files, .env
// files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINRATIOS_OUTPUT_DIR.
const EnvPrefix = "FINRATIOS"

// Config represents the complete application configuration.
type Config struct {
	Companies []CompanyConfig `mapstructure:"companies" yaml:"companies" validate:"dive"`
	Input     InputConfig     `mapstructure:"input"     yaml:"input"`
	Prices    PricesConfig    `mapstructure:"prices"    yaml:"prices"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Policy    PolicyConfig    `mapstructure:"policy"    yaml:"policy"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// CompanyConfig names one ticker and its quarter offset.
type CompanyConfig struct {
	Ticker        string   `mapstructure:"ticker"         yaml:"ticker"         validate:"required"`
	QuarterOffset int      `mapstructure:"quarter_offset" yaml:"quarter_offset" validate:"oneof=-1 0 1"`
	Peers         []string `mapstructure:"peers"          yaml:"peers"`
}

// InputConfig selects the statement source.
type InputConfig struct {
	Format    string `mapstructure:"format"     yaml:"format"     validate:"oneof=csv html yahoo"`
	Dir       string `mapstructure:"dir"        yaml:"dir"`
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"   validate:"omitempty,url"`
	Suffix    string `mapstructure:"suffix"     yaml:"suffix"`                      // exchange suffix, yahoo only
	CacheTTL  int    `mapstructure:"cache_ttl"  yaml:"cache_ttl"  validate:"gte=0"` // seconds, yahoo only
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // requests per second, remote sources only
}

// PricesConfig selects the market close lookup.
type PricesConfig struct {
	Source    string `mapstructure:"source"     yaml:"source"     validate:"oneof=csv yahoo none"`
	Dir       string `mapstructure:"dir"        yaml:"dir"`
	Suffix    string `mapstructure:"suffix"     yaml:"suffix"`                      // Yahoo exchange suffix, e.g. ".NS"
	CacheTTL  int    `mapstructure:"cache_ttl"  yaml:"cache_ttl"  validate:"gte=0"` // seconds
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
}

// OutputConfig controls where and how tables are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"     yaml:"dir"     validate:"required"`
	Formats []string `mapstructure:"formats" yaml:"formats" validate:"min=1,dive,oneof=csv json yaml text svg"`
}

// PolicyConfig controls year selection and undefined ratio handling.
type PolicyConfig struct {
	MinYear             int  `mapstructure:"min_year"              yaml:"min_year"`
	MinConsolidatedYear int  `mapstructure:"min_consolidated_year" yaml:"min_consolidated_year"`
	MinQuarters         int  `mapstructure:"min_quarters"          yaml:"min_quarters"          validate:"gte=0,lte=4"`
	StrictRatios        bool `mapstructure:"strict_ratios"         yaml:"strict_ratios"`
	IncludeCashFlow     bool `mapstructure:"include_cash_flow"     yaml:"include_cash_flow"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.finratios/config.yaml
//  3. /etc/finratios/config.yaml
//
// Environment variables override config file values.
// Format: FINRATIOS_<SECTION>_<KEY>, e.g. FINRATIOS_PRICES_SOURCE
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finratios"))
	v.AddConfigPath("/etc/finratios")

	// Config file not found is fine: defaults + env vars
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := overrideFromEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets the defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.format", "csv")
	v.SetDefault("input.dir", "data/statements")
	v.SetDefault("input.cache_ttl", 3600)
	v.SetDefault("input.rate_limit", 2)

	v.SetDefault("prices.source", "csv")
	v.SetDefault("prices.dir", "data/prices")
	v.SetDefault("prices.cache_ttl", 3600)
	v.SetDefault("prices.rate_limit", 2)

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.formats", []string{"csv"})

	v.SetDefault("policy.min_year", 2000)
	v.SetDefault("policy.min_consolidated_year", 2001)
	v.SetDefault("policy.min_quarters", 0)
	v.SetDefault("policy.strict_ratios", true)
	v.SetDefault("policy.include_cash_flow", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads the company list from FINRATIOS_TICKERS, a comma
// separated list of TICKER or TICKER:OFFSET entries. It replaces the
// configured companies.
func overrideFromEnv(cfg *Config) error {
	raw := os.Getenv(EnvPrefix + "_TICKERS")
	if raw == "" {
		return nil
	}
	companies, err := ParseCompanies(strings.Split(raw, ","))
	if err != nil {
		return fmt.Errorf("%s_TICKERS: %w", EnvPrefix, err)
	}
	cfg.Companies = companies
	return nil
}

// ParseCompanies parses TICKER or TICKER:OFFSET entries. Blank entries are
// skipped.
func ParseCompanies(entries []string) ([]CompanyConfig, error) {
	var out []CompanyConfig
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		ticker, offsetStr, hasOffset := strings.Cut(e, ":")
		cc := CompanyConfig{Ticker: strings.ToUpper(strings.TrimSpace(ticker))}
		if hasOffset {
			offset, err := strconv.Atoi(strings.TrimSpace(offsetStr))
			if err != nil {
				return out, fmt.Errorf("company %q: bad quarter offset %q", e, offsetStr)
			}
			cc.QuarterOffset = offset
		}
		out = append(out, cc)
	}
	return out, nil
}

// Validate checks the configuration against its struct tags and the
// cross-field rules between sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Input.Format != "yahoo" && c.Input.Dir == "" && c.Input.BaseURL == "" {
		return errors.New("invalid config: input.dir or input.base_url is required")
	}
	if c.Input.BaseURL != "" && c.Input.Format != "html" {
		return errors.New("invalid config: input.base_url requires input.format html")
	}
	if c.Prices.Source == "csv" && c.Prices.Dir == "" {
		return errors.New("invalid config: prices.dir is required for the csv price source")
	}
	return nil
}

// Tickers returns the configured tickers in order.
func (c *Config) Tickers() []string {
	out := make([]string, len(c.Companies))
	for i, cc := range c.Companies {
		out[i] = cc.Ticker
	}
	return out
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
