package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every recognized option of a run.
type Config struct {
	StartMonth          string `mapstructure:"start_month"`
	EndMonth            string `mapstructure:"end_month"`
	InactivityDays      int    `mapstructure:"inactivity_days"`
	IncludeDeadMonetary bool   `mapstructure:"include_dead_monetary"`
	Workers             int    `mapstructure:"workers"`

	Input          string `mapstructure:"input"`
	DSN            string `mapstructure:"dsn"`
	Table          string `mapstructure:"table"`
	CustomerColumn string `mapstructure:"customer_column"`
	DateColumn     string `mapstructure:"date_column"`
	AmountColumn   string `mapstructure:"amount_column"`

	Output    string `mapstructure:"output"`
	Delimiter string `mapstructure:"delimiter"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Defaults returns the built-in configuration. end_month is the month before now.
func Defaults(now time.Time) Config {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Config{
		StartMonth:     "012020",
		EndMonth:       fmt.Sprintf("%02d%04d", int(prev.Month()), prev.Year()),
		InactivityDays: 95,
		Workers:        1,
		Table:          "transactions",
		CustomerColumn: "partner",
		DateColumn:     "rep_date",
		AmountColumn:   "monetary",
		Output:         "rfm_segments.csv",
		Delimiter:      ",",
		LogLevel:       "info",
		LogFormat:      "json",
		Verbose:        true,
	}
}

// Load layers defaults, an optional YAML file (rfm.yml in . or /etc/rfm-monthly,
// or path when set), .env and RFM_* environment variables.
func Load(path string, now time.Time) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	d := Defaults(now)
	v.SetDefault("start_month", d.StartMonth)
	v.SetDefault("end_month", d.EndMonth)
	v.SetDefault("inactivity_days", d.InactivityDays)
	v.SetDefault("include_dead_monetary", d.IncludeDeadMonetary)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("input", d.Input)
	v.SetDefault("dsn", d.DSN)
	v.SetDefault("table", d.Table)
	v.SetDefault("customer_column", d.CustomerColumn)
	v.SetDefault("date_column", d.DateColumn)
	v.SetDefault("amount_column", d.AmountColumn)
	v.SetDefault("output", d.Output)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("verbose", d.Verbose)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("rfm")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/rfm-monthly")
	}

	v.SetEnvPrefix("RFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first unusable option.
func (c Config) Validate() error {
	if c.Input == "" && c.DSN == "" {
		return errors.New("missing -in or -dsn")
	}
	if c.Input != "" && c.DSN != "" {
		return errors.New("-in and -dsn are mutually exclusive")
	}
	if c.StartMonth == "" || c.EndMonth == "" {
		return errors.New("missing -start_month or -end_month")
	}
	if c.InactivityDays <= 0 {
		return fmt.Errorf("inactivity_days must be positive, got %d", c.InactivityDays)
	}
	if c.Output == "" {
		return errors.New("missing -out")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune, ',' when unset.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}
