package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

/*
Service address: RUN_ADDRESS or -a, falls back to :$PORT when PORT is set.
Processor API base: MONO_API_BASE or -r.
Database DSN: DATABASE_URI or -d, empty keeps orders in memory.
*/

type ServerConfig struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	Port        string `env:"PORT"`
	MonoAPIBase string `env:"MONO_API_BASE"`
	DatabaseDSN string `env:"DATABASE_URI"`

	MonoToken     string        `env:"MONO_TOKEN"`
	MonoTimeout   time.Duration `env:"MONO_TIMEOUT" envDefault:"15s"`
	Currency      int           `env:"MONO_CCY" envDefault:"980"`
	BaseURL       string        `env:"BASE_URL"`
	WebhookURL    string        `env:"MONO_WEBHOOK_URL"`
	RedirectURL   string        `env:"MONO_REDIRECT_URL"`
	WebhookSecret string        `env:"MONO_WEBHOOK_SECRET"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"0s"`
	FinalStatuses   []string      `env:"FINAL_STATUSES" envSeparator:"," envDefault:"success,failure,expired,reversed"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`

	AdminLogin          string `env:"ADMIN_LOGIN"`
	AdminPasswordHash   string `env:"ADMIN_PASSWORD_HASH"`
	Secret              string `env:"SECRET"`
	AuthCookieExpiresIn int    `env:"AUTH_COOKIE_TTL" envDefault:"3600"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func NewConfig() (*ServerConfig, error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (*ServerConfig, error) {
	var params ServerConfig
	err := env.Parse(&params)
	if err != nil {
		return nil, err
	}

	var commandLineParams ServerConfig

	fs.StringVar(&commandLineParams.RunAddress, "a", ":8080", "Base address to listen on")
	fs.StringVar(&commandLineParams.MonoAPIBase, "r", "https://api.monobank.ua", "Monobank API address")
	fs.StringVar(&commandLineParams.DatabaseDSN, "d", "", "Database DSN, orders are kept in memory when empty")
	err = fs.Parse(args)
	if err != nil {
		return nil, err
	}

	if params.RunAddress == "" {
		if params.Port != "" {
			params.RunAddress = ":" + params.Port
		} else {
			params.RunAddress = commandLineParams.RunAddress
		}
	}
	if params.MonoAPIBase == "" {
		params.MonoAPIBase = commandLineParams.MonoAPIBase
	}
	if params.DatabaseDSN == "" {
		params.DatabaseDSN = commandLineParams.DatabaseDSN
	}
	params.BaseURL = strings.TrimRight(params.BaseURL, "/")
	params.WebhookURL = strings.TrimSpace(params.WebhookURL)
	params.RedirectURL = strings.TrimSpace(params.RedirectURL)

	return &params, nil
}

func (c *ServerConfig) AdminEnabled() bool {
	return c.AdminLogin != "" && c.AdminPasswordHash != "" && c.Secret != ""
}
