// Package config defines the routeweather command line and environment
// configuration. Flags take precedence over environment variables, which
// take precedence over a .env file in the working directory.
package config

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/lox/routeweather/internal/forecast"
)

type Config struct {
	Port      string `help:"HTTP server port." default:"8080" env:"PORT" validate:"required,numeric"`
	LogLevel  string `help:"Log level." default:"info" enum:"debug,info,warn,error" env:"LOG_LEVEL"`
	LogFormat string `help:"Log format." default:"text" enum:"text,json" env:"LOG_FORMAT"`

	WeatherURL   string        `name:"weather-url" help:"Open-Meteo forecast endpoint." default:"https://api.open-meteo.com/v1/forecast" env:"WEATHER_API_URL" validate:"required,url"`
	FetchTimeout time.Duration `help:"Timeout for a single weather API call." default:"10s" env:"WEATHER_FETCH_TIMEOUT" validate:"gt=0"`
	FetchRetries uint          `help:"Retries for 429/5xx weather API responses." default:"0" env:"WEATHER_FETCH_RETRIES" validate:"lte=5"`

	ProbeAddr    string        `help:"host:port dialled to check connectivity." default:"www.google.com:80" env:"CONNECTIVITY_PROBE_ADDR" validate:"required,hostname_port"`
	ProbeTimeout time.Duration `help:"Connectivity probe timeout." default:"5s" env:"CONNECTIVITY_PROBE_TIMEOUT" validate:"gt=0"`

	ChartWidth  int `help:"Chart width in pixels." default:"820" env:"CHART_WIDTH" validate:"gte=320,lte=4000"`
	ChartHeight int `help:"Chart height in pixels." default:"460" env:"CHART_HEIGHT" validate:"gte=240,lte=4000"`

	Thresholds ThresholdsConfig `embed:"" prefix:"bad-"`
}

// ThresholdsConfig holds the bad-weather policy.
type ThresholdsConfig struct {
	TempMin     float64 `help:"Temperature below this (°C) is bad." default:"0" env:"BAD_TEMP_MIN" validate:"ltfield=TempMax"`
	TempMax     float64 `help:"Temperature above this (°C) is bad." default:"35" env:"BAD_TEMP_MAX"`
	WindMax     float64 `help:"Wind speed above this (km/h) is bad." default:"50" env:"BAD_WIND_MAX" validate:"gte=0"`
	PrecipMax   float64 `help:"Precipitation probability above this (%) is bad." default:"70" env:"BAD_PRECIP_MAX" validate:"gte=0,lte=100"`
	HumidityMin float64 `help:"Humidity below this (%) is bad." default:"10" env:"BAD_HUMIDITY_MIN" validate:"gte=0,ltfield=HumidityMax"`
	HumidityMax float64 `help:"Humidity above this (%) is bad." default:"90" env:"BAD_HUMIDITY_MAX" validate:"lte=100"`
}

func (t ThresholdsConfig) Thresholds() forecast.Thresholds {
	return forecast.Thresholds{
		TempMin:     t.TempMin,
		TempMax:     t.TempMax,
		WindMax:     t.WindMax,
		PrecipMax:   t.PrecipMax,
		HumidityMin: t.HumidityMin,
		HumidityMax: t.HumidityMax,
	}
}

// Load reads an optional .env file, parses args and validates the result.
func Load(args []string, options ...kong.Option) (*Config, error) {
	// Missing .env is fine; existing environment variables win.
	_ = godotenv.Load()

	var cfg Config
	options = append([]kong.Option{
		kong.Name("routeweather"),
		kong.Description("Compare current weather at the start and end of a route."),
	}, options...)
	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, fmt.Errorf("build parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
