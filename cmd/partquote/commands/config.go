package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"partquote/lib/aggregate"
	"partquote/lib/chrono"
	"partquote/lib/configutil"
	"partquote/lib/supplier"
	"partquote/lib/supplier/digikey"
	"partquote/lib/supplier/jsonapi"
	"partquote/lib/supplier/webscrape"
	"partquote/lib/telemetry"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DigiKey     *digikey.Config    `json:"digikey"`
	Scrapers    []webscrape.Config `json:"scrapers" validate:"dive"`
	Apis        []jsonapi.Config   `json:"apis" validate:"dive"`
	Parts       []aggregate.Part   `json:"parts" validate:"dive"`
	Concurrency int                `json:"concurrency" validate:"gte=0"`
}

// secrets that may come from the environment (or a .env file) instead of the
// config file, ex. PARTQUOTE_DIGIKEY_CLIENT_ID
type envSecrets struct {
	DigikeyClientId     string `envconfig:"DIGIKEY_CLIENT_ID"`
	DigikeyClientSecret string `envconfig:"DIGIKEY_CLIENT_SECRET"`
}

const envPrefix = "PARTQUOTE"

func applyEnv(cfg *Config) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var secrets envSecrets
	err = envconfig.Process(envPrefix, &secrets)
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if secrets.DigikeyClientId == "" && secrets.DigikeyClientSecret == "" {
		return nil
	}
	if cfg.DigiKey == nil {
		cfg.DigiKey = &digikey.Config{}
	}
	if secrets.DigikeyClientId != "" {
		cfg.DigiKey.ClientId = secrets.DigikeyClientId
	}
	if secrets.DigikeyClientSecret != "" {
		cfg.DigiKey.ClientSecret = secrets.DigikeyClientSecret
	}
	return nil
}

func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file found, relying on the environment", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	err = applyEnv(&cfg)
	if err != nil {
		return Config{}, err
	}

	err = configutil.Validate(cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var errNoSources = errors.New("no suppliers configured, add digikey credentials, scrapers or apis to the config")

func buildSources(cfg Config, api telemetry.API) ([]supplier.Source, error) {
	var sources []supplier.Source
	if cfg.DigiKey != nil {
		sources = append(sources, digikey.NewClient(*cfg.DigiKey, chrono.StandardImpl{}, api))
	}
	for _, scraper := range cfg.Scrapers {
		sources = append(sources, webscrape.NewClient(scraper, api))
	}
	for _, apiConfig := range cfg.Apis {
		sources = append(sources, jsonapi.NewClient(apiConfig, api))
	}
	if len(sources) == 0 {
		return nil, errNoSources
	}
	return sources, nil
}

func newAggregator(cfg Config) (*aggregate.Aggregator, error) {
	api := telemetry.SlogAPI{}
	sources, err := buildSources(cfg, api)
	if err != nil {
		return nil, err
	}
	return aggregate.New(
		sources,
		aggregate.WithConcurrency(cfg.Concurrency),
		aggregate.WithTelemetry(api),
	), nil
}
