package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
	"gopkg.in/yaml.v3"
)

// APIKey is one provider credential block.
type APIKey struct {
	Key string `json:"key" yaml:"key" validate:"required"`
}

// APIs groups the credentials of the providers that need one.
type APIs struct {
	WeatherAPI     APIKey `json:"weatherapi" yaml:"weatherapi"`
	VisualCrossing APIKey `json:"visual_crossing" yaml:"visual_crossing"`
}

// AppConfig is the assembled configuration. The first block mirrors the
// config file; the rest comes from the environment only.
type AppConfig struct {
	City      string   `json:"city" yaml:"city" validate:"required"`
	Country   string   `json:"country" yaml:"country"`
	Latitude  *float64 `json:"latitude" yaml:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" yaml:"longitude" validate:"required,gte=-180,lte=180"`
	Lang      string   `json:"lang" yaml:"lang" validate:"required"`
	Units     string   `json:"units" yaml:"units" validate:"oneof=metric imperial"`
	APIs      APIs     `json:"apis" yaml:"apis"`

	// CacheFile is the flat provider cache; empty keeps it in memory.
	// CacheTTL is its freshness limit.
	CacheFile string        `json:"-" yaml:"-"`
	CacheTTL  time.Duration `json:"-" yaml:"-" validate:"gt=0"`

	// HTTPTimeout bounds each upstream provider call.
	HTTPTimeout time.Duration `json:"-" yaml:"-" validate:"gt=0"`

	// WarmInterval controls how often the cache warm-up job runs (0 = disabled).
	WarmInterval time.Duration `json:"-" yaml:"-" validate:"gte=0"`

	Port           string `json:"-" yaml:"-"`
	LogLevel       string `json:"-" yaml:"-"`
	LogFormat      string `json:"-" yaml:"-"`
	GeocoderAPIKey string `json:"-" yaml:"-"`
}

var validate = validator.New()

// geocode resolves a city to coordinates. Replaced in tests.
var geocode = func(apiKey, city, country string) (float64, float64, error) {
	geocoder.ApiKey = apiKey
	location, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return 0, 0, err
	}
	return location.Latitude, location.Longitude, nil
}

// Load reads .env, the config file named by CONFIG_FILE (default config.json)
// and the environment, then validates the result.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return LoadFile(getenvDefault("CONFIG_FILE", "config.json"))
}

// LoadFile is Load with an explicit config file. A missing file is not an
// error; every field can come from the environment instead.
func LoadFile(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Lang:  "en",
		Units: "metric",
	}

	if err := readFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := resolveCoordinates(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readFile(path string, cfg *AppConfig) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, cfg)
	default:
		err = json.Unmarshal(raw, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.City, "WEATHER_CITY")
	setString(&cfg.Country, "WEATHER_COUNTRY")
	setString(&cfg.Lang, "WEATHER_LANG")
	setString(&cfg.Units, "WEATHER_UNITS")
	setString(&cfg.APIs.WeatherAPI.Key, "WEATHERAPI_API_KEY")
	setString(&cfg.APIs.VisualCrossing.Key, "VISUALCROSSING_API_KEY")

	if err := setFloat(&cfg.Latitude, "WEATHER_LATITUDE"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Longitude, "WEATHER_LONGITUDE"); err != nil {
		return err
	}

	cfg.CacheFile = ".weather_cache.json"
	if v, ok := os.LookupEnv("CACHE_FILE"); ok {
		cfg.CacheFile = v
	}
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "1h"); err != nil {
		return err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.WarmInterval, err = getenvDuration("CACHE_WARM_INTERVAL", "30m"); err != nil {
		return err
	}
	return nil
}

// resolveCoordinates geocodes the city when coordinates are missing and a
// geocoder key is available.
func resolveCoordinates(cfg *AppConfig) error {
	if cfg.Latitude != nil && cfg.Longitude != nil {
		return nil
	}
	if cfg.GeocoderAPIKey == "" || cfg.City == "" {
		return nil
	}

	lat, lon, err := geocode(cfg.GeocoderAPIKey, cfg.City, cfg.Country)
	if err != nil {
		return fmt.Errorf("geocode %q: %w", cfg.City, err)
	}
	cfg.Latitude = &lat
	cfg.Longitude = &lon
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst **float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = &f
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
