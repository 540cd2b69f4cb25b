package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"chargemap/internal/analytics/domain/demand"
	geography "chargemap/internal/geography/domain"
)

// Suggestion store backends.
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

// DataConfig locates the source files.
type DataConfig struct {
	Stations           string `yaml:"stations"`
	PostalAreas        string `yaml:"postal_areas"`
	Population         string `yaml:"population"`
	DistrictPopulation string `yaml:"district_population"`
	Districts          string `yaml:"districts"`
	PostalSheet        string `yaml:"postal_sheet"`
	DistrictSheet      string `yaml:"district_sheet"`
}

// RegionConfig is the analysed state and its postal window.
type RegionConfig struct {
	Name  string `yaml:"name"`
	Lower int    `yaml:"lower"`
	Upper int    `yaml:"upper"`
}

// Region converts to the domain type.
func (r RegionConfig) Region() geography.Region {
	return geography.Region{Name: r.Name, Lower: geography.PostalCode(r.Lower), Upper: geography.PostalCode(r.Upper)}
}

// SuggestionConfig selects the suggestion store.
type SuggestionConfig struct {
	Store       string   `yaml:"store"`
	Path        string   `yaml:"path"`
	DatabaseURL string   `yaml:"database_url"`
	Table       string   `yaml:"table"`
	WebhookURL  string   `yaml:"webhook_url"`
	Template    string   `yaml:"notify_template"`
	Events      []string `yaml:"notify_events"`
	PublicURL   string   `yaml:"public_base_url"`
}

// AuthConfig configures reviewer login.
type AuthConfig struct {
	ReviewerPassword string        `yaml:"reviewer_password"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
}

// Config is the service configuration.
type Config struct {
	HTTPAddr    string            `yaml:"http_addr"`
	Data        DataConfig        `yaml:"data"`
	Region      RegionConfig      `yaml:"region"`
	Suggestions SuggestionConfig  `yaml:"suggestions"`
	Auth        AuthConfig        `yaml:"auth"`
	CacheTTL    time.Duration     `yaml:"cache_ttl"`
	Thresholds  demand.Thresholds `yaml:"thresholds"`
	ReportLimit int               `yaml:"report_limit"`
}

// Load reads .env, the environment and the optional YAML file named by
// CHARGEMAP_CONFIG, in that order of precedence from lowest to highest.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr: getenvDefault("HTTP_ADDR", ":8080"),
		Data: DataConfig{
			Stations:           getenvDefault("CHARGEMAP_STATIONS", "data/Ladesaeulenregister.csv"),
			PostalAreas:        getenvDefault("CHARGEMAP_POSTAL_AREAS", "data/geodata_berlin_plz.csv"),
			Population:         getenvDefault("CHARGEMAP_POPULATION", "data/plz_einwohner.csv"),
			DistrictPopulation: getenvDefault("CHARGEMAP_DISTRICT_POPULATION", ""),
			Districts:          getenvDefault("CHARGEMAP_DISTRICTS", "data/geodata_berlin_dis.csv"),
			PostalSheet:        getenvDefault("CHARGEMAP_POSTAL_SHEET", "T14"),
			DistrictSheet:      getenvDefault("CHARGEMAP_DISTRICT_SHEET", "T5"),
		},
		Region: RegionConfig{
			Name:  getenvDefault("CHARGEMAP_REGION", geography.Berlin.Name),
			Lower: getenvIntDefault("CHARGEMAP_PLZ_LOWER", int(geography.Berlin.Lower)),
			Upper: getenvIntDefault("CHARGEMAP_PLZ_UPPER", int(geography.Berlin.Upper)),
		},
		Suggestions: SuggestionConfig{
			Store:       getenvDefault("SUGGESTION_STORE", StoreJSON),
			Path:        getenvDefault("SUGGESTION_FILE", "suggestions.json"),
			DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
			Table:       getenvDefault("SUGGESTION_TABLE", "suggestions"),
			WebhookURL:  getenvDefault("SUGGESTION_WEBHOOK_URL", ""),
			Template:    getenvDefault("SUGGESTION_NOTIFY_TEMPLATE", ""),
			Events:      splitCSV(getenvDefault("SUGGESTION_NOTIFY_EVENTS", "")),
			PublicURL:   getenvDefault("PUBLIC_BASE_URL", ""),
		},
		Auth: AuthConfig{
			ReviewerPassword: getenvDefault("REVIEWER_PASSWORD", ""),
			JWTSecret:        getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
			TokenTTL:         getenvDuration("AUTH_TOKEN_TTL", 2*time.Hour),
		},
		CacheTTL: getenvDuration("CHARGEMAP_CACHE_TTL", time.Hour),
		Thresholds: demand.Thresholds{
			Critical:           getenvFloatDefault("DEMAND_CRITICAL", demand.DefaultThresholds.Critical),
			High:               getenvFloatDefault("DEMAND_HIGH", demand.DefaultThresholds.High),
			Medium:             getenvFloatDefault("DEMAND_MEDIUM", demand.DefaultThresholds.Medium),
			NeedsStationsAbove: getenvFloatDefault("DEMAND_NEEDS_STATIONS", demand.DefaultThresholds.NeedsStationsAbove),
		},
		ReportLimit: getenvIntDefault("REPORT_LIMIT", demand.DefaultReportLimit),
	}

	if path := os.Getenv("CHARGEMAP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if cfg.Data.DistrictPopulation == "" && isWorkbook(cfg.Data.Population) {
		cfg.Data.DistrictPopulation = cfg.Data.Population
	}
	cfg.Suggestions.Store = strings.ToLower(strings.TrimSpace(cfg.Suggestions.Store))
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Region.Lower >= c.Region.Upper {
		return fmt.Errorf("config: region bounds %d..%d", c.Region.Lower, c.Region.Upper)
	}
	switch c.Suggestions.Store {
	case StoreJSON:
	case StorePostgres:
		if c.Suggestions.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres suggestion store")
		}
	default:
		return fmt.Errorf("config: unknown suggestion store %q", c.Suggestions.Store)
	}
	t := c.Thresholds
	if t.Medium < 0 || t.High < t.Medium || t.Critical < t.High {
		return fmt.Errorf("config: thresholds must satisfy 0 <= medium <= high <= critical, got %+v", t)
	}
	if c.Auth.ReviewerPassword != "" && c.Auth.JWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET is required when REVIEWER_PASSWORD is set")
	}
	return nil
}

// PopulationIsWorkbook reports whether the population source is an xlsx file.
func (c Config) PopulationIsWorkbook() bool {
	return isWorkbook(c.Data.Population)
}

func isWorkbook(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
