package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// SiteConfig describes the marketplace being crawled
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Domain  string `mapstructure:"domain"`
}

// EndpointsConfig holds the URL templates of the marketplace.
// Templates use {page}, {category}, {company}, {start} and {end} placeholders.
type EndpointsConfig struct {
	CategorySitemap string `mapstructure:"category_sitemap"`
	CategoryView    string `mapstructure:"category_view"`
	CategoryList    string `mapstructure:"category_list"`
	ProductsAPI     string `mapstructure:"products_api"`
}

// FetchConfig holds HTTP client configuration
type FetchConfig struct {
	MaxAttempts          int           `mapstructure:"max_attempts"`
	Timeout              time.Duration `mapstructure:"timeout"`
	ErrorDelay           time.Duration `mapstructure:"error_delay"`
	StatusDelay          time.Duration `mapstructure:"status_delay"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	UserAgent            string        `mapstructure:"user_agent"`
	Proxies              []string      `mapstructure:"proxies"`
}

// CrawlConfig holds pagination limits and politeness pauses
type CrawlConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	MaxPages      int           `mapstructure:"max_pages"`
	BatchSize     int           `mapstructure:"batch_size"`
	MaxBatches    int           `mapstructure:"max_batches"`
	CategoryPause time.Duration `mapstructure:"category_pause"`
	CompanyPause  time.Duration `mapstructure:"company_pause"`
}

// StorageConfig selects where stage artifacts are kept
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // file or redis
	DataDir string `mapstructure:"data_dir"`
}

// FeedsConfig holds the output location of the feed files
type FeedsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// MetricsConfig controls the optional metrics endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DSN returns the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Addr returns the host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory; a missing file
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be at least 1, got %d", c.Fetch.MaxAttempts)
	}
	if c.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl.concurrency must be at least 1, got %d", c.Crawl.Concurrency)
	}
	if c.Crawl.BatchSize < 1 || c.Crawl.MaxBatches < 1 {
		return fmt.Errorf("crawl.batch_size and crawl.max_batches must be positive")
	}
	switch c.Storage.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.example.com")
	v.SetDefault("site.domain", "example.com")

	v.SetDefault("endpoints.category_sitemap", "https://www.example.com/sitemap/category.html")
	v.SetDefault("endpoints.category_view", "https://www.example.com/category/view.html")
	v.SetDefault("endpoints.category_list", "https://www.example.com/category/list.html?page={page}&cate={category}")
	v.SetDefault("endpoints.products_api", "https://www.example.com/api/products?companyId={company}&start={start}&end={end}")

	v.SetDefault("fetch.max_attempts", 8)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.error_delay", 5*time.Second)
	v.SetDefault("fetch.status_delay", 10*time.Second)
	v.SetDefault("fetch.max_requests_per_second", 0)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("fetch.proxies", []string{})

	v.SetDefault("crawl.concurrency", 8)
	v.SetDefault("crawl.max_pages", 1000)
	v.SetDefault("crawl.batch_size", 500)
	v.SetDefault("crawl.max_batches", 5)
	v.SetDefault("crawl.category_pause", 2*time.Second)
	v.SetDefault("crawl.company_pause", time.Second)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.data_dir", "./data")

	v.SetDefault("feeds.dir", "./data")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tradefeed")
	v.SetDefault("database.user", "tradefeed_user")
	v.SetDefault("database.password", "tradefeed_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "tradefeed:artifact:")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
