package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	OverviewTTLSeconds int
}

// PipelineConfig holds the refresh cadences, statistical windows and
// thresholds used by the derived-data pipeline.
type PipelineConfig struct {
	AlertInterval    time.Duration
	HealthInterval   time.Duration
	AnomalyInterval  time.Duration
	ReorderInterval  time.Duration
	ForecastInterval time.Duration

	AlertDedupWindow     time.Duration
	AlertRetention       time.Duration
	ReorderDedupWindow   time.Duration
	AnomalyWindowSize    int
	ForecastWindowSize   int
	ForecastHorizonDays  int
	GoodPercentThreshold float64

	// EOQ cost inputs; proxies for annual ordering cost and the holding-cost
	// rate applied to unit cost. Configuration, never derived.
	OrderingCost    float64
	HoldingCostRate float64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "invensight")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_OVERVIEW_TTL_SECONDS", 60)

		viper.SetDefault("PIPELINE_ALERT_INTERVAL", "5m")
		viper.SetDefault("PIPELINE_HEALTH_INTERVAL", "10m")
		viper.SetDefault("PIPELINE_ANOMALY_INTERVAL", "15m")
		viper.SetDefault("PIPELINE_REORDER_INTERVAL", "15m")
		viper.SetDefault("PIPELINE_FORECAST_INTERVAL", "30m")
		viper.SetDefault("ALERT_DEDUP_WINDOW", "24h")
		viper.SetDefault("ALERT_RETENTION", "2160h") // 90 days
		viper.SetDefault("REORDER_DEDUP_WINDOW", "168h")
		viper.SetDefault("ANOMALY_WINDOW_SIZE", 14)
		viper.SetDefault("FORECAST_WINDOW_SIZE", 30)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 14)
		viper.SetDefault("HEALTH_GOOD_PERCENT_THRESHOLD", 50.0)
		viper.SetDefault("REORDER_ORDERING_COST", 50.0)
		viper.SetDefault("REORDER_HOLDING_RATE", 0.2)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				OverviewTTLSeconds: viper.GetInt("CACHE_OVERVIEW_TTL_SECONDS"),
			},
			Pipeline: PipelineConfig{
				AlertInterval:        viper.GetDuration("PIPELINE_ALERT_INTERVAL"),
				HealthInterval:       viper.GetDuration("PIPELINE_HEALTH_INTERVAL"),
				AnomalyInterval:      viper.GetDuration("PIPELINE_ANOMALY_INTERVAL"),
				ReorderInterval:      viper.GetDuration("PIPELINE_REORDER_INTERVAL"),
				ForecastInterval:     viper.GetDuration("PIPELINE_FORECAST_INTERVAL"),
				AlertDedupWindow:     viper.GetDuration("ALERT_DEDUP_WINDOW"),
				AlertRetention:       viper.GetDuration("ALERT_RETENTION"),
				ReorderDedupWindow:   viper.GetDuration("REORDER_DEDUP_WINDOW"),
				AnomalyWindowSize:    viper.GetInt("ANOMALY_WINDOW_SIZE"),
				ForecastWindowSize:   viper.GetInt("FORECAST_WINDOW_SIZE"),
				ForecastHorizonDays:  viper.GetInt("FORECAST_HORIZON_DAYS"),
				GoodPercentThreshold: viper.GetFloat64("HEALTH_GOOD_PERCENT_THRESHOLD"),
				OrderingCost:         viper.GetFloat64("REORDER_ORDERING_COST"),
				HoldingCostRate:      viper.GetFloat64("REORDER_HOLDING_RATE"),
			},
		}
	})

	return instance
}
