package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Warehouse   WarehouseConfig
	Cache       CacheConfig
	ObjectStore ObjectStoreConfig
	Replenish   ReplenishConfig
	Alerts      AlertConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type WarehouseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	SnapshotTTLSecs int
}

type ObjectStoreConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// RestockPreset holds the lead-time and safety-stock constants that feed the
// restock point formula. Separate presets exist for finished goods and raw
// materials because their procurement lead times differ by an order of
// magnitude.
type RestockPreset struct {
	LeadTimeDays    int
	SafetyStockDays int
}

type ReplenishConfig struct {
	SalesWindowDays      int
	EWMAAlpha            float64
	MaxDaysOnHand        float64
	MissingInventoryName string
	WorkerCount          int
	FinishedGoods        RestockPreset
	RawMaterials         RestockPreset
}

type AlertConfig struct {
	CriticalBelowDays float64
	HighBelowDays     float64
	MediumBelowDays   float64
	TopicARN          string
	Region            string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "prymal")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 300)
		viper.SetDefault("OBJECT_STORE_ENABLED", false)
		viper.SetDefault("OBJECT_STORE_ENDPOINT", "s3.amazonaws.com")
		viper.SetDefault("OBJECT_STORE_REGION", "us-east-1")
		viper.SetDefault("OBJECT_STORE_USE_SSL", true)
		viper.SetDefault("RUNRATE_SALES_WINDOW_DAYS", 90)
		viper.SetDefault("RUNRATE_EWMA_ALPHA", 0.5)
		viper.SetDefault("RUNRATE_MAX_DAYS_ON_HAND", 365.0)
		viper.SetDefault("RUNRATE_MISSING_INVENTORY_NAME", "INVENTORY_ID_NOT_IN_INVENTORY_DETAILS")
		viper.SetDefault("RUNRATE_WORKER_COUNT", 8)
		viper.SetDefault("RESTOCK_LEAD_TIME_DAYS_FG", 7)
		viper.SetDefault("RESTOCK_SAFETY_STOCK_DAYS_FG", 7)
		viper.SetDefault("RESTOCK_LEAD_TIME_DAYS_RM", 70)
		viper.SetDefault("RESTOCK_SAFETY_STOCK_DAYS_RM", 7)
		viper.SetDefault("ALERT_CRITICAL_BELOW_DAYS", 60.0)
		viper.SetDefault("ALERT_HIGH_BELOW_DAYS", 70.0)
		viper.SetDefault("ALERT_MEDIUM_BELOW_DAYS", 100.0)
		viper.SetDefault("ALERT_TOPIC_ARN", "")
		viper.SetDefault("ALERT_REGION", "us-east-1")

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
			Warehouse: WarehouseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:         viper.GetBool("CACHE_ENABLED"),
				RedisURL:        viper.GetString("REDIS_URL"),
				RedisHost:       viper.GetString("REDIS_HOST"),
				RedisPort:       viper.GetString("REDIS_PORT"),
				RedisPassword:   viper.GetString("REDIS_PASSWORD"),
				RedisDB:         viper.GetInt("REDIS_DB"),
				SnapshotTTLSecs: viper.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
			},
			ObjectStore: ObjectStoreConfig{
				Enabled:   viper.GetBool("OBJECT_STORE_ENABLED"),
				Endpoint:  viper.GetString("OBJECT_STORE_ENDPOINT"),
				AccessKey: viper.GetString("OBJECT_STORE_ACCESS_KEY"),
				SecretKey: viper.GetString("OBJECT_STORE_SECRET_KEY"),
				Bucket:    viper.GetString("OBJECT_STORE_BUCKET"),
				Region:    viper.GetString("OBJECT_STORE_REGION"),
				UseSSL:    viper.GetBool("OBJECT_STORE_USE_SSL"),
			},
			Replenish: ReplenishConfig{
				SalesWindowDays:      viper.GetInt("RUNRATE_SALES_WINDOW_DAYS"),
				EWMAAlpha:            viper.GetFloat64("RUNRATE_EWMA_ALPHA"),
				MaxDaysOnHand:        viper.GetFloat64("RUNRATE_MAX_DAYS_ON_HAND"),
				MissingInventoryName: viper.GetString("RUNRATE_MISSING_INVENTORY_NAME"),
				WorkerCount:          viper.GetInt("RUNRATE_WORKER_COUNT"),
				FinishedGoods: RestockPreset{
					LeadTimeDays:    viper.GetInt("RESTOCK_LEAD_TIME_DAYS_FG"),
					SafetyStockDays: viper.GetInt("RESTOCK_SAFETY_STOCK_DAYS_FG"),
				},
				RawMaterials: RestockPreset{
					LeadTimeDays:    viper.GetInt("RESTOCK_LEAD_TIME_DAYS_RM"),
					SafetyStockDays: viper.GetInt("RESTOCK_SAFETY_STOCK_DAYS_RM"),
				},
			},
			Alerts: AlertConfig{
				CriticalBelowDays: viper.GetFloat64("ALERT_CRITICAL_BELOW_DAYS"),
				HighBelowDays:     viper.GetFloat64("ALERT_HIGH_BELOW_DAYS"),
				MediumBelowDays:   viper.GetFloat64("ALERT_MEDIUM_BELOW_DAYS"),
				TopicARN:          viper.GetString("ALERT_TOPIC_ARN"),
				Region:            viper.GetString("ALERT_REGION"),
			},
		}
	})

	return instance
}
