package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage.
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisEventsDB  int    `mapstructure:"REDIS_EVENTS_DB"`
	RedisTaskDB    int    `mapstructure:"REDIS_TASK_DB"`
	NotifierDriver string `mapstructure:"NOTIFIER_DRIVER"`
	TasksDriver    string `mapstructure:"TASKS_DRIVER"`

	// Check-in windows.
	CheckInDefaultTTLMinutes int `mapstructure:"CHECKIN_DEFAULT_TTL_MINUTES"`
	CheckInMaxTTLMinutes     int `mapstructure:"CHECKIN_MAX_TTL_MINUTES"`

	// Capacity gate.
	GateMaxRetries     int `mapstructure:"GATE_MAX_RETRIES"`
	GateRetryBackoffMS int `mapstructure:"GATE_RETRY_BACKOFF_MS"`
	GateLockTimeoutMS  int `mapstructure:"GATE_LOCK_TIMEOUT_MS"`

	// Schedule generator.
	ScheduleDefaultCount    int `mapstructure:"SCHEDULE_DEFAULT_COUNT"`
	ScheduleMaxCandidates   int `mapstructure:"SCHEDULE_MAX_CANDIDATES"`
	ScheduleDurationMinutes int `mapstructure:"SCHEDULE_DURATION_MINUTES"`

	// Post-event reconciliation.
	ReconcileGraceMinutes int `mapstructure:"RECONCILE_GRACE_MINUTES"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "attendly")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_EVENTS_DB", 3)
	v.SetDefault("REDIS_TASK_DB", 4)
	v.SetDefault("NOTIFIER_DRIVER", "redis")
	v.SetDefault("TASKS_DRIVER", "asynq")
	v.SetDefault("CHECKIN_DEFAULT_TTL_MINUTES", 10)
	v.SetDefault("CHECKIN_MAX_TTL_MINUTES", 240)
	v.SetDefault("GATE_MAX_RETRIES", 3)
	v.SetDefault("GATE_RETRY_BACKOFF_MS", 25)
	v.SetDefault("GATE_LOCK_TIMEOUT_MS", 2000)
	v.SetDefault("SCHEDULE_DEFAULT_COUNT", 12)
	v.SetDefault("SCHEDULE_MAX_CANDIDATES", 1000)
	v.SetDefault("SCHEDULE_DURATION_MINUTES", 60)
	v.SetDefault("RECONCILE_GRACE_MINUTES", 30)
}

// LoadConfig reads config.yaml (if any) and the environment into AppConfig.
func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if IsProduction() && AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required in production")
	}
}

// Defaults returns a Config populated only from defaults. Used by tests and tools
// that must not depend on the process environment.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load default config: %v", err)
	}
	return cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
