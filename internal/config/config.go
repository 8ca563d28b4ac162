package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                    string        `mapstructure:"ENV"`
	Port                   string        `mapstructure:"PORT"`
	DatabaseURL            string        `mapstructure:"DATABASE_URL"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	AIEngineBaseURL        string        `mapstructure:"AI_ENGINE_BASE_URL"`
	ChatRateLimitPerMinute int           `mapstructure:"CHAT_RATE_LIMIT_PER_MINUTE"`
	RateLimitRedisAddr     string        `mapstructure:"RATE_LIMIT_REDIS_ADDR"`
	RateLimitRedisPassword string        `mapstructure:"RATE_LIMIT_REDIS_PASSWORD"`
	CORSAllowed            string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	ReleaseWorkloadOnClose bool          `mapstructure:"RELEASE_WORKLOAD_ON_CLOSE"`
	SeedCoreData           bool          `mapstructure:"SEED_CORE_DATA"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CHAT_RATE_LIMIT_PER_MINUTE", 20)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RELEASE_WORKLOAD_ON_CLOSE", false)
	v.SetDefault("SEED_CORE_DATA", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
