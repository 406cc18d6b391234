package config

import "github.com/spf13/viper"

// DaemonConfig configures metricsd from the environment
type DaemonConfig struct {
	ServerPort       string  `mapstructure:"SERVER_PORT"`
	RedisAddr        string  `mapstructure:"REDIS_ADDR"`
	RedisPassword    string  `mapstructure:"REDIS_PASSWORD"`
	CacheTTLSeconds  int     `mapstructure:"CACHE_TTL_SECONDS"`
	APIKeyHash       string  `mapstructure:"API_KEY_HASH"` // bcrypt; empty disables auth
	PoolLengthMeters float64 `mapstructure:"POOL_LENGTH_M"`
}

// LoadDaemon reads the daemon settings from environment variables
func LoadDaemon() DaemonConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("API_KEY_HASH", "")
	v.SetDefault("POOL_LENGTH_M", 50.0)

	var cfg DaemonConfig
	_ = v.Unmarshal(&cfg)
	return cfg
}
