package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Solver
	MaxPoolSize        int           `mapstructure:"MAX_POOL_SIZE"`
	SolveTimeout       time.Duration `mapstructure:"SOLVE_TIMEOUT"`
	SolveWorkers       int           `mapstructure:"SOLVE_WORKERS"`
	SolveAttempts      int           `mapstructure:"SOLVE_ATTEMPTS"`
	GeneticGenerations int           `mapstructure:"GENETIC_GENERATIONS"`
	GeneticPopulation  int           `mapstructure:"GENETIC_POPULATION"`

	// Cache
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8082")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/1")
	viper.SetDefault("MAX_POOL_SIZE", 1000)
	viper.SetDefault("SOLVE_TIMEOUT", "30s")
	viper.SetDefault("SOLVE_WORKERS", 4)
	viper.SetDefault("SOLVE_ATTEMPTS", 2000)
	viper.SetDefault("GENETIC_GENERATIONS", 40)
	viper.SetDefault("GENETIC_POPULATION", 50)
	viper.SetDefault("CACHE_TTL", "24h")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
