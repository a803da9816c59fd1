package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	DBURL           string        `mapstructure:"DB_URL"`
	DBName          string        `mapstructure:"DB_NAME"`
	DBTimeout       time.Duration `mapstructure:"DB_TIMEOUT"`
	UseTransactions bool          `mapstructure:"DB_USE_TRANSACTIONS"`
	NodeEnv         string        `mapstructure:"NODE_ENV"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AllowedOrigins  []string      `mapstructure:"ALLOWED_ORIGINS"`
}

// Load reads .env (if any) and the process environment. A value that does
// not decode into its field is an error rather than a zero value.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "4848")
	v.SetDefault("DB_URL", "mongodb://127.0.0.1:27017")
	v.SetDefault("DB_NAME", "yasn")
	v.SetDefault("DB_TIMEOUT", "10s")
	v.SetDefault("DB_USE_TRANSACTIONS", true)
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("SESSION_SECRET", "#secretKey")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ALLOWED_ORIGINS", "*")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = cleanOrigins(cfg.AllowedOrigins)
	return cfg, nil
}

// cleanOrigins trims each origin and drops empty entries, so
// "a, b," yields [a b].
func cleanOrigins(origins []string) []string {
	cleaned := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			cleaned = append(cleaned, origin)
		}
	}
	return cleaned
}

func (c Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// AllowsAllOrigins is true when ALLOWED_ORIGINS is empty or contains "*".
func (c Config) AllowsAllOrigins() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
