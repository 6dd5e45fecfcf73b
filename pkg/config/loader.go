package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration for the current APP_ENV from ./configs, layered
// with environment variables, validates it, and returns the resulting Config
// along with the viper instance for watching.
func Load() (*Config, *viper.Viper, error) {
	return LoadFrom("./configs")
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir string) (*Config, *viper.Viper, error) {
	// Missing env files are fine; real deployments use the environment.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("%s/%s.yaml", dir, env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads the config file on change and pushes the new access section
// into the live list. Other sections require a restart to take effect.
func Watch(v *viper.Viper, list *AccessList, log *slog.Logger) {
	if v == nil || list == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshal(v)
		if err != nil {
			log.Error("ignoring config change", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		list.Update(cfg.Access)
		log.Info("access list reloaded",
			slog.String("file", e.Name),
			slog.Bool("restrict", cfg.Access.Restrict),
			slog.Int("users", len(cfg.Access.Users)),
		)
	})

	v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.timeout", 10*time.Second)
	v.SetDefault("bot.webhook_listen", ":8443")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("ledger.currency", "HK$")
	v.SetDefault("ledger.timezone", "Asia/Hong_Kong")

	v.SetDefault("sheets.sheet_name", "Transactions")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", 20)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
