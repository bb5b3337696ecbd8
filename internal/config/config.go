package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string        `env:"HTTP_PORT" envDefault:"8080"`
	LogDevelopment   bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
	SessionTimeout   time.Duration `env:"SESSION_TIMEOUT" envDefault:"5m"`
	SessionRetention time.Duration `env:"SESSION_RETENTION" envDefault:"30m"`
	PruneInterval    time.Duration `env:"PRUNE_INTERVAL" envDefault:"1m"`
	RoleSeed         uint64        `env:"ROLE_SEED" envDefault:"0"`
	StartLimitMax    int           `env:"START_LIMIT_MAX" envDefault:"0"`
	StartLimitWindow time.Duration `env:"START_LIMIT_WINDOW" envDefault:"1m"`
	DMWebhookURL     string        `env:"DM_WEBHOOK_URL"`
	DMWebhookToken   string        `env:"DM_WEBHOOK_TOKEN"`
	DMTimeout        time.Duration `env:"DM_TIMEOUT" envDefault:"5s"`
	DMMaxAttempts    int           `env:"DM_MAX_ATTEMPTS" envDefault:"3"`
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"distrust-bot"`
	JWTAdapterTTL    time.Duration `env:"JWT_ADAPTER_TTL" envDefault:"720h"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	RedisChannel     string        `env:"REDIS_CHANNEL" envDefault:"distrust:events"`
	NATSURL          string        `env:"NATS_URL"`
	NATSSubject      string        `env:"NATS_SUBJECT" envDefault:"distrust.events"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
