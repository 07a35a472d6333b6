// Package config предоставляет структуры и функции для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string   `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string   `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	AdminEmails             []string `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
	SentryDSN               string   `yaml:"sentry_dsn" env:"SENTRY_DSN"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	Cache                   `yaml:"cache"`
	LoginRate               `yaml:"login_rate"`
	SMTP                    `yaml:"smtp"`
	Notifier                `yaml:"notifier"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэширование отчетов.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ настройки брокера для доменных событий.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env-default:"membership.events"`
}

// Cache время жизни закэшированных отчетов
type Cache struct {
	TTL time.Duration `yaml:"ttl" env-default:"1m"`
}

// LoginRate ограничение частоты запросов на /login
type LoginRate struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// SMTP настройки почтового сервера для писем-уведомлений
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// Notifier настройки обработчика доменных событий
type Notifier struct {
	Concurrency int `yaml:"concurrency" env-default:"10"`
}

// ErrNoSecret возвращается, если не задан секрет для подписи токенов
var ErrNoSecret = errors.New("jwt_secret_key is not set")

// Load читает конфиг из файла и переменных окружения
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSecret)
	}
	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String выводит конфиг без секретов
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"Cache:\n"+
			"  TTL: %s\n"+
			"LoginRate:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  Port: %s\n"+
			"Notifier:\n"+
			"  Concurrency: %d\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.AddressRedis,
		c.DB,
		c.Exchange,
		c.TTL,
		c.RPS,
		c.Burst,
		c.SMTPHost,
		c.SMTPPort,
		c.Concurrency,
	)
}
