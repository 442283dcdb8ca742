package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Events   Events
	Gemini   Gemini
}

type Server struct {
	Port        string
	Environment string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// SQLitePath is only read when Driver is "sqlite".
	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// WriteSlots caps how many submissions may hold a write transaction at once.
	// It is clamped below MaxOpenConns, and forced to 1 for sqlite.
	WriteSlots     int
	AcquireTimeout time.Duration

	// ReferenceTimeout bounds the answer key read made while a write
	// transaction is open.
	ReferenceTimeout time.Duration
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// AttemptTTL is how long completed attempt details stay cached.
	AttemptTTL time.Duration
}

type Events struct {
	Enabled      bool
	Publisher    string // "kafka" or "channel"
	KafkaBrokers []string
	Topic        string
}

type Gemini struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_SQLITE_PATH", "quizgrader.db")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 20)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DATABASE_WRITE_SLOTS", 16)
	viper.SetDefault("DATABASE_ACQUIRE_TIMEOUT", "20s")
	viper.SetDefault("DATABASE_REFERENCE_TIMEOUT", "10s")

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_ATTEMPT_TTL", "1h")

	viper.SetDefault("EVENTS_ENABLED", false)
	viper.SetDefault("EVENTS_PUBLISHER", "channel")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("EVENTS_TOPIC", "attempts")

	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_TIMEOUT", "60s")
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.Environment = viper.GetString("APP_ENV")

	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.SQLitePath = viper.GetString("DATABASE_SQLITE_PATH")
	config.Database.MaxOpenConns = viper.GetInt("DATABASE_MAX_OPEN_CONNS")
	config.Database.MaxIdleConns = viper.GetInt("DATABASE_MAX_IDLE_CONNS")
	config.Database.ConnMaxLifetime = viper.GetDuration("DATABASE_CONN_MAX_LIFETIME")
	config.Database.WriteSlots = viper.GetInt("DATABASE_WRITE_SLOTS")
	config.Database.AcquireTimeout = viper.GetDuration("DATABASE_ACQUIRE_TIMEOUT")
	config.Database.ReferenceTimeout = viper.GetDuration("DATABASE_REFERENCE_TIMEOUT")

	config.Redis.Enabled = viper.GetBool("REDIS_ENABLED")
	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.AttemptTTL = viper.GetDuration("REDIS_ATTEMPT_TTL")

	config.Events.Enabled = viper.GetBool("EVENTS_ENABLED")
	config.Events.Publisher = viper.GetString("EVENTS_PUBLISHER")
	config.Events.KafkaBrokers = strings.Split(viper.GetString("KAFKA_BROKERS"), ",")
	config.Events.Topic = viper.GetString("EVENTS_TOPIC")

	config.Gemini.APIKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")
	config.Gemini.Timeout = viper.GetDuration("GEMINI_TIMEOUT")

	if config.Database.WriteSlots <= 0 || config.Database.Driver == "sqlite" {
		config.Database.WriteSlots = 1
	}
	if config.Database.MaxOpenConns > 1 && config.Database.WriteSlots >= config.Database.MaxOpenConns {
		config.Database.WriteSlots = config.Database.MaxOpenConns - 1
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("env", config.Server.Environment).
		Str("dbDriver", config.Database.Driver).
		Int("writeSlots", config.Database.WriteSlots).
		Dur("acquireTimeout", config.Database.AcquireTimeout).
		Bool("redis", config.Redis.Enabled).
		Bool("events", config.Events.Enabled).
		Msg("Config loaded")
	return &config, nil

}
