package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is handed to envconfig; variable names are fully spelled out in tags.
const EnvPrefix = "parttrack"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	AccessGate AccessGateConfig
	Inventory  InventoryConfig
	Notify     NotifyConfig
	Scanner    ScannerConfig
	Cron       CronConfig
	Argon      ArgonConfig
	Flags      FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PARTTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"PARTTRACK_APP_PORT" default:"3001"`
	APIKey       string `envconfig:"PARTTRACK_API_KEY"`
	LogLevel     string `envconfig:"PARTTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the storage backend once at startup: the managed Postgres
// path or the local single-file SQLite path. Operations never branch on it.
type DBConfig struct {
	Driver     string `envconfig:"PARTTRACK_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"PARTTRACK_DB_DSN"`
	SQLitePath string `envconfig:"PARTTRACK_DB_SQLITE_PATH" default:"data/parttrack.db"`

	MaxOpenConns    int           `envconfig:"PARTTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(db.Driver) {
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("PARTTRACK_DB_DSN is required for the postgres driver")
		}
	case DBDriverSQLite:
		if db.SQLitePath == "" {
			return fmt.Errorf("PARTTRACK_DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTTRACK_REDIS_URL"`
	Address      string        `envconfig:"PARTTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"PARTTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PARTTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PARTTRACK_JWT_ISSUER" default:"parttrack"`
	ExpirationMinutes int    `envconfig:"PARTTRACK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessGateConfig carries the scan-token routing rules. The PIN is stored as
// an Argon2id hash so no plain secret lives in the environment.
type AccessGateConfig struct {
	SupervisorToken string        `envconfig:"PARTTRACK_SUPERVISOR_TOKEN" default:"SUP_ADMIN_999"`
	SupervisorName  string        `envconfig:"PARTTRACK_SUPERVISOR_NAME" default:"Supervisor"`
	LocationPrefix  string        `envconfig:"PARTTRACK_LOCATION_PREFIX" default:"LOC:"`
	AdminPINHash    string        `envconfig:"PARTTRACK_ADMIN_PIN_HASH" required:"true"`
	PinLockWindow   time.Duration `envconfig:"PARTTRACK_PIN_LOCK_WINDOW" default:"1s"`
	ChallengeTTL    time.Duration `envconfig:"PARTTRACK_PIN_CHALLENGE_TTL" default:"2m"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"PARTTRACK_LOW_STOCK_THRESHOLD" default:"5"`
	LogRetention      int `envconfig:"PARTTRACK_LOG_RETENTION" default:"5000"`
}

type NotifyConfig struct {
	PhoneNumber      string `envconfig:"PARTTRACK_NOTIFY_PHONE"`
	TelegramBotToken string `envconfig:"PARTTRACK_TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"PARTTRACK_TELEGRAM_CHAT_ID"`
	TelegramBaseURL  string `envconfig:"PARTTRACK_TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
}

type ScannerConfig struct {
	InterKeyTimeout time.Duration `envconfig:"PARTTRACK_SCANNER_INTERKEY_TIMEOUT" default:"200ms"`
}

type CronConfig struct {
	SweepInterval time.Duration `envconfig:"PARTTRACK_CRON_SWEEP_INTERVAL" default:"24h"`
}

type ArgonConfig struct {
	MemoryKB    int `envconfig:"PARTTRACK_ARGON_MEMORY_KB" default:"65536"`
	Time        int `envconfig:"PARTTRACK_ARGON_TIME" default:"3"`
	Parallelism int `envconfig:"PARTTRACK_ARGON_PARALLELISM" default:"2"`
	SaltLen     int `envconfig:"PARTTRACK_ARGON_SALT_LEN" default:"16"`
	KeyLen      int `envconfig:"PARTTRACK_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARTTRACK_AUTO_MIGRATE" default:"false"`
	SeedDev     bool `envconfig:"PARTTRACK_SEED_DEV" default:"false"`
}
