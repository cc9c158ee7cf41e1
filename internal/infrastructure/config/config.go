package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageCloudinary = "cloudinary"
	StorageLocal      = "local"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=8h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	LogFile   string        `env:"LOG_FILE"`

	Mongo      MongoConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	Reminder   ReminderConfig
	Tasks      TasksConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=sandbox.smtp.mailtrap.io"`
	Port     int    `env:"SMTP_PORT, default=2525"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=Task Manager <no-reply@example.com>"`
}

type StorageConfig struct {
	Driver    string `env:"STORAGE_DRIVER,     default=local"`
	LocalDir  string `env:"STORAGE_LOCAL_DIR,  default=./uploads"`
	PublicURL string `env:"STORAGE_PUBLIC_URL, default=http://localhost:8080/uploads"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER, default=tasks"`
}

type ReminderConfig struct {
	Cron     string        `env:"REMINDER_CRON,     default=0 9 * * *"`
	Timezone string        `env:"REMINDER_TIMEZONE, default=UTC"`
	Window   time.Duration `env:"REMINDER_WINDOW,   default=24h"`
	Workers  int           `env:"REMINDER_WORKERS,  default=4"`
}

type TasksConfig struct {
	StrictCustomFields bool  `env:"TASKS_STRICT_CUSTOM_FIELDS, default=false"`
	MaxUploadMB        int64 `env:"TASKS_MAX_UPLOAD_MB,        default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("config: STORAGE_DRIVER=cloudinary needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Tasks.MaxUploadMB <= 0 {
		return fmt.Errorf("config: TASKS_MAX_UPLOAD_MB must be greater than 0")
	}
	if c.Reminder.Window <= 0 {
		return fmt.Errorf("config: REMINDER_WINDOW must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
