package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageDynamo = "dynamo"
	StorageMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"3000"`
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"dynamo"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	DynamoTables DynamoTables `envPrefix:"DYNAMO_TABLE_"`

	SNSRegion   string `env:"SNS_REGION" envDefault:"us-east-1"`
	SNSTopicARN string `env:"SNS_TOPIC_ARN"`

	JWTPublicKeyPath string `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`

	SMTPHost     string `env:"SMTP_HOST"` // empty disables email
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	RedisAddr     string        `env:"REDIS_ADDR"` // empty keeps guard locks in-process
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL       time.Duration `env:"LOCK_TTL" envDefault:"10s"`

	Guard GuardLimits `envPrefix:"GUARD_"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"` // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                string `env:"USERS" envDefault:"users"`
	Offers               string `env:"OFFERS" envDefault:"offers"`
	Commissions          string `env:"COMMISSIONS" envDefault:"commissions"`
	Chats                string `env:"CHATS" envDefault:"chats"`
	ChatMessages         string `env:"CHAT_MESSAGES" envDefault:"chat_messages"`
	Follows              string `env:"FOLLOWS" envDefault:"follows"`
	SupportTickets       string `env:"SUPPORT_TICKETS" envDefault:"support_tickets"`
	Notifications        string `env:"NOTIFICATIONS" envDefault:"notifications"`
	NotificationPayloads string `env:"NOTIFICATION_PAYLOADS" envDefault:"notification_payloads"`
	Counters             string `env:"COUNTERS" envDefault:"counters"`
	Tags                 string `env:"TAGS" envDefault:"tags"`
	TagCategories        string `env:"TAG_CATEGORIES" envDefault:"tag_categories"`
}

// GuardLimits are the quota and cooldown settings enforced before writes.
type GuardLimits struct {
	MaxOpenOffersPerAuthor int           `env:"MAX_OPEN_OFFERS_PER_AUTHOR" envDefault:"3"`
	OfferCooldown          time.Duration `env:"OFFER_COOLDOWN" envDefault:"60s"`
	CommissionCooldown     time.Duration `env:"COMMISSION_COOLDOWN" envDefault:"30s"`
	MessageCooldown        time.Duration `env:"MESSAGE_COOLDOWN" envDefault:"7s"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StorageDriver {
	case StorageDynamo, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }
