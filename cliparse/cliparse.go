package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danielhkuo/stream-panel/db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType db.Dialect

	// Chat limits
	RedisURL         string
	ChatRateLimit    int
	ChatRateWindow   time.Duration
	MaxMessageLength int
	MaxMessageLimit  int

	BcryptCost int
}

// Defaults
const (
	DefaultPort             = 3318
	DefaultChatRateLimit    = 5
	DefaultChatRateWindow   = 10 * time.Second
	DefaultMaxMessageLength = 1000
	DefaultMaxMessageLimit  = 500
	DefaultBcryptCost       = 10
)

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var dbType string

	fs := flag.NewFlagSet("stream-panel", flag.ContinueOnError)

	// Network and store (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&dbType, "t", "", "Database type (postgres or sqlite)")

	// Chat
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for chat rate limiting (optional)")
	fs.IntVar(&cfg.ChatRateLimit, "chat-rate", 0, "Messages allowed per user per window")
	fs.DurationVar(&cfg.ChatRateWindow, "chat-window", 0, "Chat rate limit window")
	fs.IntVar(&cfg.MaxMessageLength, "max-message", 0, "Maximum chat message length in characters")
	fs.IntVar(&cfg.MaxMessageLimit, "max-limit", 0, "Maximum number of messages returned per request")

	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", 0, "bcrypt cost for password hashes")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", DefaultPort); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = string(db.Postgres)
		}
	}
	if cfg.DatabaseType, err = db.ParseDialect(dbType); err != nil {
		return Config{}, err
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.ChatRateLimit == 0 {
		if cfg.ChatRateLimit, err = envInt("CHAT_RATE_LIMIT", DefaultChatRateLimit); err != nil {
			return Config{}, err
		}
	}

	if cfg.ChatRateWindow == 0 {
		cfg.ChatRateWindow = DefaultChatRateWindow
		if s := os.Getenv("CHAT_RATE_WINDOW"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid CHAT_RATE_WINDOW env variable")
			}
			cfg.ChatRateWindow = d
		}
	}

	if cfg.MaxMessageLength == 0 {
		if cfg.MaxMessageLength, err = envInt("MAX_MESSAGE_LENGTH", DefaultMaxMessageLength); err != nil {
			return Config{}, err
		}
	}

	if cfg.MaxMessageLimit == 0 {
		if cfg.MaxMessageLimit, err = envInt("MAX_MESSAGE_LIMIT", DefaultMaxMessageLimit); err != nil {
			return Config{}, err
		}
	}

	if cfg.BcryptCost == 0 {
		if cfg.BcryptCost, err = envInt("BCRYPT_COST", DefaultBcryptCost); err != nil {
			return Config{}, err
		}
	}

	if cfg.ChatRateLimit < 1 || cfg.MaxMessageLength < 1 || cfg.MaxMessageLimit < 1 {
		return Config{}, errors.New("chat limits must be positive")
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
