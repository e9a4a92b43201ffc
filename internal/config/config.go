package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port               string `env:"PORT" envDefault:"8080"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	OpenAIKey           string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model               string `env:"API_MODEL" envDefault:"gpt-3.5-turbo-1106"`
	MaxTokens           int    `env:"OPENAI_MAX_TOKENS" envDefault:"2048"`
	TranslationLanguage string `env:"TRANSLATION_LANGUAGE" envDefault:"Swedish"`

	TTSProvider       string `env:"TTS_PROVIDER" envDefault:"openai"`
	TTSModel          string `env:"TTS_MODEL" envDefault:"tts-1"`
	TTSVoice          string `env:"TTS_VOICE" envDefault:"nova"`
	ElevenLabsKey     string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID" envDefault:"EXAVITQu4vr4xnSDxMaL"`
	FFmpegPath        string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath       string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	DatabaseDir    string `env:"DATABASE_DIRECTORY_PATH" envDefault:"/data/database"`
	DatabaseName   string `env:"DATABASE_NAME" envDefault:"mission_database.db"`
	DatabaseURL    string `env:"DATABASE_URL"`

	AudioDir string `env:"AUDIO_DIRECTORY_PATH" envDefault:"/data/audio"`
	LogDir   string `env:"LOG_DIRECTORY_PATH" envDefault:"/data/logs"`

	BufferSize          int           `env:"MISSION_BUFFER_SIZE" envDefault:"5"`
	MaintenanceInterval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"15m"`
	MaxPassAttempts     int           `env:"MAX_PASS_ATTEMPTS" envDefault:"0"`
	DraftTTL            time.Duration `env:"DRAFT_TTL" envDefault:"30m"`

	S3 S3Config `envPrefix:"S3_"`

	TelegramToken        string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatIDs []int64 `env:"TELEGRAM_ADMIN_CHAT_IDS" envSeparator:","`
}

type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION"`
	Insecure  bool   `env:"INSECURE"`
	Prefix    string `env:"PREFIX" envDefault:"missions"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Endpoint != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses the given variables only; the process environment is ignored.
func LoadFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown DATABASE_DRIVER %q", ErrInvalidConfig, c.DatabaseDriver)
	}

	c.TTSProvider = strings.ToLower(strings.TrimSpace(c.TTSProvider))
	switch c.TTSProvider {
	case ProviderOpenAI:
	case ProviderElevenLabs:
		if c.ElevenLabsKey == "" {
			return fmt.Errorf("%w: ELEVENLABS_API_KEY is required for the elevenlabs provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown TTS_PROVIDER %q", ErrInvalidConfig, c.TTSProvider)
	}

	if c.BufferSize < 1 {
		return fmt.Errorf("%w: MISSION_BUFFER_SIZE must be positive", ErrInvalidConfig)
	}
	if c.MaintenanceInterval <= 0 {
		return fmt.Errorf("%w: MAINTENANCE_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("%w: DRAFT_TTL must be positive", ErrInvalidConfig)
	}
	if c.MaxPassAttempts < 0 {
		return fmt.Errorf("%w: MAX_PASS_ATTEMPTS must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) SQLitePath() string {
	return filepath.Join(c.DatabaseDir, c.DatabaseName)
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && len(c.TelegramAdminChatIDs) > 0
}
