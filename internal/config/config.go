package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string // если пусто, то https://<endpoint>/<bucket>
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type TranscriberConfig struct {
	Kind           string // whisper | deepgram | google
	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	DeepgramKey    string
	GoogleLanguage string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	Port          string
	DatabaseURL   string
	PublicBaseURL string
	SessionTTL    time.Duration

	S3          S3Config
	Gemini      GeminiConfig
	Transcriber TranscriberConfig

	RecorderBuffer string // memory | redis
	Redis          RedisConfig

	AlertBotToken string
	AlertChatIDs  []int64

	// AdminEmails могут менять промпты
	AdminEmails []string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PublicBaseURL: strings.TrimSuffix(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		SessionTTL:    7 * 24 * time.Hour,
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    getenv("S3_BUCKET", "dreams"),
			Region:    os.Getenv("S3_REGION"),
			UseSSL:    getenv("S3_USE_SSL", "true") != "false",
			PublicURL: strings.TrimSuffix(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			BaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getenv("GEMINI_MODEL", "gemini-pro"),
		},
		Transcriber: TranscriberConfig{
			Kind:           getenv("TRANSCRIBER", "whisper"),
			OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:    getenv("WHISPER_MODEL", "whisper-1"),
			DeepgramKey:    os.Getenv("DEEPGRAM_API_KEY"),
			GoogleLanguage: getenv("GOOGLE_SPEECH_LANGUAGE", "en-US"),
		},
		RecorderBuffer: getenv("RECORDER_BUFFER", "memory"),
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		AlertBotToken: os.Getenv("ALERT_BOT_TOKEN"),
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	ids, err := parseChatIDs(os.Getenv("ALERT_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AlertChatIDs = ids
	cfg.AdminEmails = parseEmails(os.Getenv("ADMIN_EMAILS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.S3.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is not set")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	switch c.Transcriber.Kind {
	case "whisper":
		if c.Transcriber.OpenAIKey == "" && c.Transcriber.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for whisper")
		}
	case "deepgram":
		if c.Transcriber.DeepgramKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is not set")
		}
	case "google":
	default:
		return fmt.Errorf("unknown TRANSCRIBER %q", c.Transcriber.Kind)
	}
	switch c.RecorderBuffer {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown RECORDER_BUFFER %q", c.RecorderBuffer)
	}
	return nil
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ALERT_CHAT_IDS: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
