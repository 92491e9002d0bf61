package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StorageDriver string

const (
	DriverSQLite StorageDriver = "sqlite"
	DriverFile   StorageDriver = "file"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider       LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string      `env:"OPENAI_BASE_URL"`
	OpenAIModel       string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIVisionModel string      `env:"OPENAI_VISION_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken  string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID    string      `env:"YANDEX_FOLDER_ID"`

	// Search
	SearchBaseURL string `env:"SEARCH_BASE_URL" envDefault:"https://api.duckduckgo.com/"`

	// Deadline for every external call; exceeding it reports the service as unavailable.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Dispatcher
	WorkerPoolSize  int      `env:"WORKER_POOL_SIZE" envDefault:"16"`
	EnabledCommands []string `env:"ENABLED_COMMANDS" envSeparator:":" envDefault:"start:help:websearch:referral:sentiment:report"`

	// Storage
	StorageDriver StorageDriver `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"data/assistbot.db"`
	UsersFilePath string        `env:"USERS_FILE_PATH" envDefault:"data/users.json"`
	ChatsFilePath string        `env:"CHATS_FILE_PATH" envDefault:"data/chats.jsonl"`
	FilesFilePath string        `env:"FILES_FILE_PATH" envDefault:"data/files.jsonl"`

	// Daily digest
	DigestEnabled bool   `env:"DIGEST_ENABLED" envDefault:"true"`
	DigestCron    string `env:"DIGEST_CRON" envDefault:"0 21 * * *"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
