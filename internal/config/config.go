package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/strazhbot/strazh/internal/ai"
)

// Config — централизованная структура настроек сервиса.
// Русский комментарий: Все переменные окружения собираются один раз при старте.
// Дальше код работает только с этой структурой, что упрощает тестирование.
// Логирование всегда на английском для единообразия операционных сообщений.
type Config struct {
	TelegramBotToken string // Токен Telegram бота
	OpenRouterAPIKey string // Ключ OpenRouter (классификатор)

	AIModel   string        // Идентификатор модели классификатора
	AITimeout time.Duration // Таймаут одного запроса к классификатору

	DBPath      string // Путь к файлу sqlite (durable store по умолчанию)
	PostgresDSN string // Если задан — durable store переключается на PostgreSQL

	KafkaBrokers []string // Если заданы — включается публикация audit-событий
	KafkaTopic   string   // Топик для audit-событий

	CASBaseURL         string        // Базовый URL CAS (списка известных спамеров)
	CASRefreshInterval time.Duration // Период обновления CAS-списка
	SnapshotInterval   time.Duration // Период сохранения снапшота состояния

	PollInterval time.Duration // Период опроса getUpdates
	PollTimeout  int           // long-poll таймаут getUpdates, секунды

	WebhookURL        string // Если задан — бот работает в webhook-режиме
	WebhookListenAddr string
	WebhookPath       string
	WebhookSecret     string

	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration
}

// WebhookActive сообщает, выбран ли webhook-режим доставки обновлений.
func (c *Config) WebhookActive() bool {
	return c.WebhookURL != ""
}

// Load загружает и валидирует конфигурацию из окружения.
// Если переменная ENV_FILE указывает на .env-файл — он подгружается первым
// (уже установленные переменные окружения имеют приоритет).
func Load() (*Config, error) {
	if envFile := strings.TrimSpace(os.Getenv("ENV_FILE")); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{}

	cfg.TelegramBotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.OpenRouterAPIKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))

	cfg.AIModel = firstNonEmpty(os.Getenv("AI_MODEL"), ai.DefaultModel)

	cfg.DBPath = firstNonEmpty(os.Getenv("DB_PATH"), "data/strazh.db")
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))

	if brokersRaw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokersRaw != "" {
		// Разрешаем перечисление через запятую или пробелы
		cfg.KafkaBrokers = strings.FieldsFunc(brokersRaw, func(r rune) bool { return r == ',' || r == ' ' })
	}
	cfg.KafkaTopic = firstNonEmpty(os.Getenv("KAFKA_TOPIC"), "moderation-events")

	cfg.CASBaseURL = firstNonEmpty(os.Getenv("CAS_URL"), "https://api.cas.chat")

	cfg.WebhookURL = strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	cfg.WebhookListenAddr = firstNonEmpty(os.Getenv("WEBHOOK_LISTEN_ADDR"), "0.0.0.0:8080")
	cfg.WebhookPath = firstNonEmpty(os.Getenv("WEBHOOK_PATH"), "/tghook")
	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))

	cfg.LogLevel = firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")
	cfg.LogPretty = strings.ToLower(os.Getenv("LOGGER_PRETTY")) == "true"

	var err error
	if cfg.AITimeout, err = durationEnv("AI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CASRefreshInterval, err = durationEnv("CAS_REFRESH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SnapshotInterval, err = durationEnv("SNAPSHOT_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	pollTimeoutStr := strings.TrimSpace(os.Getenv("POLL_TIMEOUT"))
	if pollTimeoutStr == "" {
		cfg.PollTimeout = 1
	} else {
		n, err := strconv.Atoi(pollTimeoutStr)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid POLL_TIMEOUT: %q", pollTimeoutStr)
		}
		cfg.PollTimeout = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate собирает полный список отсутствующих обязательных переменных,
// чтобы оператор увидел все проблемы сразу, а не по одной.
func (c *Config) validate() error {
	var missing []string
	if c.TelegramBotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.OpenRouterAPIKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required env vars: " + strings.Join(missing, ", "))
	}
	return nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return dur, nil
}

// Helper: возвращает первое непустое значение.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
