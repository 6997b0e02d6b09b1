package config

import (
	"strings"
	"testing"
	"time"

	"github.com/strazhbot/strazh/internal/ai"
)

// TestLoad проверяет загрузку конфигурации из env
func TestLoad(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test_token_12345")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("AI_MODEL", "test/model")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("DB_PATH", "/tmp/state.db")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CAS_REFRESH_INTERVAL", "30m")
	t.Setenv("SNAPSHOT_INTERVAL", "5s")
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("POLL_TIMEOUT", "25")
	t.Setenv("WEBHOOK_URL", "https://example.org/tghook")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOGGER_PRETTY", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TelegramBotToken != "test_token_12345" {
		t.Errorf("TelegramBotToken = %q", cfg.TelegramBotToken)
	}
	if cfg.OpenRouterAPIKey != "sk-or-test" {
		t.Errorf("OpenRouterAPIKey = %q", cfg.OpenRouterAPIKey)
	}
	if cfg.AIModel != "test/model" {
		t.Errorf("AIModel = %q", cfg.AIModel)
	}
	if cfg.AITimeout != 10*time.Second {
		t.Errorf("AITimeout = %v", cfg.AITimeout)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.CASRefreshInterval != 30*time.Minute {
		t.Errorf("CASRefreshInterval = %v", cfg.CASRefreshInterval)
	}
	if cfg.SnapshotInterval != 5*time.Second {
		t.Errorf("SnapshotInterval = %v", cfg.SnapshotInterval)
	}
	if cfg.PollTimeout != 25 {
		t.Errorf("PollTimeout = %d", cfg.PollTimeout)
	}
	if !cfg.WebhookActive() {
		t.Error("WebhookActive() = false, want true")
	}
	if !cfg.LogPretty {
		t.Error("LogPretty = false, want true")
	}
	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

// TestLoadDefaults проверяет дефолтные значения
func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AIModel != ai.DefaultModel {
		t.Errorf("default AIModel = %q, want %q", cfg.AIModel, ai.DefaultModel)
	}
	if cfg.AITimeout != 30*time.Second {
		t.Errorf("default AITimeout = %v", cfg.AITimeout)
	}
	if cfg.CASBaseURL != "https://api.cas.chat" {
		t.Errorf("default CASBaseURL = %q", cfg.CASBaseURL)
	}
	if cfg.CASRefreshInterval != time.Hour {
		t.Errorf("default CASRefreshInterval = %v", cfg.CASRefreshInterval)
	}
	if cfg.SnapshotInterval != 30*time.Second {
		t.Errorf("default SnapshotInterval = %v", cfg.SnapshotInterval)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("default PollInterval = %v", cfg.PollInterval)
	}
	if cfg.PollTimeout != 1 {
		t.Errorf("default PollTimeout = %d", cfg.PollTimeout)
	}
	if cfg.WebhookActive() {
		t.Error("WebhookActive() = true, want false")
	}
	if cfg.WebhookListenAddr != "0.0.0.0:8080" {
		t.Errorf("default WebhookListenAddr = %q", cfg.WebhookListenAddr)
	}
	if cfg.WebhookPath != "/tghook" {
		t.Errorf("default WebhookPath = %q", cfg.WebhookPath)
	}
	if cfg.KafkaTopic != "moderation-events" {
		t.Errorf("default KafkaTopic = %q", cfg.KafkaTopic)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("default KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

// TestLoadMissingRequired проверяет что в ошибке перечислены все отсутствующие переменные сразу
func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with missing required vars")
	}
	for _, name := range []string{"TELEGRAM_BOT_TOKEN", "OPENROUTER_API_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

// TestLoadInvalidDuration проверяет отказ при кривом значении интервала
func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("SNAPSHOT_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded with invalid SNAPSHOT_INTERVAL")
	}
}
