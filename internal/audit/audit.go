package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Русский комментарий: Журнал действий модерации. Каждое побочное действие
// (бан, удаление, флаг, команда) публикуется в Kafka для последующего
// анализа. Публикация строго best-effort: ошибка журнала никогда не влияет
// на сам модерационный путь.

// Event — одно событие модерации.
type Event struct {
	Timestamp time.Time `json:"ts"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"` // "cas", "quarantine", "command"
	Event     string    `json:"event"`  // "ban", "delete", "notify", "flag", ...
	Details   string    `json:"details,omitempty"`
}

// Publisher публикует события модерации.
type Publisher interface {
	Publish(ev Event)
	Close() error
}

// Nop — заглушка, когда Kafka не настроена.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close() error  { return nil }

// Kafka — публикация событий в Kafka-топик.
type Kafka struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafka создаёт publisher для заданных брокеров и топика.
func NewKafka(brokers []string, topic string, logger *zap.Logger) *Kafka {
	return &Kafka{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
		logger: logger,
	}
}

// Publish отправляет событие. Ошибки логируются и проглатываются.
func (k *Kafka) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(ev)
	if err != nil {
		k.logger.Error("failed to marshal audit event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ChatID, 10)),
		Value: value,
	})
	if err != nil {
		k.logger.Error("failed to publish audit event",
			zap.String("event", ev.Event),
			zap.Int64("chat_id", ev.ChatID),
			zap.Error(err),
		)
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
