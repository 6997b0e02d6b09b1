package updates

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Русский комментарий: Контракт цепочки модерационных проверок.
// Хендлеры вызываются строго в порядке регистрации; цепочка останавливается
// на первом Break или первой ошибке. Порядок важен: дешёвая детерминированная
// проверка по CAS-списку идёт раньше дорогого AI-анализа, чтобы не тратить
// вызов классификатора на уже известного спамера.

// Flow сигнализирует диспетчеру, продолжать ли цепочку.
type Flow int

const (
	// FlowContinue — проверка пройдена, передать сообщение дальше.
	FlowContinue Flow = iota
	// FlowBreak — сообщение обработано, цепочку остановить.
	FlowBreak
)

// Handler — одна модерационная проверка входящего сообщения.
type Handler interface {
	Name() string
	Handle(ctx context.Context, msg *tgbotapi.Message) (Flow, error)
}
