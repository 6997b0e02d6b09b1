package ai

import "context"

// Русский комментарий: Контракт внешнего классификатора. Провайдер получает
// упорядоченный список реплик с ролями и возвращает сырой текст ответа.
// Разбор вердикта — забота вызывающего (internal/moderation), транспортные
// ошибки — наша.

// Role — роль реплики в chat-completion запросе.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage — одна реплика запроса.
type ChatMessage struct {
	Role    Role
	Content string
}

// Provider — внешний классификатор текста.
type Provider interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}
