package ai

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL — OpenRouter совместим с OpenAI chat-completions API,
// поэтому используется обычный OpenAI-клиент с подменённым базовым URL.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultModel — модель по умолчанию.
const DefaultModel = "google/gemini-2.5-flash-preview-05-20"

const defaultTimeout = 30 * time.Second

// OpenRouterOptions настраивает провайдера.
type OpenRouterOptions struct {
	APIKey  string
	Model   string        // пусто = DefaultModel
	BaseURL string        // пусто = OpenRouterBaseURL (переопределяется в тестах)
	Timeout time.Duration // верхняя граница одного вызова; 0 = 30s
}

// OpenRouter реализует Provider поверх OpenRouter.
type OpenRouter struct {
	client  *openai.Client
	model   atomic.Value // string; горячая смена без инвалидации in-flight вызовов
	timeout time.Duration
}

// NewOpenRouter создаёт провайдера.
func NewOpenRouter(opt OpenRouterOptions) *OpenRouter {
	cfg := openai.DefaultConfig(opt.APIKey)
	if opt.BaseURL != "" {
		cfg.BaseURL = opt.BaseURL
	} else {
		cfg.BaseURL = OpenRouterBaseURL
	}

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	p := &OpenRouter{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
	if opt.Model != "" {
		p.model.Store(opt.Model)
	} else {
		p.model.Store(DefaultModel)
	}
	return p
}

// Model возвращает активную модель.
func (p *OpenRouter) Model() string {
	return p.model.Load().(string)
}

// SetModel меняет активную модель. Уже выполняющиеся вызовы продолжают
// работать со старой.
func (p *OpenRouter) SetModel(model string) {
	p.model.Store(model)
}

// Chat выполняет chat-completion запрос с ограниченным таймаутом.
// Истечение таймаута возвращается как обычная транспортная ошибка:
// зависший классификатор не должен останавливать модерацию.
func (p *OpenRouter) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       p.Model(),
		Temperature: 0.8,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
