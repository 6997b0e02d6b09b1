package moderation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/strazhbot/strazh/internal/state"
)

//go:embed templates
var templatesFS embed.FS

// Русский комментарий: Все тексты — и промпты классификатора, и ответы
// пользователям — лежат шаблонами в бинарнике. Код только выбирает имя
// шаблона и значения; форматированием занимаются сами шаблоны.

// Prompts рендерит промпты для классификатора.
type Prompts struct {
	tmpl *template.Template
}

// NewPrompts парсит встроенные шаблоны промптов.
func NewPrompts() (*Prompts, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return &Prompts{tmpl: tmpl}, nil
}

func (p *Prompts) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ModeratorSystem — фиксированная системная инструкция модератора.
func (p *Prompts) ModeratorSystem() (string, error) {
	return p.render("moderator_system.tmpl", nil)
}

// AdminInjection — блок с действующими директивами администраторов.
func (p *Prompts) AdminInjection(directives []state.AdminDirective) (string, error) {
	return p.render("admin_injection.tmpl", map[string]any{
		"Directives": directives,
	})
}

// AnalysisContext — данные для промпта проверки одного сообщения.
type AnalysisContext struct {
	MessageText     string
	AccountName     string
	AccountUsername string
	OutputLanguage  string
}

// CheckMessage — промпт анализа конкретного сообщения.
func (p *Prompts) CheckMessage(ctx AnalysisContext) (string, error) {
	return p.render("check_message.tmpl", ctx)
}
