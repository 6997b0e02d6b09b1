package moderation

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/strazhbot/strazh/internal/state"
)

// Messages рендерит локализованные пользовательские тексты бота.
// Шаблоны именуются <name>_<lang>.tmpl; язык берётся из состояния чата.
type Messages struct {
	tmpl *template.Template
}

// NewMessages парсит встроенные шаблоны сообщений.
func NewMessages() (*Messages, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/messages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse message templates: %w", err)
	}
	return &Messages{tmpl: tmpl}, nil
}

func (m *Messages) render(name string, lang state.Language, data any) (string, error) {
	full := fmt.Sprintf("%s_%s.tmpl", name, lang)
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, full, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", full, err)
	}
	return buf.String(), nil
}

// Antispam — уведомление о сработавшем антиспаме.
func (m *Messages) Antispam(lang state.Language, userID int64, reason, details string) (string, error) {
	return m.render("antispam", lang, map[string]any{
		"UserID":  userID,
		"Reason":  reason,
		"Details": details,
	})
}

// CAS — пояснение для бана по CAS-списку.
func (m *Messages) CAS(lang state.Language) (string, error) {
	return m.render("cas", lang, nil)
}

// Help — справка по командам.
func (m *Messages) Help(lang state.Language, version string) (string, error) {
	return m.render("help", lang, map[string]any{"Version": version})
}

// SetMode — подтверждение смены режима.
func (m *Messages) SetMode(lang state.Language, newMode string) (string, error) {
	return m.render("set_mode", lang, map[string]any{"NewMode": newMode})
}

// SetLang — подтверждение смены языка.
func (m *Messages) SetLang(lang state.Language, newLang string) (string, error) {
	return m.render("set_lang", lang, map[string]any{"NewLanguage": newLang})
}

// Inject — подтверждение добавления директивы.
func (m *Messages) Inject(lang state.Language) (string, error) {
	return m.render("inject", lang, nil)
}

// ToggleInject — новое состояние флага инъекций.
func (m *Messages) ToggleInject(lang state.Language, active bool) (string, error) {
	return m.render("toggle_inject", lang, map[string]any{"Active": active})
}

// ClearInjects — подтверждение очистки директив.
func (m *Messages) ClearInjects(lang state.Language) (string, error) {
	return m.render("clear_injects", lang, nil)
}

// Usage — подсказка по использованию команды.
func (m *Messages) Usage(lang state.Language, schema string) (string, error) {
	return m.render("command_usage", lang, map[string]any{"Schema": schema})
}

// StatusData — данные для диагностического дампа /status.
type StatusData struct {
	Mode             state.Mode
	Language         state.Language
	InjectionsActive bool
	DirectiveCount   int
	LastDirectives   []state.AdminDirective
	BanListSize      int
}

// Status — диагностический дамп состояния чата.
func (m *Messages) Status(lang state.Language, data StatusData) (string, error) {
	return m.render("status", lang, data)
}
