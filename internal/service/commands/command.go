package commands

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Permission — кто имеет право вызывать команду.
type Permission int

const (
	// PermissionPublic — команда доступна любому участнику чата.
	PermissionPublic Permission = iota
	// PermissionAdmin — команда доступна только администраторам чата.
	// Проверяется свежим списком администраторов на каждый вызов.
	PermissionAdmin
)

// Invocation — разобранный вызов команды: исходное сообщение и хвост
// после имени команды, без ведущих пробелов.
type Invocation struct {
	Message *tgbotapi.Message
	Args    string
}

// Command — одна команда бота.
type Command interface {
	// Name возвращает имя без ведущего слэша, например "set_mode".
	Name() string
	Permission() Permission
	Execute(ctx context.Context, inv Invocation) error
}

// Registry — реестр команд по имени. Неизвестные команды диспетчер
// молча игнорирует: в группе может жить несколько ботов.
type Registry struct {
	cmds map[string]Command
}

// NewRegistry собирает реестр из перечисленных команд.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{cmds: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		r.cmds[c.Name()] = c
	}
	return r
}

// Lookup ищет команду по имени без слэша.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.cmds[name]
	return c, ok
}
