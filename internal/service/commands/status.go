package commands

import (
	"context"

	"github.com/strazhbot/strazh/internal/caslist"
	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// Показываем в /status не больше трёх последних директив, чтобы дамп
// оставался читаемым в чате.
const statusDirectiveLimit = 3

// Status отвечает диагностическим дампом состояния чата.
type Status struct {
	bot   telegram.API
	chats *state.Store
	cache *caslist.Cache
	msgs  *moderation.Messages
}

func NewStatus(bot telegram.API, chats *state.Store, cache *caslist.Cache, msgs *moderation.Messages) *Status {
	return &Status{bot: bot, chats: chats, cache: cache, msgs: msgs}
}

func (c *Status) Name() string           { return "status" }
func (c *Status) Permission() Permission { return PermissionAdmin }

func (c *Status) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)
	directives := cs.Directives()

	last := directives
	if len(last) > statusDirectiveLimit {
		last = last[len(last)-statusDirectiveLimit:]
	}

	text, err := c.msgs.Status(cs.Language(), moderation.StatusData{
		Mode:             cs.Mode(),
		Language:         cs.Language(),
		InjectionsActive: cs.InjectionsActive(),
		DirectiveCount:   len(directives),
		LastDirectives:   last,
		BanListSize:      c.cache.Len(),
	})
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}
