package commands

import (
	"context"
	"strings"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// SetLang переключает язык ответов бота в чате.
type SetLang struct {
	bot   telegram.API
	chats *state.Store
	msgs  *moderation.Messages
}

func NewSetLang(bot telegram.API, chats *state.Store, msgs *moderation.Messages) *SetLang {
	return &SetLang{bot: bot, chats: chats, msgs: msgs}
}

func (c *SetLang) Name() string           { return "set_lang" }
func (c *SetLang) Permission() Permission { return PermissionAdmin }

func (c *SetLang) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)

	lang, err := state.ParseLanguage(strings.TrimSpace(inv.Args))
	if err != nil {
		text, rerr := c.msgs.Usage(cs.Language(), "/set_lang <en|ru>")
		if rerr != nil {
			return rerr
		}
		return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
	}

	cs.SetLanguage(lang)
	// Подтверждение уже на новом языке.
	text, err := c.msgs.SetLang(lang, string(lang))
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}
