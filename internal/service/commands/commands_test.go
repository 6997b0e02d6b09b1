package commands

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/strazhbot/strazh/internal/caslist"
	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
)

type fakeBot struct {
	replies []string
}

func (f *fakeBot) SendMessage(chatID int64, text string) error { return nil }

func (f *fakeBot) Reply(chatID int64, messageID int, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeBot) DeleteMessage(chatID int64, messageID int) error { return nil }
func (f *fakeBot) BanUser(chatID int64, userID int64) error        { return nil }

func (f *fakeBot) GetChatAdmins(chatID int64) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func (f *fakeBot) lastReply(t *testing.T) string {
	t.Helper()
	if len(f.replies) == 0 {
		t.Fatal("no reply sent")
	}
	return f.replies[len(f.replies)-1]
}

func mustMessages(t *testing.T) *moderation.Messages {
	t.Helper()
	msgs, err := moderation.NewMessages()
	if err != nil {
		t.Fatalf("NewMessages: %v", err)
	}
	return msgs
}

func invocation(args string) Invocation {
	return Invocation{
		Message: &tgbotapi.Message{
			MessageID: 10,
			From:      &tgbotapi.User{ID: 1, FirstName: "Admin"},
			Chat:      &tgbotapi.Chat{ID: -100},
		},
		Args: args,
	}
}

func TestRegistryLookup(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	msgs := mustMessages(t)
	r := NewRegistry(
		NewHelp(bot, chats, msgs, "1.0.0"),
		NewSetMode(bot, chats, msgs),
	)

	if _, ok := r.Lookup("help"); !ok {
		t.Fatal("help not registered")
	}
	if _, ok := r.Lookup("set_mode"); !ok {
		t.Fatal("set_mode not registered")
	}
	if _, ok := r.Lookup("unknown"); ok {
		t.Fatal("unknown command must not resolve")
	}
}

func TestHelpRepliesWithVersion(t *testing.T) {
	bot := &fakeBot{}
	cmd := NewHelp(bot, state.NewStore(), mustMessages(t), "1.2.3")

	if cmd.Permission() != PermissionPublic {
		t.Fatal("help must be public")
	}
	if err := cmd.Execute(context.Background(), invocation("")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(bot.lastReply(t), "1.2.3") {
		t.Fatalf("help reply must carry version, got %q", bot.lastReply(t))
	}
}

func TestSetModeValid(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewSetMode(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("notify")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := chats.Get(-100).Mode(); got != state.ModeNotify {
		t.Fatalf("mode = %v, want notify", got)
	}
	if !strings.Contains(bot.lastReply(t), "notify") {
		t.Fatalf("confirmation must name the new mode, got %q", bot.lastReply(t))
	}
}

func TestSetModeBadArgumentKeepsMode(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewSetMode(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("yolo")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := chats.Get(-100).Mode(); got != state.ModeBan {
		t.Fatalf("mode = %v, want unchanged ban", got)
	}
	if !strings.Contains(bot.lastReply(t), "/set_mode") {
		t.Fatalf("usage reply must show the schema, got %q", bot.lastReply(t))
	}
}

func TestSetLangConfirmsInNewLanguage(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewSetLang(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("ru")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := chats.Get(-100).Language(); got != state.LangRussian {
		t.Fatalf("language = %v, want ru", got)
	}
}

func TestInjectStoresDirective(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewInject(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("  be strict about crypto ads  ")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	directives := chats.Get(-100).Directives()
	if len(directives) != 1 {
		t.Fatalf("directives = %d, want 1", len(directives))
	}
	if directives[0].Text != "be strict about crypto ads" {
		t.Fatalf("directive text = %q", directives[0].Text)
	}
	if directives[0].Author != "Admin" {
		t.Fatalf("directive author = %q", directives[0].Author)
	}
}

func TestInjectRejectsEmptyDirective(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewInject(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("   ")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(chats.Get(-100).Directives()) != 0 {
		t.Fatal("empty directive must not be stored")
	}
	if !strings.Contains(bot.lastReply(t), "/inject") {
		t.Fatalf("usage reply must show the schema, got %q", bot.lastReply(t))
	}
}

func TestToggleInjectFlips(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cmd := NewToggleInject(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !chats.Get(-100).InjectionsActive() {
		t.Fatal("first toggle must activate injections")
	}
	if err := cmd.Execute(context.Background(), invocation("")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if chats.Get(-100).InjectionsActive() {
		t.Fatal("second toggle must deactivate injections")
	}
}

func TestClearInjectsKeepsActiveFlag(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cs := chats.Get(-100)
	cs.ToggleInjections()
	cs.AppendDirective(state.AdminDirective{Author: "Admin", Text: "no links"})
	cmd := NewClearInjects(bot, chats, mustMessages(t))

	if err := cmd.Execute(context.Background(), invocation("")); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cs.Directives()) != 0 {
		t.Fatal("directives must be cleared")
	}
	if !cs.InjectionsActive() {
		t.Fatal("clearing directives must not touch the active flag")
	}
}

func TestStatusReportsChatState(t *testing.T) {
	bot := &fakeBot{}
	chats := state.NewStore()
	cs := chats.Get(-100)
	cs.SetMode(state.ModeNotify)
	for _, text := range []string{"one", "two", "three", "four"} {
		cs.AppendDirective(state.AdminDirective{Author: "Admin", Text: text})
	}
	cache := caslist.NewCache()
	cache.Replace(caslist.Set{5: {}, 6: {}})

	cmd := NewStatus(bot, chats, cache, mustMessages(t))
	if cmd.Permission() != PermissionAdmin {
		t.Fatal("status must be admin-only")
	}
	if err := cmd.Execute(context.Background(), invocation("")); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	reply := bot.lastReply(t)
	if !strings.Contains(reply, "notify") {
		t.Fatalf("status must report the mode, got %q", reply)
	}
	if !strings.Contains(reply, "4") {
		t.Fatalf("status must report the directive count, got %q", reply)
	}
	// Показываются только три последние директивы.
	if strings.Contains(reply, "one") {
		t.Fatalf("oldest directive must be trimmed from the dump, got %q", reply)
	}
	if !strings.Contains(reply, "four") {
		t.Fatalf("latest directive must be in the dump, got %q", reply)
	}
}
