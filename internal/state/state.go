package state

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Русский комментарий: Состояние модерации в памяти. Внешняя карта
// chat_id -> *ChatState защищена одним коротким RWMutex строго для
// lookup-or-create. Каждое поле ChatState имеет собственную блокировку,
// поэтому несвязанные мутации одного чата не мешают друг другу, а медленный
// вызов классификатора никогда не держит ни одну из них.

// Mode определяет реакцию бота на сообщение, помеченное классификатором.
type Mode string

const (
	// ModeBan — бан отправителя + удаление сообщения.
	ModeBan Mode = "ban"
	// ModeNotify — только удаление и уведомление, без бана.
	ModeNotify Mode = "notify"
)

// ParseMode разбирает значение режима из аргумента команды.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ban":
		return ModeBan, nil
	case "notify":
		return ModeNotify, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Language определяет язык пользовательских текстов бота в чате.
type Language string

const (
	LangEnglish Language = "en"
	LangRussian Language = "ru"
)

// ParseLanguage разбирает язык из аргумента команды.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LangEnglish, nil
	case "ru", "russian":
		return LangRussian, nil
	default:
		return "", fmt.Errorf("unknown language %q", s)
	}
}

// AdminDirective — свободный текст от администратора, который подмешивается
// в промпт классификатора. Порядок вставки значим.
type AdminDirective struct {
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// ChatState — состояние модерации одного чата.
type ChatState struct {
	quarMu   sync.Mutex
	counters map[int64]int
	exited   map[int64]struct{}

	modeMu sync.RWMutex
	mode   Mode

	langMu sync.RWMutex
	lang   Language

	activeMu         sync.RWMutex
	injectionsActive bool

	injMu      sync.RWMutex
	injections []AdminDirective
}

// NewChatState создаёт состояние чата с настройками по умолчанию.
func NewChatState() *ChatState {
	return &ChatState{
		counters: make(map[int64]int),
		exited:   make(map[int64]struct{}),
		mode:     ModeBan,
		lang:     LangEnglish,
	}
}

// Admit выполняет карантинный переход для одного входящего сообщения:
// атомарный read-increment-compare-and-maybe-delete под счётчиковой
// блокировкой чата. Возвращает счётчик на момент инкремента и признак того,
// что сообщение нужно отправить классификатору.
//
// Инвариант: после того как счётчик достиг threshold, пользователь вышел из
// карантина навсегда — ни подсчёта, ни классификации для него больше нет.
// Сама блокировка никогда не переживает этот метод: классификация идёт
// уже без неё.
func (s *ChatState) Admit(userID int64, threshold int) (count int, classify bool) {
	s.quarMu.Lock()
	defer s.quarMu.Unlock()

	if _, done := s.exited[userID]; done {
		return 0, false
	}

	n := s.counters[userID] + 1
	if n >= threshold {
		// Выход из карантина терминален: запись счётчика удаляется,
		// пользователь запоминается как проверенный.
		delete(s.counters, userID)
		s.exited[userID] = struct{}{}
		return n, false
	}
	s.counters[userID] = n
	return n, true
}

// DropUser убирает пользователя из карантинного учёта после того, как к нему
// применили действие (бан или пометка). Дальше его сообщения не проверяются.
func (s *ChatState) DropUser(userID int64) {
	s.quarMu.Lock()
	defer s.quarMu.Unlock()
	delete(s.counters, userID)
	s.exited[userID] = struct{}{}
}

// CounterOf возвращает текущее значение счётчика (0 если записи нет).
func (s *ChatState) CounterOf(userID int64) int {
	s.quarMu.Lock()
	defer s.quarMu.Unlock()
	return s.counters[userID]
}

// HasCounter сообщает, существует ли запись счётчика для пользователя.
func (s *ChatState) HasCounter(userID int64) bool {
	s.quarMu.Lock()
	defer s.quarMu.Unlock()
	_, ok := s.counters[userID]
	return ok
}

func (s *ChatState) Mode() Mode {
	s.modeMu.RLock()
	defer s.modeMu.RUnlock()
	return s.mode
}

func (s *ChatState) SetMode(m Mode) {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	s.mode = m
}

func (s *ChatState) Language() Language {
	s.langMu.RLock()
	defer s.langMu.RUnlock()
	return s.lang
}

func (s *ChatState) SetLanguage(l Language) {
	s.langMu.Lock()
	defer s.langMu.Unlock()
	s.lang = l
}

func (s *ChatState) InjectionsActive() bool {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	return s.injectionsActive
}

// ToggleInjections переключает флаг и возвращает новое значение.
func (s *ChatState) ToggleInjections() bool {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	s.injectionsActive = !s.injectionsActive
	return s.injectionsActive
}

// AppendDirective добавляет директиву в конец списка.
func (s *ChatState) AppendDirective(d AdminDirective) {
	s.injMu.Lock()
	defer s.injMu.Unlock()
	s.injections = append(s.injections, d)
}

// Directives возвращает копию списка директив в порядке вставки.
func (s *ChatState) Directives() []AdminDirective {
	s.injMu.RLock()
	defer s.injMu.RUnlock()
	out := make([]AdminDirective, len(s.injections))
	copy(out, s.injections)
	return out
}

// ClearDirectives очищает список директив.
func (s *ChatState) ClearDirectives() {
	s.injMu.Lock()
	defer s.injMu.Unlock()
	s.injections = nil
}

// Store — карта chat_id -> состояние чата.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]*ChatState
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{chats: make(map[int64]*ChatState)}
}

// Get возвращает состояние чата, создавая его при первом обращении.
// Создание атомарно относительно карты: два конкурентных вызова для одного
// чата всегда получают один и тот же экземпляр.
func (s *Store) Get(chatID int64) *ChatState {
	s.mu.RLock()
	cs, ok := s.chats[chatID]
	s.mu.RUnlock()
	if ok {
		return cs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.chats[chatID]; ok {
		return cs
	}
	cs = NewChatState()
	s.chats[chatID] = cs
	return cs
}

// Len — количество известных чатов.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}
