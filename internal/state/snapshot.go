package state

// Русский комментарий: Сериализуемая проекция состояния. Снапшот собирается
// копированием под короткими полевыми блокировками (copy-on-read): сразу
// после сборки писатели продолжают менять живое состояние, а медленная
// запись на диск идёт уже с копией.

// ChatSnapshot — сохраняемая проекция одного ChatState.
type ChatSnapshot struct {
	Counters         map[int64]int    `json:"counters"`
	Exited           []int64          `json:"exited,omitempty"`
	Mode             Mode             `json:"mode"`
	Language         Language         `json:"language"`
	InjectionsActive bool             `json:"injections_active"`
	Injections       []AdminDirective `json:"injections"`
}

// Snapshot — полная сохраняемая проекция сервиса: все чаты + CAS-список.
type Snapshot struct {
	Chats     map[int64]ChatSnapshot `json:"chats"`
	BannedIDs []int64                `json:"banned_ids"`
}

// Export снимает проекцию одного состояния чата.
func (s *ChatState) Export() ChatSnapshot {
	snap := ChatSnapshot{}

	s.quarMu.Lock()
	snap.Counters = make(map[int64]int, len(s.counters))
	for id, n := range s.counters {
		snap.Counters[id] = n
	}
	snap.Exited = make([]int64, 0, len(s.exited))
	for id := range s.exited {
		snap.Exited = append(snap.Exited, id)
	}
	s.quarMu.Unlock()

	snap.Mode = s.Mode()
	snap.Language = s.Language()
	snap.InjectionsActive = s.InjectionsActive()
	snap.Injections = s.Directives()

	return snap
}

// Export снимает проекцию всех чатов хранилища.
func (s *Store) Export() map[int64]ChatSnapshot {
	s.mu.RLock()
	refs := make(map[int64]*ChatState, len(s.chats))
	for id, cs := range s.chats {
		refs[id] = cs
	}
	s.mu.RUnlock()

	// Полевые блокировки берутся уже после отпускания внешней.
	out := make(map[int64]ChatSnapshot, len(refs))
	for id, cs := range refs {
		out[id] = cs.Export()
	}
	return out
}

// RestoreChatState восстанавливает состояние чата из проекции.
// Незнакомые значения mode/language тихо заменяются дефолтными: старый или
// битый снапшот не должен ронять загрузку.
func RestoreChatState(snap ChatSnapshot) *ChatState {
	cs := NewChatState()

	for id, n := range snap.Counters {
		cs.counters[id] = n
	}
	for _, id := range snap.Exited {
		cs.exited[id] = struct{}{}
	}

	if m, err := ParseMode(string(snap.Mode)); err == nil {
		cs.mode = m
	}
	if l, err := ParseLanguage(string(snap.Language)); err == nil {
		cs.lang = l
	}
	cs.injectionsActive = snap.InjectionsActive
	cs.injections = append(cs.injections, snap.Injections...)

	return cs
}

// RestoreStore восстанавливает хранилище из проекции всех чатов.
func RestoreStore(chats map[int64]ChatSnapshot) *Store {
	s := NewStore()
	for id, snap := range chats {
		s.chats[id] = RestoreChatState(snap)
	}
	return s
}
