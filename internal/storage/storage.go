package storage

// Русский комментарий: Durable store для снапшотов состояния. Контракт
// нарочно узкий — key-value с одним логическим ключом на весь снапшот.
// Бэкенда два: файл sqlite (по умолчанию) и PostgreSQL (если задан
// POSTGRES_DSN, например когда бот живёт рядом с уже развёрнутой базой).

// Store — durable key-value хранилище.
type Store interface {
	// Get возвращает значение ключа или (nil, nil), если ключа нет.
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// Flush доводит записанное до диска.
	Flush() error
	Close() error
}
