package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestSQLiteStorePutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	// Отсутствующий ключ — (nil, nil), не ошибка
	got, err := store.Get("service_state")
	if err != nil {
		t.Fatalf("Get on missing key failed: %v", err)
	}
	if got != nil {
		t.Fatalf("Get on missing key = %q, want nil", got)
	}

	want := []byte(`{"chats":{},"banned_ids":[]}`)
	if err := store.Put("service_state", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err = store.Get("service_state")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get = %q, want %q", got, want)
	}

	// Повторный Put перезаписывает значение того же ключа
	want2 := []byte(`{"chats":{"1":{}},"banned_ids":[5]}`)
	if err := store.Put("service_state", want2); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	got, err = store.Get("service_state")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if !bytes.Equal(got, want2) {
		t.Fatalf("Get after overwrite = %q, want %q", got, want2)
	}

	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}

// TestSQLiteStoreReopen: записанное переживает переоткрытие файла
func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store2.Close()

	got, err := store2.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get after reopen = %q, want %q", got, "v")
	}
}
