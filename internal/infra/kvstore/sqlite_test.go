package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
)

func TestSQLiteRoundTripAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, ok, err := s.Get(ctx, KeyUser); err != nil || ok {
		t.Fatalf("unexpected initial value: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, KeyUser, `{"id":"u1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, KeyUser, `{"id":"u2"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, ok, err := s.Get(ctx, KeyUser)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if got != `{"id":"u2"}` {
		t.Fatalf("unexpected value: got %s", got)
	}

	if err := s.Delete(ctx, KeyUser); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyUser); ok {
		t.Fatalf("key still present after delete")
	}
}

func TestSQLiteUpdateIsReadModifyWrite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "device.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	incr := func(current string, ok bool) (string, error) {
		n := 0
		if ok {
			n, _ = strconv.Atoi(current)
		}
		return strconv.Itoa(n + 1), nil
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Update(ctx, "counter", incr); err != nil {
			t.Fatalf("update #%d: %v", i+1, err)
		}
	}
	got, _, _ := s.Get(ctx, "counter")
	if got != "3" {
		t.Fatalf("unexpected counter: got %s want 3", got)
	}

	boom := errors.New("boom")
	if _, err := s.Update(ctx, "counter", func(string, bool) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected update error, got %v", err)
	}
	got, _, _ = s.Get(ctx, "counter")
	if got != "3" {
		t.Fatalf("failed update must not write: got %s", got)
	}
}

func TestMemoryRejectsEmptyKey(t *testing.T) {
	m := NewMemory()
	if err := m.Set(context.Background(), "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
