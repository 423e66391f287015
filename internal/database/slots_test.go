package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/click2print/orderdesk/internal/storage"
)

// fakeDB answers the three statements SlotStore issues from an in-memory map.
type fakeDB struct {
	rows    map[string][]byte
	queries []string
	err     error
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.value
	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		f.rows[args[0].(string)] = append([]byte(nil), args[1].([]byte)...)
	case strings.HasPrefix(sql, "DELETE"):
		delete(f.rows, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func TestSlotStore_RoundTrip(t *testing.T) {
	db := &fakeDB{rows: map[string][]byte{}}
	s := NewSlotStore(db, "orderdesk_slots", nil)
	ctx := context.Background()

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if _, err := s.Load(ctx, "order-store"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load on empty table: err = %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, "order-store", []byte(`{"version":2}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load(ctx, "order-store")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `{"version":2}` {
		t.Errorf("Load = %q", got)
	}

	if err := s.Delete(ctx, "order-store"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Load(ctx, "order-store"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load after Delete: err = %v, want ErrNotFound", err)
	}

	for _, q := range db.queries {
		if !strings.Contains(q, `"orderdesk_slots"`) {
			t.Errorf("query does not use the quoted table name: %s", q)
		}
	}
}

func TestSlotStore_WrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewSlotStore(&fakeDB{rows: map[string][]byte{}, err: boom}, "slots", nil)
	ctx := context.Background()

	if err := s.Save(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Errorf("Save err = %v, want wrapped %v", err, boom)
	}
	if _, err := s.Load(ctx, "k"); !errors.Is(err, boom) || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load err = %v, want wrapped %v", err, boom)
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("Delete err = %v, want wrapped %v", err, boom)
	}
	if err := s.EnsureSchema(ctx); !errors.Is(err, boom) {
		t.Errorf("EnsureSchema err = %v, want wrapped %v", err, boom)
	}
}
