package orderstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/click2print/orderdesk/internal/metrics"
	"github.com/click2print/orderdesk/internal/model"
	"github.com/click2print/orderdesk/internal/storage"
)

const (
	// DefaultKey is the storage slot the draft lives in.
	DefaultKey = "order-store"

	// CurrentVersion is the persisted schema version. Version 2 added designerUploads.
	CurrentVersion = 2

	defaultSaveTimeout = 5 * time.Second
)

// Store is the single source of truth for the order draft.
type Store struct {
	storage     storage.Storage
	key         string
	logger      *slog.Logger
	metrics     *metrics.Metrics
	saveTimeout time.Duration

	mu        sync.Mutex
	state     model.FormData
	lastSaved []byte

	subMu   sync.Mutex
	subs    map[uint64]func(model.FormData)
	nextSub uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKey sets the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithMetrics records updates and persist failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithSaveTimeout bounds each write to storage.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// New returns a Store holding the initial draft. Nothing is read from storage.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:     st,
		key:         DefaultKey,
		logger:      slog.Default(),
		saveTimeout: defaultSaveTimeout,
		state:       model.NewFormData(),
		subs:        make(map[uint64]func(model.FormData)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a Store hydrated from its storage slot, migrating older
// persisted shapes. Only a storage read failure is an error; an unreadable
// blob is logged and replaced by the initial draft.
func Open(ctx context.Context, st storage.Storage, opts ...Option) (*Store, error) {
	s := New(st, opts...)
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a snapshot of the draft. Callers may modify it freely.
func (s *Store) Get() model.FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update merges patch into the draft.
func (s *Store) Update(patch Patch) {
	s.mutate("update", func(draft *model.FormData) {
		s.apply(draft, patch)
	})
}

// UpdateFunc merges the patch fn computes from the current draft. fn runs
// under the store lock and must not call back into the Store.
func (s *Store) UpdateFunc(fn func(current model.FormData) Patch) {
	s.mutate("update", func(draft *model.FormData) {
		s.apply(draft, fn(draft.Clone()))
	})
}

// AppendIntakeFiles adds files after the existing ones.
func (s *Store) AppendIntakeFiles(files ...model.UploadMeta) {
	s.mutate("append_intake_files", func(draft *model.FormData) {
		draft.OrderIntakeFiles = append(draft.OrderIntakeFiles, files...)
	})
}

// ClearIntakeFiles empties the intake file list and nothing else.
func (s *Store) ClearIntakeFiles() {
	s.mutate("clear_intake_files", func(draft *model.FormData) {
		draft.OrderIntakeFiles = []model.UploadMeta{}
	})
}

// Reset replaces the draft with the initial empty shape.
func (s *Store) Reset() {
	s.mutate("reset", func(draft *model.FormData) {
		*draft = model.NewFormData()
	})
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes it; calling it again does nothing.
func (s *Store) Subscribe(fn func(model.FormData)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) apply(draft *model.FormData, patch Patch) {
	u := normalize(patch)
	for _, key := range applyOrder(u) {
		if err := draft.SetField(key, u[key]); err != nil {
			s.logger.Warn("ignoring patch field", "field", key, "error", err)
		}
	}
}

// mutate applies fn to a copy of the draft, commits it, persists it and
// notifies subscribers.
func (s *Store) mutate(op string, fn func(draft *model.FormData)) {
	s.mu.Lock()
	draft := s.state.Clone()
	fn(&draft)
	draft.Normalize()
	s.state = draft.Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.metrics.StoreUpdated(op)
	s.notify(draft)
}

func (s *Store) notify(state model.FormData) {
	s.subMu.Lock()
	fns := make([]func(model.FormData), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}
