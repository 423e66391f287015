package orderstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/click2print/orderdesk/internal/model"
	"github.com/click2print/orderdesk/internal/storage"
)

// envelope is the persisted layout of the slot.
type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	FormData json.RawMessage `json:"formData,omitempty"`
}

// persistLocked writes the whole draft to storage. Failures are logged and
// counted; the in-memory draft stays authoritative. Callers hold s.mu.
func (s *Store) persistLocked() {
	formData, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error("failed to encode order draft", "error", err)
		s.metrics.PersistFailed()
		return
	}

	data, err := json.Marshal(envelope{
		State:   persistedState{FormData: formData},
		Version: CurrentVersion,
	})
	if err != nil {
		s.logger.Error("failed to encode order envelope", "error", err)
		s.metrics.PersistFailed()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist order draft", "key", s.key, "error", err)
		s.metrics.PersistFailed()
		return
	}
	s.lastSaved = data
}

// hydrate loads the slot into the store, migrating and writing back older shapes.
func (s *Store) hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.state = model.NewFormData()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	state, version, migrated, err := decodeEnvelope(data)
	if err != nil {
		s.logger.Warn("discarding unreadable order draft", "key", s.key, "error", err)
		s.state = model.NewFormData()
		return nil
	}
	if version > CurrentVersion {
		s.logger.Warn("order draft written by a newer version", "key", s.key, "version", version)
	}

	s.state = state
	if migrated {
		s.logger.Info("migrated order draft", "key", s.key, "version", CurrentVersion)
		s.persistLocked()
	} else {
		s.lastSaved = data
	}
	return nil
}

// Rehydrate reloads the draft from storage, e.g. after another process
// rewrote the slot. Subscribers are notified only when the slot differs from
// what this store last wrote.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	data, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		data = nil
	case err != nil:
		s.mu.Unlock()
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	if data != nil && bytes.Equal(data, s.lastSaved) {
		s.mu.Unlock()
		return nil
	}

	next := model.NewFormData()
	if data != nil {
		state, _, _, err := decodeEnvelope(data)
		if err != nil {
			s.mu.Unlock()
			s.logger.Warn("ignoring unreadable order draft", "key", s.key, "error", err)
			return nil
		}
		next = state
	}

	s.state = next
	s.lastSaved = data
	snapshot := next.Clone()
	s.mu.Unlock()

	s.metrics.StoreUpdated("rehydrate")
	s.notify(snapshot)
	return nil
}

// decodeEnvelope parses a persisted slot and reports the version it was
// written with. migrated is true when the blob was
// written by an older version or lacked the designerUploads container.
func decodeEnvelope(data []byte) (state model.FormData, version int, migrated bool, err error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.FormData{}, 0, false, fmt.Errorf("decode envelope: %w", err)
	}

	if len(env.State.FormData) == 0 || bytes.Equal(bytes.TrimSpace(env.State.FormData), []byte("null")) {
		return model.NewFormData(), env.Version, env.Version < CurrentVersion, nil
	}

	raw, migrated, err := migrate(env.State.FormData, env.Version)
	if err != nil {
		return model.FormData{}, env.Version, false, err
	}

	if err := json.Unmarshal(raw, &state); err != nil {
		return model.FormData{}, env.Version, false, fmt.Errorf("decode form data: %w", err)
	}
	state.Normalize()
	return state, env.Version, migrated, nil
}

// migrate brings a persisted formData object up to CurrentVersion. It only
// moves forward and is idempotent.
func migrate(formData json.RawMessage, version int) (json.RawMessage, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(formData, &fields); err != nil {
		return nil, false, fmt.Errorf("decode form data: %w", err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	migrated := version < CurrentVersion

	uploads, ok := fields[model.FieldDesignerUploads]
	if !ok || bytes.Equal(bytes.TrimSpace(uploads), []byte("null")) {
		fields[model.FieldDesignerUploads] = json.RawMessage(`{}`)
		migrated = true
	}

	if !migrated {
		return formData, false, nil
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, false, fmt.Errorf("encode migrated form data: %w", err)
	}
	return out, true, nil
}
