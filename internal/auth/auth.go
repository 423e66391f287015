// Package auth provides the bearer token the live channel authenticates with.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/click2print/orderdesk/internal/storage"
)

// TokenKey is the storage slot that holds the bearer token.
const TokenKey = "access_token"

// ErrNoToken means no bearer token is available.
var ErrNoToken = errors.New("no bearer token")

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, e.g. from a flag or environment variable.
type StaticToken string

// Token returns the token, or ErrNoToken when it is empty.
func (t StaticToken) Token(context.Context) (string, error) {
	tok := strings.TrimSpace(string(t))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// StorageTokenSource reads the token from a storage slot on every call, so a
// login in another process is picked up on the next connect.
type StorageTokenSource struct {
	storage storage.Storage
	key     string
}

// NewStorageTokenSource reads key from st. An empty key means TokenKey.
func NewStorageTokenSource(st storage.Storage, key string) *StorageTokenSource {
	if key == "" {
		key = TokenKey
	}
	return &StorageTokenSource{storage: st, key: key}
}

// Token loads the token. A missing or blank slot is ErrNoToken.
func (s *StorageTokenSource) Token(ctx context.Context) (string, error) {
	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	tok := strings.TrimSpace(string(data))
	// Accept a JSON string too, as written by JSON-minded tools.
	if strings.HasPrefix(tok, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(tok), &unquoted); err == nil {
			tok = strings.TrimSpace(unquoted)
		}
	}
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// SetToken stores token in the slot.
func (s *StorageTokenSource) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	if err := s.storage.Save(ctx, s.key, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the token.
func (s *StorageTokenSource) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
