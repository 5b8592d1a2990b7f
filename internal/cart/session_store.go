package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	redisclient "github.com/pageturn/bookstore-backend/pkg/redis"
)

type sessionBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartSessionKey(sessionID string) string
}

// SessionStore keeps session carts in Redis as JSON blobs keyed by session id.
// Every write refreshes the TTL, so active shoppers never lose their cart.
type SessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

// NewSessionStore builds a redis-backed cart store.
func NewSessionStore(client *redisclient.Client, ttl time.Duration) (*SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &SessionStore{backend: client, ttl: ttl}, nil
}

// NewSessionID mints an opaque cart session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Load fetches the cart bound to the session. A session with no cart yet
// yields an empty cart.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	raw, err := s.backend.Get(ctx, s.backend.CartSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return New(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session cart")
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	return &cart, nil
}

// Save writes the cart back to the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session cart")
	}
	if err := s.backend.Set(ctx, s.backend.CartSessionKey(sessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session cart")
	}
	return nil
}

// Delete drops the session cart entirely.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.backend.Del(ctx, s.backend.CartSessionKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session cart")
	}
	return nil
}
