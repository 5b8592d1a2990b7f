package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
)

// Service defines the session-cart behavior needed by the cart controllers.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, item Item) (*Cart, error)
	UpdateItem(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, bookID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	SaveForUser(ctx context.Context, sessionID string, userID uuid.UUID) error
	LoadForUser(ctx context.Context, sessionID string, userID uuid.UUID) (*Cart, error)
}

type sessionCartStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type service struct {
	store sessionCartStore
	db    *db.Client
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Store  sessionCartStore
	DB     *db.Client
	Logger *logger.Logger
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		store: params.Store,
		db:    params.DB,
		logg:  params.Logger,
	}, nil
}

// Get returns the session cart, binding an empty one to the session on first
// access so the TTL starts counting.
func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, item Item) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		return cart.AddItem(item)
	})
}

func (s *service) UpdateItem(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		return cart.UpdateItem(bookID, quantity)
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, bookID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		return cart.RemoveItem(bookID)
	})
}

// Clear drops the session cart.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// SaveForUser snapshots the session cart into the user's persisted cart
// record. An empty session cart clears the persisted copy too, so logout
// after emptying the cart does not resurrect old lines.
func (s *service) SaveForUser(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if cart.IsEmpty() {
			return repo.DeleteForUser(ctx, userID)
		}
		if _, err := repo.ReplaceForUser(ctx, userID, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
		}
		return nil
	})
}

// LoadForUser replaces the session cart with the user's persisted one. When
// the user has no persisted cart the session cart is left untouched.
func (s *service) LoadForUser(ctx context.Context, sessionID string, userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var persisted *Cart
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := NewRepository(tx).FindActiveForUser(ctx, userID)
		if err != nil {
			return err
		}
		persisted = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Debug(ctx, "no persisted cart for user, keeping session cart")
			return s.store.Load(ctx, sessionID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load persisted cart")
	}

	if err := s.store.Save(ctx, sessionID, persisted); err != nil {
		return nil, err
	}
	return persisted, nil
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
