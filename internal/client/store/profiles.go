package store

import (
	"context"
	"database/sql"
	"sync"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/repositories/users"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/agrisonic/agrisonic/internal/dbx"
	"github.com/agrisonic/agrisonic/internal/logging"
)

// ProfileCache holds at most one user profile. Every write replaces the
// whole row.
type ProfileCache struct {
	db  *sql.DB
	mu  sync.RWMutex
	hub hub[*models.User]
	log logging.Logger
}

func newProfileCache(db *sql.DB, log logging.Logger) *ProfileCache {
	return &ProfileCache{db: db, log: log}
}

// Put replaces the stored profile with u.
func (p *ProfileCache) Put(ctx context.Context, u *models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}
	return p.write(ctx, "put profile", func(ctx context.Context, repo users.Repository) error {
		return repo.Replace(ctx, u)
	})
}

// Get returns the stored profile, or nil when there is none. A non-empty id
// that does not match the stored row also yields nil.
func (p *ProfileCache) Get(ctx context.Context, id string) (*models.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, err := p.read(ctx, p.db)
	if err != nil {
		return nil, err
	}
	if u != nil && id != "" && u.ID != id {
		return nil, nil
	}
	return u, nil
}

func (p *ProfileCache) Current(ctx context.Context) (*models.User, error) {
	return p.Get(ctx, "")
}

func (p *ProfileCache) Clear(ctx context.Context) error {
	return p.write(ctx, "clear profile", func(ctx context.Context, repo users.Repository) error {
		return repo.Clear(ctx)
	})
}

// Subscribe emits the current profile (nil when absent) and every
// replacement or clear after it. Received values are shared between
// subscribers and must not be modified. The channel is closed when ctx is
// done, so ctx should be cancellable.
func (p *ProfileCache) Subscribe(ctx context.Context) (<-chan *models.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, err := p.read(ctx, p.db)
	if err != nil {
		return nil, err
	}
	return p.hub.subscribe(ctx, u), nil
}

func (p *ProfileCache) write(ctx context.Context, op string, fn func(context.Context, users.Repository) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, users.NewSQLiteRepository(tx))
	})
	if err != nil {
		return common.Persistence(op, err)
	}
	p.notifyLocked(ctx)
	return nil
}

func (p *ProfileCache) notifyLocked(ctx context.Context) {
	u, err := p.read(ctx, p.db)
	if err != nil {
		p.log.Warn(ctx, "profile change not published", "error", err)
		return
	}
	p.hub.publish(u)
}

func (p *ProfileCache) read(ctx context.Context, db dbx.DBTX) (*models.User, error) {
	u, err := users.NewSQLiteRepository(db).Current(ctx)
	if err != nil {
		return nil, common.Persistence("read profile", err)
	}
	return u, nil
}

func validateUser(u *models.User) error {
	if u == nil {
		return common.NewValidationError("user", "must not be nil")
	}
	if u.ID == "" {
		return common.NewValidationError("user.id", "must not be empty")
	}
	return nil
}
