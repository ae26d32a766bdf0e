package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/repositories/metadata"
	"github.com/agrisonic/agrisonic/internal/client/repositories/users"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/agrisonic/agrisonic/internal/dbx"
	"github.com/agrisonic/agrisonic/internal/logging"
)

// Store owns both components and performs the writes that must span them.
// Locks are always taken credentials first, then profiles.
type Store struct {
	db       *sql.DB
	creds    *CredentialStore
	profiles *ProfileCache
	log      logging.Logger
}

type Option func(*options)

type options struct {
	defaultLanguage string
	log             logging.Logger
}

// WithDefaultLanguage sets the language reported when none is stored.
func WithDefaultLanguage(lang string) Option {
	return func(o *options) {
		if lang != "" {
			o.defaultLanguage = lang
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New builds the store over an already migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	o := options{defaultLanguage: common.DefaultLanguage, log: logging.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Store{
		db:       db,
		creds:    newCredentialStore(db, o.defaultLanguage, o.log),
		profiles: newProfileCache(db, o.log),
		log:      o.log,
	}
}

func (s *Store) Credentials() *CredentialStore { return s.creds }

func (s *Store) Profiles() *ProfileCache { return s.profiles }

// Credential is shorthand for Credentials().Credential.
func (s *Store) Credential(ctx context.Context) (models.Credential, error) {
	return s.creds.Credential(ctx)
}

// SaveSession is shorthand for Credentials().SaveSession.
func (s *Store) SaveSession(ctx context.Context, token string) error {
	return s.creds.SaveSession(ctx, token)
}

// EstablishSession records a successful sign-in: token, logged-in flag,
// identity mirror keys and the profile row are committed together.
func (s *Store) EstablishSession(ctx context.Context, token string, u *models.User) error {
	if token == "" {
		return common.NewValidationError("session_token", "must not be empty")
	}
	if err := validateUser(u); err != nil {
		return err
	}

	return s.writeBoth(ctx, "establish session", func(ctx context.Context, meta metadata.Repository, profile users.Repository) error {
		values := sessionValues(token)
		for k, v := range identityValues(u) {
			values[k] = v
		}
		if err := meta.SetMany(ctx, values); err != nil {
			return err
		}
		return profile.Replace(ctx, u)
	})
}

// Wipe removes every credential field and the cached profile in one
// transaction.
func (s *Store) Wipe(ctx context.Context) error {
	return s.writeBoth(ctx, "wipe local state", func(ctx context.Context, meta metadata.Repository, profile users.Repository) error {
		if err := meta.Clear(ctx); err != nil {
			return err
		}
		return profile.Clear(ctx)
	})
}

// ReplaceProfile stores a refreshed profile of the signed-in user. A profile
// whose id differs from the cached row is rejected with
// common.ErrMalformedResponse and nothing is written.
func (s *Store) ReplaceProfile(ctx context.Context, u *models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	return s.writeBoth(ctx, "replace profile", func(ctx context.Context, meta metadata.Repository, profile users.Repository) error {
		current, err := profile.Current(ctx)
		if err != nil {
			return err
		}
		if current != nil && current.ID != u.ID {
			return fmt.Errorf("%w: profile id %q does not match cached %q", common.ErrMalformedResponse, u.ID, current.ID)
		}
		if err := meta.SetMany(ctx, identityValues(u)); err != nil {
			return err
		}
		return profile.Replace(ctx, u)
	})
}

func (s *Store) writeBoth(ctx context.Context, op string, fn func(context.Context, metadata.Repository, users.Repository) error) error {
	s.creds.mu.Lock()
	defer s.creds.mu.Unlock()
	s.profiles.mu.Lock()
	defer s.profiles.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, metadata.NewSQLiteRepository(tx), users.NewSQLiteRepository(tx))
	})
	if err != nil {
		if errors.Is(err, common.ErrMalformedResponse) {
			return err
		}
		return common.Persistence(op, err)
	}

	s.creds.notifyLocked(ctx)
	s.profiles.notifyLocked(ctx)
	return nil
}

func identityValues(u *models.User) map[string][]byte {
	return map[string][]byte{
		KeyUserID:    []byte(u.ID),
		KeyUserEmail: []byte(u.Email),
		KeyUserName:  []byte(u.Name),
	}
}
