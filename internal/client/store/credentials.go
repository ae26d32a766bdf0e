package store

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/repositories/metadata"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/agrisonic/agrisonic/internal/dbx"
	"github.com/agrisonic/agrisonic/internal/logging"
)

// Keys of the metadata table.
const (
	KeySessionToken = "session_token"
	KeyIsLoggedIn   = "is_logged_in"
	KeyLanguage     = "language"
	KeyFCMToken     = "fcm_token"

	// Mirror of the signed-in user's identity, written with the session.
	KeyUserID    = "user_id"
	KeyUserEmail = "user_email"
	KeyUserName  = "user_name"
)

var (
	credentialKeys = []string{KeySessionToken, KeyIsLoggedIn, KeyLanguage, KeyFCMToken}
	identityKeys   = []string{KeyUserID, KeyUserEmail, KeyUserName}
)

// CredentialStore holds the session-related fields.
type CredentialStore struct {
	db              *sql.DB
	mu              sync.RWMutex
	defaultLanguage string
	hub             hub[models.Credential]
	log             logging.Logger
}

func newCredentialStore(db *sql.DB, defaultLanguage string, log logging.Logger) *CredentialStore {
	return &CredentialStore{db: db, defaultLanguage: defaultLanguage, log: log}
}

// Credential returns a snapshot with defaults applied: language falls back
// to the configured default, the flag to false, tokens to "".
func (s *CredentialStore) Credential(ctx context.Context) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx, s.db)
}

func (s *CredentialStore) SessionToken(ctx context.Context) (string, error) {
	c, err := s.Credential(ctx)
	return c.SessionToken, err
}

func (s *CredentialStore) IsLoggedIn(ctx context.Context) (bool, error) {
	c, err := s.Credential(ctx)
	return c.IsLoggedIn, err
}

func (s *CredentialStore) Language(ctx context.Context) (string, error) {
	c, err := s.Credential(ctx)
	return c.Language, err
}

func (s *CredentialStore) FCMToken(ctx context.Context) (string, error) {
	c, err := s.Credential(ctx)
	return c.FCMToken, err
}

// Identity returns the user mirrored by the last sign-in or profile refresh.
// The zero Identity means nobody is signed in.
func (s *CredentialStore) Identity(ctx context.Context) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, err := metadata.NewSQLiteRepository(s.db).GetMany(ctx, identityKeys...)
	if err != nil {
		return models.Identity{}, common.Persistence("read identity", err)
	}
	return models.Identity{
		UserID: string(values[KeyUserID]),
		Email:  string(values[KeyUserEmail]),
		Name:   string(values[KeyUserName]),
	}, nil
}

// Token satisfies the gateway's token source. A read failure is treated as
// "no token"; the request then goes out unauthenticated.
func (s *CredentialStore) Token(ctx context.Context) string {
	tok, err := s.SessionToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "session token unavailable", "error", err)
		return ""
	}
	return tok
}

// SaveSession stores token and sets the logged-in flag in one transaction.
func (s *CredentialStore) SaveSession(ctx context.Context, token string) error {
	if token == "" {
		return common.NewValidationError("session_token", "must not be empty")
	}
	return s.write(ctx, "save session", func(ctx context.Context, repo metadata.Repository) error {
		return repo.SetMany(ctx, sessionValues(token))
	})
}

// SetLanguage stores the preferred locale code.
func (s *CredentialStore) SetLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		return common.NewValidationError("language", "must not be empty")
	}
	return s.write(ctx, "set language", func(ctx context.Context, repo metadata.Repository) error {
		return repo.Set(ctx, KeyLanguage, []byte(lang))
	})
}

// SetFCMToken stores the push registration token; "" removes it.
func (s *CredentialStore) SetFCMToken(ctx context.Context, token string) error {
	return s.write(ctx, "set fcm token", func(ctx context.Context, repo metadata.Repository) error {
		if token == "" {
			return repo.Delete(ctx, KeyFCMToken)
		}
		return repo.Set(ctx, KeyFCMToken, []byte(token))
	})
}

// Clear removes every field with a single statement. Clearing an empty
// store is a no-op.
func (s *CredentialStore) Clear(ctx context.Context) error {
	return s.write(ctx, "clear credentials", func(ctx context.Context, repo metadata.Repository) error {
		return repo.Clear(ctx)
	})
}

// Subscribe returns a channel that receives the current credential and then
// every change. It is closed when ctx is done; pass a cancellable ctx, since
// a subscription on a context that never ends stays registered.
func (s *CredentialStore) Subscribe(ctx context.Context) (<-chan models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.read(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.hub.subscribe(ctx, c), nil
}

func (s *CredentialStore) write(ctx context.Context, op string, fn func(context.Context, metadata.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, metadata.NewSQLiteRepository(tx))
	})
	if err != nil {
		return common.Persistence(op, err)
	}
	s.notifyLocked(ctx)
	return nil
}

// notifyLocked publishes the committed state. The caller holds mu.
func (s *CredentialStore) notifyLocked(ctx context.Context) {
	c, err := s.read(ctx, s.db)
	if err != nil {
		s.log.Warn(ctx, "credential change not published", "error", err)
		return
	}
	s.hub.publish(c)
}

func (s *CredentialStore) read(ctx context.Context, db dbx.DBTX) (models.Credential, error) {
	values, err := metadata.NewSQLiteRepository(db).GetMany(ctx, credentialKeys...)
	if err != nil {
		return models.Credential{}, common.Persistence("read credentials", err)
	}

	c := models.Credential{
		SessionToken: string(values[KeySessionToken]),
		FCMToken:     string(values[KeyFCMToken]),
		Language:     string(values[KeyLanguage]),
	}
	if c.Language == "" {
		c.Language = s.defaultLanguage
	}
	if raw, ok := values[KeyIsLoggedIn]; ok {
		c.IsLoggedIn, _ = strconv.ParseBool(string(raw))
	}
	// A flag without a token is not a session.
	if c.SessionToken == "" {
		c.IsLoggedIn = false
	}
	return c, nil
}

func sessionValues(token string) map[string][]byte {
	return map[string][]byte{
		KeySessionToken: []byte(token),
		KeyIsLoggedIn:   []byte(strconv.FormatBool(true)),
	}
}
