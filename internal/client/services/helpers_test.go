package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/fakeapi"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/store"
	"github.com/agrisonic/agrisonic/internal/logging"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api   *fakeapi.Server
	store *store.Store
	gw    *client.Gateway
	mgr   *SessionManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	api := fakeapi.New(t)
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "agrisonic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := store.New(db)
	gw, err := client.NewGateway(client.Config{BaseURL: api.URL()}, st.Credentials())
	require.NoError(t, err)

	return &harness{
		api:   api,
		store: st,
		gw:    gw,
		mgr:   NewSessionManager(gw, st, logging.NewNop()),
	}
}

func (h *harness) credential(t *testing.T) models.Credential {
	t.Helper()
	c, err := h.store.Credential(context.Background())
	require.NoError(t, err)
	return c
}

func (h *harness) profile(t *testing.T) *models.User {
	t.Helper()
	u, err := h.store.Profiles().Current(context.Background())
	require.NoError(t, err)
	return u
}

func loginReply(userID, token string) fakeapi.Reply {
	return fakeapi.OK(map[string]any{
		"user":  map[string]any{"id": userID, "email": "a@b.com", "name": "A"},
		"token": token,
	})
}

// signIn drives the manager to Authenticated with token tok1 and user u1.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.api.Handle("POST", PathSignin, loginReply("u1", "tok1"))
	_, err := h.mgr.Login(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, Authenticated, h.mgr.State())
}

// cancelAfterCall cancels the caller's context as soon as the backend has
// answered, like a screen closed while a request was in flight.
type cancelAfterCall struct {
	inner  Caller
	cancel context.CancelFunc
}

func (c cancelAfterCall) Call(ctx context.Context, req client.Request) (*client.Response, error) {
	resp, err := c.inner.Call(ctx, req)
	c.cancel()
	return resp, err
}

// faultyStore wraps a real store and fails selected writes.
type faultyStore struct {
	SessionStore
	establishErr error
	wipeErr      error
}

func (f faultyStore) EstablishSession(ctx context.Context, token string, u *models.User) error {
	if f.establishErr != nil {
		return f.establishErr
	}
	return f.SessionStore.EstablishSession(ctx, token, u)
}

func (f faultyStore) Wipe(ctx context.Context) error {
	if f.wipeErr != nil {
		return f.wipeErr
	}
	return f.SessionStore.Wipe(ctx)
}
