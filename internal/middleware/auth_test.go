package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
)

const testSecret = "mw-test-secret"

type memSessions struct {
	rows map[string]model.Session
}

func (m *memSessions) Create(_ context.Context, s model.Session) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id string) (model.Session, error) {
	s, ok := m.rows[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) ListByAccount(_ context.Context, accountID string) ([]model.Session, error) {
	return nil, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memSessions) DeleteByAccount(_ context.Context, accountID string) error { return nil }

func (m *memSessions) DeleteByAccountExcept(_ context.Context, accountID, keepID string) error {
	return nil
}

func (m *memSessions) TouchLastUsed(_ context.Context, id string, t time.Time) error { return nil }

type memAccounts struct {
	byID     map[string]model.Account
	failWith error
}

func (m *memAccounts) FindByID(_ context.Context, id string) (model.Account, error) {
	if m.failWith != nil {
		return model.Account{}, m.failWith
	}
	a, ok := m.byID[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (model.Account, error) {
	return model.Account{}, repository.ErrNotFound
}

type fixture struct {
	sessions *auth.SessionService
	accounts *memAccounts
	store    *memSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &memSessions{rows: make(map[string]model.Session)}
	return &fixture{
		sessions: auth.NewSessionService(testSecret, store),
		accounts: &memAccounts{byID: make(map[string]model.Account)},
		store:    store,
	}
}

func (f *fixture) addAccount(id, role, status string) {
	f.accounts.byID[id] = model.Account{ID: id, Role: role, Status: status}
}

func (f *fixture) login(t *testing.T, accountID string) string {
	t.Helper()
	token, err := f.sessions.CreateSession(context.Background(), accountID, "", "")
	require.NoError(t, err)
	return token
}

func doRequest(mw echo.MiddlewareFunc, h echo.HandlerFunc, authz string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(h)(c)
	return rec, err
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireAuthAttachesIdentity(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	var gotAccount model.Account
	var gotSession string
	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), func(c echo.Context) error {
		gotAccount, _ = AccountFromContext(c)
		gotSession, _ = SessionIDFromContext(c)
		return c.NoContent(http.StatusOK)
	}, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", gotAccount.ID)
	assert.NotEmpty(t, gotSession)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	f := newFixture(t)
	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

// The scheme match is literal; "bearer" in lower case is not accepted.
func TestRequireAuthBearerPrefixCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

func TestRequireAuthRevokedSession(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	payload, err := f.sessions.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, f.sessions.RevokeSession(context.Background(), payload.SessionID))

	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

func TestRequireAuthAccountGone(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "acct-ghost")

	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", errorCode(t, rec))
}

func TestRequireAuthDeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusDeactivated)
	token := f.login(t, "acct-1")

	rec, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", errorCode(t, rec))
}

// Store failures bubble up as plain errors so Echo answers 500; they
// must never be dressed up as a 401.
func TestRequireAuthStoreErrorBubbles(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	boom := errors.New("connection refused")
	f.accounts.failWith = boom

	_, err := doRequest(RequireAuth(f.sessions, f.accounts), okHandler, "Bearer "+token)
	assert.ErrorIs(t, err, boom)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAdmin, model.StatusActive)
	token := f.login(t, "acct-1")

	chain := RequireAuth(f.sessions, f.accounts)(RequireAdmin()(okHandler))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	require.NoError(t, chain(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsOwnerRole(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	chain := RequireAuth(f.sessions, f.accounts)(RequireAdmin()(okHandler))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	require.NoError(t, chain(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_AUTHORIZED", errorCode(t, rec))
}

func TestRequireAdminWithoutAuthContext(t *testing.T) {
	rec, err := doRequest(RequireAdmin(), okHandler, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

func TestOptionalAuthAnonymousProceeds(t *testing.T) {
	f := newFixture(t)
	var anon bool
	rec, err := doRequest(OptionalAuth(f.sessions, f.accounts), func(c echo.Context) error {
		_, ok := AccountFromContext(c)
		anon = !ok
		return c.NoContent(http.StatusOK)
	}, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, anon)
}

func TestOptionalAuthAttachesAccountWhenPresent(t *testing.T) {
	f := newFixture(t)
	f.addAccount("acct-1", model.RoleAccountOwner, model.StatusActive)
	token := f.login(t, "acct-1")

	var got model.Account
	rec, err := doRequest(OptionalAuth(f.sessions, f.accounts), func(c echo.Context) error {
		got, _ = AccountFromContext(c)
		return c.NoContent(http.StatusOK)
	}, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", got.ID)
}
