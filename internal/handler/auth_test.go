package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/config"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
	"github.com/spieltreff/backend/internal/utils"
)

const testSecret = "handler-test-secret"

type fakeAccounts struct {
	byID map[string]model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[string]model.Account)}
}

func (f *fakeAccounts) Create(_ context.Context, a model.Account) error {
	for _, other := range f.byID {
		if other.Email == a.Email {
			return repository.ErrEmailExists
		}
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (model.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (model.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (f *fakeAccounts) ListAll(_ context.Context) ([]model.Account, error) {
	out := make([]model.Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAccounts) UpdatePasswordHash(_ context.Context, id, hash string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = hash
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) UpdateRole(_ context.Context, id, role string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Role = role
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) UpdateStatus(_ context.Context, id, status string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	f.byID[id] = a
	return nil
}

type fakeSessions struct {
	rows map[string]model.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: make(map[string]model.Session)}
}

func (f *fakeSessions) Create(_ context.Context, s model.Session) error {
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSessions) FindByID(_ context.Context, id string) (model.Session, error) {
	s, ok := f.rows[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) ListByAccount(_ context.Context, accountID string) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.rows {
		if s.AccountID == accountID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeSessions) DeleteByAccount(_ context.Context, accountID string) error {
	for id, s := range f.rows {
		if s.AccountID == accountID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteByAccountExcept(_ context.Context, accountID, keepID string) error {
	for id, s := range f.rows {
		if s.AccountID == accountID && id != keepID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeSessions) TouchLastUsed(_ context.Context, id string, t time.Time) error { return nil }

type authFixture struct {
	handler  *AuthHandler
	accounts *fakeAccounts
	sessions *fakeSessions
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	accounts := newFakeAccounts()
	sessions := newFakeSessions()
	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	return &authFixture{
		handler:  NewAuthHandler(cfg, accounts, auth.NewSessionService(testSecret, sessions)),
		accounts: accounts,
		sessions: sessions,
	}
}

func (f *authFixture) addAccount(t *testing.T, id, email, password, status string) {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	f.accounts.byID[id] = model.Account{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAccountOwner,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
}

func postJSON(h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	return rec, err
}

func responseErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestLoginCreatesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.addAccount(t, "acct-1", "alice@example.com", "passwort1", model.StatusActive)

	rec, err := postJSON(f.handler.Login, `{"email":"alice@example.com","password":"passwort1"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token   string `json:"token"`
		Account struct {
			ID string `json:"id"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "acct-1", body.Account.ID)
	assert.Len(t, f.sessions.rows, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addAccount(t, "acct-1", "alice@example.com", "passwort1", model.StatusActive)

	rec, err := postJSON(f.handler.Login, `{"email":"alice@example.com","password":"falsch99"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", responseErrorCode(t, rec))
	assert.Empty(t, f.sessions.rows)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	rec, err := postJSON(f.handler.Login, `{"email":"nobody@example.com","password":"passwort1"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", responseErrorCode(t, rec))
}

// Correct credentials on a deactivated account answer 403 and must
// not open a session.
func TestLoginDeactivatedAccountBlocked(t *testing.T) {
	f := newAuthFixture(t)
	f.addAccount(t, "acct-1", "alice@example.com", "passwort1", model.StatusDeactivated)

	rec, err := postJSON(f.handler.Login, `{"email":"alice@example.com","password":"passwort1"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", responseErrorCode(t, rec))
	assert.Empty(t, f.sessions.rows, "no session row may be created for a deactivated account")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.addAccount(t, "acct-1", "alice@example.com", "passwort1", model.StatusActive)

	rec, err := postJSON(f.handler.Register, `{"email":"alice@example.com","password":"passwort1"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_EXISTS", responseErrorCode(t, rec))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	rec, err := postJSON(f.handler.Register, `{"email":"bob@example.com","password":"kurz1"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PASSWORD_TOO_SHORT", responseErrorCode(t, rec))
	assert.Empty(t, f.accounts.byID)
}
