package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spieltreff/backend/internal/auth"
)

func eventTokenMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_EVENT_TOKEN", body.Error.Code)
	return body.Error.Message
}

func TestRequireEventTokenAttachesEventID(t *testing.T) {
	tokens := auth.NewEventTokenService(testSecret, time.Hour)
	token, err := tokens.Sign("event-7")
	require.NoError(t, err)

	var gotEvent string
	rec, err := doRequest(RequireEventToken(tokens), func(c echo.Context) error {
		gotEvent, _ = EventIDFromContext(c)
		return c.NoContent(http.StatusOK)
	}, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event-7", gotEvent)
}

func TestRequireEventTokenMissingHeader(t *testing.T) {
	tokens := auth.NewEventTokenService(testSecret, time.Hour)
	rec, err := doRequest(RequireEventToken(tokens), okHandler, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Event token required", eventTokenMessage(t, rec))
}

func TestRequireEventTokenExpired(t *testing.T) {
	tokens := auth.NewEventTokenService(testSecret, -time.Minute)
	token, err := tokens.Sign("event-7")
	require.NoError(t, err)

	rec, err := doRequest(RequireEventToken(tokens), okHandler, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Event token expired", eventTokenMessage(t, rec))
}

func TestRequireEventTokenGarbage(t *testing.T) {
	tokens := auth.NewEventTokenService(testSecret, time.Hour)
	rec, err := doRequest(RequireEventToken(tokens), okHandler, "Bearer not-a-jwt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid event token", eventTokenMessage(t, rec))
}

// An account token must not open event-scoped routes even though it is
// signed with the same secret.
func TestRequireEventTokenRejectsAccountToken(t *testing.T) {
	f := newFixture(t)
	accountToken := f.login(t, "acct-1")

	tokens := auth.NewEventTokenService(testSecret, time.Hour)
	rec, err := doRequest(RequireEventToken(tokens), okHandler, "Bearer "+accountToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid event token", eventTokenMessage(t, rec))
}
