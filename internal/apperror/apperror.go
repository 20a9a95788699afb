// Package apperror defines the stable error vocabulary of the API.
// Every failure a handler can emit pairs a machine-readable code with
// a user-facing German message and the HTTP status it maps to.  The
// code is what clients branch on; the message is displayed directly.
// Services return these values instead of throwing, and the handler
// layer is the only place a status code is written to the wire.
package apperror

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error carries the code/status/message triple for one failure mode.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface so services can return *Error
// through normal error plumbing.
func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Credential and account-state errors.
var (
	ErrInvalidToken       = &Error{Code: "INVALID_TOKEN", Message: "Ungültiges oder abgelaufenes Token", Status: http.StatusUnauthorized}
	ErrAccountNotFound    = &Error{Code: "ACCOUNT_NOT_FOUND", Message: "Konto nicht gefunden", Status: http.StatusUnauthorized}
	ErrAccountDeactivated = &Error{Code: "ACCOUNT_DEACTIVATED", Message: "Dieses Konto wurde deaktiviert", Status: http.StatusForbidden}
	ErrNotAuthorized      = &Error{Code: "NOT_AUTHORIZED", Message: "Keine Berechtigung für diese Aktion", Status: http.StatusForbidden}
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "E-Mail-Adresse oder Passwort ist falsch", Status: http.StatusUnauthorized}
)

// Registration and password validation errors.
var (
	ErrEmailExists           = &Error{Code: "EMAIL_EXISTS", Message: "Diese E-Mail-Adresse wird bereits verwendet", Status: http.StatusConflict}
	ErrInvalidEmail          = &Error{Code: "INVALID_EMAIL", Message: "Bitte eine gültige E-Mail-Adresse angeben", Status: http.StatusBadRequest}
	ErrPasswordTooShort      = &Error{Code: "PASSWORD_TOO_SHORT", Message: "Das Passwort muss mindestens 8 Zeichen lang sein", Status: http.StatusBadRequest}
	ErrPasswordMissingLetter = &Error{Code: "PASSWORD_MISSING_LETTER", Message: "Das Passwort muss mindestens einen Buchstaben enthalten", Status: http.StatusBadRequest}
	ErrPasswordMissingNumber = &Error{Code: "PASSWORD_MISSING_NUMBER", Message: "Das Passwort muss mindestens eine Zahl enthalten", Status: http.StatusBadRequest}
)

// Session and resource errors.
var (
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "Sitzung nicht gefunden", Status: http.StatusNotFound}
	ErrNotSessionOwner = &Error{Code: "NOT_SESSION_OWNER", Message: "Diese Sitzung gehört einem anderen Konto", Status: http.StatusForbidden}
	ErrEventNotFound   = &Error{Code: "EVENT_NOT_FOUND", Message: "Veranstaltung nicht gefunden", Status: http.StatusNotFound}
	ErrGameNotFound    = &Error{Code: "GAME_NOT_FOUND", Message: "Spiel nicht gefunden", Status: http.StatusNotFound}
	ErrNoThumbnail     = &Error{Code: "NO_THUMBNAIL", Message: "Kein Vorschaubild vorhanden", Status: http.StatusNotFound}
	ErrInvalidBody     = &Error{Code: "INVALID_BODY", Message: "Ungültige Anfrage", Status: http.StatusBadRequest}
)

// EventToken builds the 401 emitted by the event-token middleware.
// The code is always INVALID_EVENT_TOKEN; only the English message
// varies ("Event token required", "Event token expired", "Invalid
// event token") so guests see why their share link stopped working.
func EventToken(message string) *Error {
	return &Error{Code: "INVALID_EVENT_TOKEN", Message: message, Status: http.StatusUnauthorized}
}

// Respond writes the error as the API's uniform JSON envelope.
func Respond(c echo.Context, e *Error) error {
	return c.JSON(e.Status, echo.Map{"error": e})
}
