package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agrifi-backend/internal/domain/ledger"

	"github.com/labstack/echo/v4"
)

// CallerHeader carries the caller identity on every mutating route — the
// ledger equivalent of the message sender.
const CallerHeader = "Ax-Caller-Id"

func callerID(c echo.Context) (string, error) {
	v := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(CallerHeader)))
	if !reHex32.MatchString(v) {
		return "", errors.New("missing or invalid " + CallerHeader)
	}
	return v, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// statusFor maps the shared fault taxonomy onto HTTP statuses. Everything a
// caller could fix by resubmitting differently is a 4xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidState),
		errors.Is(err, ledger.ErrExpired),
		errors.Is(err, ledger.ErrNotYetExpired):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidShare),
		errors.Is(err, ledger.ErrInvalidOption),
		errors.Is(err, ledger.ErrInvalidAddress),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

// ---- test helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
