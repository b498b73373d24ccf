package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/validators"
)

// newTestContext builds an Echo context for a handler call, with the
// validator wired and the authenticated user id set the way the auth
// middleware would.
func newTestContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", userID)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

// httpStatus returns the status a handler produced, whether it wrote the
// response or returned an *echo.HTTPError.
func httpStatus(err error, rec *httptest.ResponseRecorder) int {
	if err == nil {
		return rec.Code
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

// errStatus asserts the error is an *echo.HTTPError and returns its code
func errStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func newTestIdentity(users *fakeUserRepo) *identity.Service {
	return identity.NewService(users, nil)
}
