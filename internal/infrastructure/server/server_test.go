package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/infrastructure/logger"
)

func newErrorContext(t *testing.T, method string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCustomErrorHandlerValidationErrors(t *testing.T) {
	c, rec := newErrorContext(t, http.MethodPost)

	err := validator.New().Struct(struct {
		Title string `validate:"required"`
	}{})
	require.Error(t, err)
	verr, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	customErrorHandler(logger.NewNop())(verr, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestCustomErrorHandlerHTTPError(t *testing.T) {
	c, rec := newErrorContext(t, http.MethodGet)

	customErrorHandler(logger.NewNop())(echo.NewHTTPError(http.StatusNotFound, "missing"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomErrorHandlerGenericError(t *testing.T) {
	c, rec := newErrorContext(t, http.MethodGet)

	customErrorHandler(logger.NewNop())(assert.AnError, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
