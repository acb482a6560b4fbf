package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiErrWrapsSentinels(t *testing.T) {
	err := NewBadRequestError("missing blog post id")
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "missing blog post id: malformed request", err.Error())

	wrapped := fmt.Errorf("handler: %w", NewNotFound("project"))
	assert.True(t, IsNotFound(wrapped))

	var apiErr *ApiErr
	assert.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "project not found", apiErr.Message())
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		err      *ApiErr
		sentinel error
		field    string
	}{
		{NewValidationError("email", "must be a valid email address"), ErrValidation, "email"},
		{NewMissingRequiredFieldError("name"), ErrMissingRequiredField, "name"},
		{NewInvalidFieldError("rating", "must be between 1 and 5"), ErrInvalidField, "rating"},
		{NewInvalidJSONError(errors.New("unexpected EOF")), ErrInvalidJSON, "json"},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.sentinel)
		assert.Equal(t, http.StatusBadRequest, tt.err.StatusCode)
		assert.Equal(t, tt.field, tt.err.Field)
	}

	assert.Equal(t, "Missing required field: name", NewMissingRequiredFieldError("name").Details)
	assert.Equal(t, "Invalid field rating: must be between 1 and 5", NewInvalidFieldError("rating", "must be between 1 and 5").Details)

	assert.Equal(t, "validation failed: must be a valid email address", NewValidationError("email", "must be a valid email address").Error())
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	inner := NewInternalErrorWithCause("load config", errors.New("disk gone"))
	outer := NewInternalErrorWithCause("start server", inner)

	assert.Equal(t,
		"start server: internal server error -> load config: internal server error -> disk gone",
		outer.GetFullError())
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		check  func(error) bool
	}{
		{"duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_blog_post_slug"`), http.StatusConflict, IsAlreadyExists},
		{"unique", errors.New("UNIQUE constraint failed: blog_posts.slug"), http.StatusConflict, IsAlreadyExists},
		{"not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound, IsNotFound},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, func(err error) bool { return errors.Is(err, ErrDatabaseConnection) }},
		{"other", errors.New("syntax error at or near"), http.StatusInternalServerError, func(err error) bool { return errors.Is(err, ErrDatabaseQuery) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("create", "blog post", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.True(t, tt.check(err))
		})
	}

	t.Run("api errors pass through", func(t *testing.T) {
		notFound := NewNotFound("testimonial")
		assert.Same(t, notFound, NewDatabaseError("get", "testimonial", notFound))
	})
}

func TestAuthErrors(t *testing.T) {
	assert.ErrorIs(t, NewMissingTokenError(), ErrMissingToken)
	assert.ErrorIs(t, NewInvalidCredentialsError(), ErrInvalidCredentials)
	assert.ErrorIs(t, NewExpiredTokenError(), ErrExpiredToken)
	assert.NotErrorIs(t, NewExpiredTokenError(), ErrInvalidToken)
	assert.Equal(t, http.StatusUnauthorized, NewInvalidTokenError().StatusCode)
	assert.Equal(t, http.StatusForbidden, NewRegistrationClosedError().StatusCode)
}

func TestConfigErrors(t *testing.T) {
	assert.ErrorIs(t, NewConfigError("ssm", errors.New("denied")), ErrConfigMissing)
	assert.ErrorIs(t, NewInvalidConfigError("PORT", "not a number"), ErrConfigInvalid)
	assert.ErrorIs(t, NewRateLimitError(), ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, NewRateLimitError().StatusCode)
}
