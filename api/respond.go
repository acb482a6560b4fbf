package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cosminvladulescu/bcon-site/errs"
)

// maxBodyBytes caps every JSON request body; blog content is the largest payload.
const maxBodyBytes = 2 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON writes data with status 200.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusOK, data)
}

// WriteCreated writes data with status 201.
func (r Responder) WriteCreated(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusCreated, data)
}

// WriteDeleted acknowledges a successful delete.
func (r Responder) WriteDeleted(w http.ResponseWriter, message string) {
	r.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError renders err as a JSON error body. Errors that are not an *errs.ApiErr,
// and server-side ApiErrs, are logged in full and reported without internals.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "Internal Server Error",
			"detail": "An unexpected error occurred",
			"status": "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("statusCode", apiErr.StatusCode).Msg(apiErr.GetFullError())
		r.writeJSON(w, apiErr.StatusCode, map[string]any{
			"error":  apiErr.Message(),
			"detail": apiErr.Message(),
			"status": "error",
		})
		return
	}

	response := map[string]any{
		"error":  apiErr.Error(),
		"detail": apiErr.Message(),
		"status": "error",
	}

	// Add field information if present (for validation errors)
	if apiErr.Field != "" {
		response["field"] = apiErr.Field
	}

	if apiErr.Details != "" {
		response["details"] = apiErr.Details
		response["detail"] = apiErr.Details
	}

	r.writeJSON(w, apiErr.StatusCode, response)
}

// validatable is implemented by every request payload.
type validatable interface {
	Validate() error
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(w http.ResponseWriter, req *http.Request, dst validatable) error {
	body := http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewBadRequestError("request body is empty")
		default:
			return errs.NewInvalidJSONError(err)
		}
	}
	return validationError(dst.Validate())
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
