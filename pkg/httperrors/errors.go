// Package httperrors maps service errors onto HTTP status codes.
package httperrors

import (
	"errors"
	"net/http"

	"github.com/yourname/fileshare/internal/models"
)

// Status returns the status code for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrMalformedRequest),
		errors.Is(err, models.ErrDecode),
		errors.Is(err, models.ErrPathEscape):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Write replies with the status for err. The body is the plain status text;
// error details stay in the server log.
func Write(w http.ResponseWriter, err error) {
	code := Status(err)
	http.Error(w, http.StatusText(code), code)
}
