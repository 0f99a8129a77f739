// Package handlers contains the HTTP handlers for the botwall API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/service"
)

// writeServiceError maps the service failure taxonomy onto HTTP status
// codes. Unrecognized errors get a generic 500 without leaking detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		httputil.WriteError(w, http.StatusUnauthorized, "invalid or revoked API key")
	case errors.Is(err, service.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, "not your site")
	case errors.Is(err, service.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "site not found")
	case errors.Is(err, service.ErrConflict):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTransient):
		httputil.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
