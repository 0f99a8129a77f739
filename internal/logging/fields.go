package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService  = "service"
	FieldOwnerID  = "owner_id"
	FieldSiteID   = "site_id"
	FieldSiteURL  = "site_url"
	FieldEventID  = "event_id"
	FieldAPIKey   = "api_key" // always a redacted form, never the raw key
	FieldIP       = "ip"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldError    = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// OwnerID returns a slog attribute for the owning user's id.
func OwnerID(id string) slog.Attr {
	return slog.String(FieldOwnerID, id)
}

// SiteID returns a slog attribute for a site id.
func SiteID(id string) slog.Attr {
	return slog.String(FieldSiteID, id)
}

// SiteURL returns a slog attribute for a site URL.
func SiteURL(url string) slog.Attr {
	return slog.String(FieldSiteURL, url)
}

// EventID returns a slog attribute for a bot-request event id.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// APIKey returns a slog attribute for a redacted API key.
func APIKey(redacted string) slog.Attr {
	return slog.String(FieldAPIKey, redacted)
}

// IP returns a slog attribute for the client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
