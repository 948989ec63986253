// Package shareproto holds the HTTP paths and form fields shared by the
// server and the push/pull client.
package shareproto

const (
	PathIndex   = "/"
	PathUpload  = "/upload"
	PathFiles   = "/files"
	PathHealth  = "/health"
	PathMetrics = "/metrics"

	// FilesPrefix is the URL prefix under which the root directory is served.
	FilesPrefix = PathFiles + "/"

	// FormField is the multipart field name used by the upload form and client.
	FormField = "file"
)
