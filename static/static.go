// Package static embeds the API documentation assets served under /api-docs.
package static

import "embed"

//go:embed openapi.html openapi.json
var FS embed.FS

const (
	OpenAPIUI   = "openapi.html"
	OpenAPISpec = "openapi.json"
)
