// Package middleware holds the global and route-level echo middleware:
// request ids, request-scoped logging, New Relic tracing, CORS, bearer
// authentication, rate limiting, multipart image uploads and the global
// error handler.
package middleware
