// Package errs defines the error shapes returned to API clients.
//
// Every handler error is funnelled through the global error handler, which
// renders an *HTTPError as JSON. Upload rejections, missing files, auth
// failures and database errors all end up in this shape.
package errs
