// Package handler is the HTTP layer: it binds and validates requests,
// calls the service layer and writes responses.
//
// Typed endpoints go through Handle / HandleNoContent, which add logging,
// New Relic attributes and timing around every call.
package handler
