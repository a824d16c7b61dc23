// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as request
// IDs, request logging, New Relic tracing, CORS, rate limiting, panic
// recovery and the final error response.
package middleware
