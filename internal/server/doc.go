// Package server hosts the Fiber HTTP service that exposes the remote template
// engine to processes that cannot link it directly. It provides the request
// middleware chain (request IDs, panic recovery), the /-/resolve endpoint that
// maps engine errors onto HTTP statuses.
// Diagnostics routes live in the routes subpackage so they can depend on the
// engine without creating import cycles.
package server
