// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, error mapping, logging, recovery and correlation ID
// propagation. Handlers may also return a Renderer for HTML or image bodies,
// or a Redirect after a form post.
package pkgrouter
