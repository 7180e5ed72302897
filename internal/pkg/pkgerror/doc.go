// Package pkgerror carries errors from the use cases to the HTTP edge.
//
// An Error pairs the message shown to the user with a Code; the router turns
// the Code into a status (unreadable upload 400, unsupported file type 415,
// missing timestamp column 422, unknown upload 404, oversized upload 413).
// The wrapped cause stays reachable through errors.Is and errors.As.
package pkgerror
