// Package pkgroutine runs background work under one accounting point.
//
// A Manager caps how many tasks run at once, records the errors they return
// and turns panics into errors, so Wait reports everything that went wrong
// during shutdown. Every drives periodic housekeeping such as cache sweeps.
package pkgroutine
