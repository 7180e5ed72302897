// Package pkguid provides helpers for generating unique identifiers.
//
// Upload handles and correlation IDs are time-ordered UUID v7 strings, so
// the newest uploads sort last when listed or logged.
package pkguid
