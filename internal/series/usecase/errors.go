package usecase

import "fmt"

// UnsupportedFormatError reports a file name whose extension has no registered format.
type UnsupportedFormatError struct {
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.FileName)
}

// ParseError reports bytes that the format reader could not turn into a table.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("read %s file: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnError reports a table without the timestamp column its format requires.
type MissingColumnError struct {
	Format string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s file", e.Column, e.Format)
}
