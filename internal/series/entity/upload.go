package entity

import "time"

// Upload is a normalized file kept between requests so a new series
// selection does not need the file to be sent again.
type Upload struct {
	ID        string
	FileName  string
	Format    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Table     Table
}
