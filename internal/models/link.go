package models

import "time"

// AnonymousOwner is the owner identifier assigned to links created without one.
const AnonymousOwner = "anonymous"

// Link represents a shortened URL and its click statistics.
type Link struct {
	// ID is the unique identifier for the link record.
	ID int64
	// ShortCode is the 6-8 character alphanumeric code that resolves to OriginalURL.
	ShortCode string
	// OriginalURL is the redirect target.
	OriginalURL string
	// OwnerID is the opaque client identifier the link was created for.
	OwnerID string
	// Clicks is the number of redirects served for the link. It never decreases.
	Clicks int64
	// LastClickedAt is the time of the most recent redirect, nil until the first one.
	LastClickedAt *time.Time
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
}
