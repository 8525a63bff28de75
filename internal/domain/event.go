package domain

import "time"

// Event represents a published site event with its attached images.
type Event struct {
	ID          int64
	Title       string
	Description string
	EventDate   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Images      []EventImage
}

// EventImage captures the metadata of an uploaded image; the bytes live in
// object storage under StorageKey.
type EventImage struct {
	ID          int64
	EventID     int64
	FileName    string
	ContentType string
	StorageKey  string
	Size        int64
	CreatedAt   time.Time
}
