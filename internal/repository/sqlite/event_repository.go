package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finsite-server/internal/domain"
	"finsite-server/internal/repository"
)

const (
	createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	event_date DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createEventImagesTable = `
CREATE TABLE IF NOT EXISTS event_images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	storage_key TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`
	createEventImagesIndex = `
CREATE INDEX IF NOT EXISTS idx_event_images_event_id ON event_images(event_id);
`
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createEventImagesTable); err != nil {
		return fmt.Errorf("create event images table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createEventImagesIndex); err != nil {
		return fmt.Errorf("create event images index: %w", err)
	}
	return nil
}

// Create stores the event and its image metadata in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (int64, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create event: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO events (title, description, event_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		event.Title,
		event.Description,
		nullTime(event.EventDate),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event last insert id: %w", err)
	}

	for i := range event.Images {
		img := &event.Images[i]
		img.EventID = id
		img.CreatedAt = now
		imgRes, err := tx.ExecContext(ctx, `
INSERT INTO event_images (event_id, file_name, content_type, storage_key, size, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			img.EventID,
			img.FileName,
			img.ContentType,
			img.StorageKey,
			img.Size,
			img.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert event image: %w", err)
		}
		if img.ID, err = imgRes.LastInsertId(); err != nil {
			return 0, fmt.Errorf("event image last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create event: %w", err)
	}

	event.ID = id
	return id, nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE events
SET title=?, description=?, event_date=?, updated_at=?
WHERE id=?`,
		event.Title,
		event.Description,
		nullTime(event.EventDate),
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the event with its image metadata and returns the storage
// keys of the removed images so blobs can be cleaned up afterwards.
func (r *EventRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete event: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT storage_key FROM event_images WHERE event_id=?`, id)
	if err != nil {
		return nil, fmt.Errorf("list event image keys: %w", err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan event image key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate event image keys: %w", err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_images WHERE event_id=?`, id); err != nil {
		return nil, fmt.Errorf("delete event images: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete event: %w", err)
	}
	return keys, nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, event_date, created_at, updated_at
FROM events
WHERE id=?`,
		id,
	)
	event, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	images, err := r.listImages(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Images = images
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, event_date, created_at, updated_at
FROM events
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	for i := range events {
		images, err := r.listImages(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Images = images
	}
	return events, nil
}

func (r *EventRepository) AddImage(ctx context.Context, image *domain.EventImage) (int64, error) {
	image.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO event_images (event_id, file_name, content_type, storage_key, size, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		image.EventID,
		image.FileName,
		image.ContentType,
		image.StorageKey,
		image.Size,
		image.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event image last insert id: %w", err)
	}
	image.ID = id
	return id, nil
}

func (r *EventRepository) GetImage(ctx context.Context, id int64) (*domain.EventImage, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, event_id, file_name, content_type, storage_key, size, created_at
FROM event_images
WHERE id=?`,
		id,
	)
	return scanEventImage(row)
}

// DeleteImage removes the image metadata and returns it so the caller can
// delete the blob from object storage.
func (r *EventRepository) DeleteImage(ctx context.Context, id int64) (*domain.EventImage, error) {
	image, err := r.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_images WHERE id=?`, id); err != nil {
		return nil, fmt.Errorf("delete event image: %w", err)
	}
	return image, nil
}

func (r *EventRepository) listImages(ctx context.Context, eventID int64) ([]domain.EventImage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, event_id, file_name, content_type, storage_key, size, created_at
FROM event_images
WHERE event_id=?
ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event images: %w", err)
	}
	defer rows.Close()

	var images []domain.EventImage
	for rows.Next() {
		image, err := scanEventImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event images: %w", err)
	}
	return images, nil
}

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	var (
		event     domain.Event
		eventDate sql.NullTime
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&eventDate,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if eventDate.Valid {
		t := eventDate.Time
		event.EventDate = &t
	}
	return &event, nil
}

func scanEventImage(row interface {
	Scan(dest ...any) error
}) (*domain.EventImage, error) {
	var image domain.EventImage
	if err := row.Scan(
		&image.ID,
		&image.EventID,
		&image.FileName,
		&image.ContentType,
		&image.StorageKey,
		&image.Size,
		&image.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan event image: %w", err)
	}
	return &image, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
