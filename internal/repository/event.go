package repository

import (
	"context"

	"finsite-server/internal/domain"
)

// EventRepository exposes persistence operations for Event aggregates.
// Create stores the event row and its image metadata in one transaction.
type EventRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, event *domain.Event) (int64, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) ([]string, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	AddImage(ctx context.Context, image *domain.EventImage) (int64, error)
	GetImage(ctx context.Context, id int64) (*domain.EventImage, error)
	DeleteImage(ctx context.Context, id int64) (*domain.EventImage, error)
}
