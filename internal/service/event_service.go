package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"finsite-server/internal/domain"
	"finsite-server/internal/repository"
	"finsite-server/internal/storage"
)

var (
	// ErrImageTooLarge is returned when an uploaded file exceeds the per-file limit.
	ErrImageTooLarge = errors.New("image exceeds size limit")
	// ErrTooManyImages is returned when a request carries more files than allowed.
	ErrTooManyImages = errors.New("too many images")
	// ErrStorageUnavailable indicates no object storage is configured.
	ErrStorageUnavailable = errors.New("storage service not configured")
)

// ImageUpload carries one uploaded file received from a multipart request.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// EventInput holds the mutable fields of an event.
type EventInput struct {
	Title       string
	Description string
	EventDate   *time.Time
}

// EventService coordinates event CRUD and image blob storage.
type EventService interface {
	CreateEvent(ctx context.Context, input EventInput, images []ImageUpload) (*domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, input EventInput, images []ImageUpload) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	AttachImage(ctx context.Context, eventID int64, upload ImageUpload) (*domain.EventImage, error)
	OpenImage(ctx context.Context, imageID int64) (*domain.EventImage, io.ReadCloser, error)
	RemoveImage(ctx context.Context, imageID int64) error
}

// EventLimits bounds multipart uploads.
type EventLimits struct {
	MaxFileBytes int64
	MaxFiles     int
}

type eventService struct {
	events    repository.EventRepository
	storage   storage.Service
	bucket    string
	keyPrefix string
	limits    EventLimits
	logger    *logrus.Logger
}

func NewEventService(events repository.EventRepository, store storage.Service, bucket, keyPrefix string, limits EventLimits, logger *logrus.Logger) EventService {
	return &eventService{
		events:    events,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		limits:    limits,
		logger:    logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input EventInput, images []ImageUpload) (*domain.Event, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := s.checkUploads(images); err != nil {
		return nil, err
	}

	metas, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
		Images:      metas,
	}

	if _, err := s.events.Create(ctx, event); err != nil {
		s.cleanupBlobs(metas)
		return nil, err
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.events.Get(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events.List(ctx)
}

// UpdateEvent rewrites the event fields and appends any newly uploaded images.
func (s *eventService) UpdateEvent(ctx context.Context, id int64, input EventInput, images []ImageUpload) (*domain.Event, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := s.checkUploads(images); err != nil {
		return nil, err
	}

	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.EventDate = input.EventDate
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	metas, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}
	for i := range metas {
		metas[i].EventID = id
		if _, err := s.events.AddImage(ctx, &metas[i]); err != nil {
			s.cleanupBlobs(metas[i:])
			return nil, err
		}
	}

	return s.events.Get(ctx, id)
}

func (s *eventService) DeleteEvent(ctx context.Context, id int64) error {
	keys, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	if len(keys) > 0 && s.storage != nil {
		// metadata is already gone; a failed blob delete is only worth a warning
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.storage.DeleteObjects(cleanupCtx, s.bucket, keys); err != nil {
			s.logger.Warnf("delete event %d blobs: %v", id, err)
		}
	}
	return nil
}

func (s *eventService) AttachImage(ctx context.Context, eventID int64, upload ImageUpload) (*domain.EventImage, error) {
	if err := s.checkUploads([]ImageUpload{upload}); err != nil {
		return nil, err
	}
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	meta, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}
	meta.EventID = eventID
	if _, err := s.events.AddImage(ctx, &meta); err != nil {
		s.cleanupBlobs([]domain.EventImage{meta})
		return nil, err
	}
	return &meta, nil
}

func (s *eventService) OpenImage(ctx context.Context, imageID int64) (*domain.EventImage, io.ReadCloser, error) {
	image, err := s.events.GetImage(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil {
		return nil, nil, ErrStorageUnavailable
	}
	body, err := s.storage.GetObject(ctx, s.bucket, image.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return image, body, nil
}

func (s *eventService) RemoveImage(ctx context.Context, imageID int64) error {
	image, err := s.events.DeleteImage(ctx, imageID)
	if err != nil {
		return err
	}
	if s.storage != nil {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.storage.DeleteObjects(cleanupCtx, s.bucket, []string{image.StorageKey}); err != nil {
			s.logger.Warnf("delete image blob %s: %v", image.StorageKey, err)
		}
	}
	return nil
}

func (s *eventService) checkUploads(images []ImageUpload) error {
	if len(images) == 0 {
		return nil
	}
	if s.storage == nil {
		return ErrStorageUnavailable
	}
	if s.limits.MaxFiles > 0 && len(images) > s.limits.MaxFiles {
		return ErrTooManyImages
	}
	for _, img := range images {
		if s.limits.MaxFileBytes > 0 && int64(len(img.Data)) > s.limits.MaxFileBytes {
			return fmt.Errorf("%w: %s", ErrImageTooLarge, img.FileName)
		}
	}
	return nil
}

func (s *eventService) uploadAll(ctx context.Context, images []ImageUpload) ([]domain.EventImage, error) {
	var metas []domain.EventImage
	for _, img := range images {
		meta, err := s.upload(ctx, img)
		if err != nil {
			s.cleanupBlobs(metas)
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (s *eventService) upload(ctx context.Context, img ImageUpload) (domain.EventImage, error) {
	key := path.Join(s.keyPrefix, "events", uuid.NewString()+path.Ext(img.FileName))
	if err := s.storage.PutObject(ctx, s.bucket, key, img.ContentType, bytes.NewReader(img.Data)); err != nil {
		return domain.EventImage{}, fmt.Errorf("upload image %s: %w", img.FileName, err)
	}
	return domain.EventImage{
		FileName:    img.FileName,
		ContentType: img.ContentType,
		StorageKey:  key,
		Size:        int64(len(img.Data)),
	}, nil
}

func (s *eventService) cleanupBlobs(metas []domain.EventImage) {
	if len(metas) == 0 || s.storage == nil {
		return
	}
	keys := make([]string, 0, len(metas))
	for _, m := range metas {
		keys = append(keys, m.StorageKey)
	}
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.storage.DeleteObjects(cleanupCtx, s.bucket, keys); err != nil {
		s.logger.Warnf("cleanup uploaded blobs: %v", err)
	}
}
