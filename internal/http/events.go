package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finsite-server/internal/repository"
	"finsite-server/internal/service"
)

// image form fields accepted on create/update; clients send either name
var imageFields = []string{"images", "images[]"}

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.events.ListEvents(c.Request.Context())
	if err != nil {
		h.eventError(c, err)
		return
	}

	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = eventToResponse(events[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createEvent(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	input, err := eventInputFromForm(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uploads, err := readUploads(form, imageFields...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), input, uploads)
	if err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) getEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) updateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	input, err := eventInputFromForm(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uploads, err := readUploads(form, imageFields...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.UpdateEvent(c.Request.Context(), id, input, uploads)
	if err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) deleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.events.DeleteEvent(c.Request.Context(), id); err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) attachImage(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	eventIDStr := formValue(form, "event_id")
	if eventIDStr == "" {
		eventIDStr = formValue(form, "eventId")
	}
	eventID, err := strconv.ParseInt(eventIDStr, 10, 64)
	if err != nil || eventID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	uploads, err := readUploads(form, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(uploads) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one image is required"})
		return
	}

	image, err := h.events.AttachImage(c.Request.Context(), eventID, uploads[0])
	if err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, imageToResponse(*image))
}

func (h *Handler) getImageBlob(c *gin.Context) {
	id, ok := parseID(c, "imageId")
	if !ok {
		return
	}

	image, body, err := h.events.OpenImage(c.Request.Context(), id)
	if err != nil {
		h.eventError(c, err)
		return
	}
	defer body.Close()

	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", image.FileName),
	}
	c.DataFromReader(http.StatusOK, image.Size, contentType, body, extraHeaders)
}

func (h *Handler) deleteImage(c *gin.Context) {
	id, ok := parseID(c, "imageId")
	if !ok {
		return
	}

	if err := h.events.RemoveImage(c.Request.Context(), id); err != nil {
		h.eventError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) eventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrTooManyImages):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("event handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
	}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", param)})
		return 0, false
	}
	return id, true
}

func eventInputFromForm(form *multipart.Form) (service.EventInput, error) {
	input := service.EventInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
	}

	if raw := formValue(form, "event_date"); raw != "" {
		date, err := parseEventDate(raw)
		if err != nil {
			return service.EventInput{}, fmt.Errorf("invalid event_date: %s", raw)
		}
		input.EventDate = date
	}
	return input, nil
}

func parseEventDate(raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unsupported date format")
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func readUploads(form *multipart.Form, fields ...string) ([]service.ImageUpload, error) {
	var uploads []service.ImageUpload
	for _, field := range fields {
		for _, header := range form.File[field] {
			upload, err := readUpload(header)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, upload)
		}
	}
	return uploads, nil
}

func readUpload(header *multipart.FileHeader) (service.ImageUpload, error) {
	file, err := header.Open()
	if err != nil {
		return service.ImageUpload{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.ImageUpload{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}

	return service.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
