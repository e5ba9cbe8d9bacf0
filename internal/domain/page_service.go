package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/domain/stations"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/google/uuid"
)

const MediaBasePath = "/media/"

type PageService struct {
	repo  ports.PageRepository
	media ports.MediaStore

	s1 *stations.S1ResolveFile
	s2 *stations.S2Download
	s3 *stations.S3Store

	metrics *observability.Metrics
	log     *logger.ZapLogger

	events    chan ports.PageEvent
	newSuffix func() string
}

var _ ports.PageService = (*PageService)(nil)

func NewPageService(
	repo ports.PageRepository,
	media ports.MediaStore,
	s1 *stations.S1ResolveFile,
	s2 *stations.S2Download,
	metrics *observability.Metrics,
	log *logger.ZapLogger,
) *PageService {
	return &PageService{
		repo:      repo,
		media:     media,
		s1:        s1,
		s2:        s2,
		s3:        stations.NewS3Store(media),
		metrics:   metrics,
		log:       log,
		events:    make(chan ports.PageEvent, 100),
		newSuffix: blobSuffix,
	}
}

// blobSuffix makes every stored upload name unique: {page}_{field}_{suffix}.{ext}.
func blobSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *PageService) Events() <-chan ports.PageEvent { return s.events }

func (s *PageService) FindOrCreate(ctx context.Context, ownerID int64) (*models.Page, error) {
	return s.repo.FindOrCreateByOwner(ctx, ownerID)
}

func (s *PageService) Get(ctx context.Context, id string) (*models.Page, error) {
	return s.repo.Get(ctx, id)
}

// View builds what the landing page renders. An unknown id is an empty
// page, not an error.
func (s *PageService) View(ctx context.Context, id string) (ports.PageView, error) {
	page, err := s.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, models.ErrPageNotFound) {
		return ports.PageView{}, err
	}
	if errors.Is(err, models.ErrPageNotFound) {
		page = nil
	}
	return NewPageView(id, page), nil
}

// NewPageView derives the render model from a page; nil means the page
// does not exist.
func NewPageView(id string, page *models.Page) ports.PageView {
	v := ports.PageView{
		PageID:     id,
		HasContent: page.HasContent(),
		Title:      page.DisplayTitle(),
	}
	if page == nil {
		return v
	}
	if page.Audio != nil && *page.Audio != "" {
		v.AudioURL = MediaBasePath + *page.Audio
	}
	if page.Image != nil && *page.Image != "" {
		v.ImageURL = MediaBasePath + *page.Image
	}
	if page.Text != nil {
		v.Text = *page.Text
	}
	return v
}

func (s *PageService) AttachAudio(ctx context.Context, ownerID int64, fileID string, kind ports.AudioKind) (*models.Page, error) {
	ext := "mp3"
	if kind == ports.AudioKindVoice {
		ext = "ogg"
	}
	return s.attach(ctx, ownerID, fileID, models.FieldAudio, ext)
}

// AttachImage expects the file id of the largest photo size.
func (s *PageService) AttachImage(ctx context.Context, ownerID int64, fileID string) (*models.Page, error) {
	return s.attach(ctx, ownerID, fileID, models.FieldImage, "jpg")
}

// attach downloads and stores the new blob under a fresh name before the
// record points at it. The previous blob goes only after the record no
// longer references it, so a failure anywhere leaves the old page as it
// was. Fresh names also keep cached /media URLs from going stale.
func (s *PageService) attach(ctx context.Context, ownerID int64, fileID string, field models.Field, ext string) (*models.Page, error) {
	page, err := s.repo.FindOrCreateByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	url, err := s.s1.Run(ctx, fileID)
	if err != nil {
		s.metrics.ObserveMutation(string(field), err)
		return nil, err
	}
	data, err := s.s2.Run(ctx, url)
	if err != nil {
		s.metrics.ObserveMutation(string(field), err)
		return nil, err
	}

	name := fmt.Sprintf("%s_%s_%s.%s", page.ID, field, s.newSuffix(), ext)
	if err := s.s3.Run(name, data); err != nil {
		err = fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		s.metrics.ObserveMutation(string(field), err)
		return nil, err
	}

	old := fieldValue(page, field)

	if err := s.repo.SetField(ctx, page.ID, field, &name); err != nil {
		s.removeBlob(name)
		s.metrics.ObserveMutation(string(field), err)
		return nil, err
	}
	if old != "" {
		s.removeBlob(old)
	}

	setFieldValue(page, field, &name)
	s.metrics.ObserveMutation(string(field), nil)
	s.publish(page.ID, "updated")

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "page media attached",
		Fields: map[string]any{
			"pageID": page.ID,
			"field":  string(field),
			"file":   name,
			"bytes":  len(data),
		},
	})
	return page, nil
}

func (s *PageService) SetText(ctx context.Context, ownerID int64, text string) (*models.Page, error) {
	return s.setString(ctx, ownerID, models.FieldText, text)
}

func (s *PageService) SetTitle(ctx context.Context, ownerID int64, title string) (*models.Page, error) {
	return s.setString(ctx, ownerID, models.FieldTitle, strings.TrimSpace(title))
}

func (s *PageService) setString(ctx context.Context, ownerID int64, field models.Field, value string) (*models.Page, error) {
	if strings.TrimSpace(value) == "" {
		return nil, models.ErrEmptyInput
	}

	page, err := s.repo.FindOrCreateByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	err = s.repo.SetField(ctx, page.ID, field, &value)
	s.metrics.ObserveMutation(string(field), err)
	if err != nil {
		return nil, err
	}

	setFieldValue(page, field, &value)
	s.publish(page.ID, "updated")
	return page, nil
}

// Clear removes the blob files first and only then nulls the
// references: a crash in between leaves an orphan file, never a page
// pointing at a missing one.
func (s *PageService) Clear(ctx context.Context, ownerID int64) (*models.Page, error) {
	page, err := s.repo.FindOrCreateByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for _, name := range page.MediaFiles() {
		if err := s.media.Delete(name); err != nil {
			s.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "delete media failed",
				Fields:  map[string]any{"pageID": page.ID, "file": name},
				Error:   err,
			})
			return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		}
	}

	err = s.repo.ClearContent(ctx, page.ID)
	s.metrics.ObserveMutation("clear", err)
	if err != nil {
		return nil, err
	}

	page.Audio, page.Image, page.Text = nil, nil, nil
	s.publish(page.ID, "cleared")
	return page, nil
}

func (s *PageService) removeBlob(name string) {
	if err := s.media.Delete(name); err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "orphan media left behind",
			Fields:  map[string]any{"file": name},
			Error:   err,
		})
	}
}

// publish never blocks a mutation on slow listeners.
func (s *PageService) publish(pageID, kind string) {
	select {
	case s.events <- ports.PageEvent{PageID: pageID, Kind: kind}:
	default:
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "page event dropped",
			Fields:  map[string]any{"pageID": pageID, "kind": kind},
		})
	}
}

func fieldValue(p *models.Page, f models.Field) string {
	var v *string
	switch f {
	case models.FieldAudio:
		v = p.Audio
	case models.FieldImage:
		v = p.Image
	case models.FieldText:
		v = p.Text
	case models.FieldTitle:
		v = p.Title
	}
	if v == nil {
		return ""
	}
	return *v
}

func setFieldValue(p *models.Page, f models.Field, v *string) {
	switch f {
	case models.FieldAudio:
		p.Audio = v
	case models.FieldImage:
		p.Image = v
	case models.FieldText:
		p.Text = v
	case models.FieldTitle:
		p.Title = v
	}
}
