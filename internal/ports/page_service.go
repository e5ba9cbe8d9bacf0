package ports

import (
	"context"

	"github.com/Vovarama1992/qrpage/internal/models"
)

type PageEvent struct {
	PageID string
	Kind   string // "updated" | "cleared"
}

// PageView is everything the renderer needs from a page.
type PageView struct {
	PageID     string
	HasContent bool
	AudioURL   string
	ImageURL   string
	Text       string
	Title      string
}

type AudioKind string

const (
	AudioKindFile  AudioKind = "audio"
	AudioKindVoice AudioKind = "voice"
)

type PageService interface {
	FindOrCreate(ctx context.Context, ownerID int64) (*models.Page, error)
	Get(ctx context.Context, id string) (*models.Page, error)
	View(ctx context.Context, id string) (PageView, error)

	AttachAudio(ctx context.Context, ownerID int64, fileID string, kind AudioKind) (*models.Page, error)
	AttachImage(ctx context.Context, ownerID int64, fileID string) (*models.Page, error)
	SetText(ctx context.Context, ownerID int64, text string) (*models.Page, error)
	SetTitle(ctx context.Context, ownerID int64, title string) (*models.Page, error)
	Clear(ctx context.Context, ownerID int64) (*models.Page, error)

	Events() <-chan PageEvent
}
