package ports

import (
	"context"

	"github.com/Vovarama1992/qrpage/internal/models"
)

type PageRepository interface {
	// FindOrCreateByOwner returns the owner's earliest page, creating an
	// empty one when the owner has none.
	FindOrCreateByOwner(ctx context.Context, ownerID int64) (*models.Page, error)
	// Get returns models.ErrPageNotFound for unknown ids.
	Get(ctx context.Context, id string) (*models.Page, error)
	// SetField updates exactly one column; nil value stores NULL.
	SetField(ctx context.Context, id string, field models.Field, value *string) error
	// ClearContent nulls audio, image and text. Blob files are the
	// caller's concern and must be removed before this call.
	ClearContent(ctx context.Context, id string) error
}
