package models

import "time"

const DefaultTitle = "QR Page"

type Page struct {
	ID        string    `db:"id"`
	OwnerID   int64     `db:"user_id"`
	Audio     *string   `db:"audio"` // nullable, filename in media dir
	Image     *string   `db:"image"` // nullable, filename in media dir
	Text      *string   `db:"text"`
	Title     *string   `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// HasContent reports whether anything worth rendering is attached.
// Title alone does not count.
func (p *Page) HasContent() bool {
	if p == nil {
		return false
	}
	return p.Audio != nil || p.Image != nil || p.Text != nil
}

func (p *Page) DisplayTitle() string {
	if p == nil || p.Title == nil || *p.Title == "" {
		return DefaultTitle
	}
	return *p.Title
}

// MediaFiles returns the blob filenames referenced by the page.
func (p *Page) MediaFiles() []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.Audio != nil && *p.Audio != "" {
		out = append(out, *p.Audio)
	}
	if p.Image != nil && *p.Image != "" {
		out = append(out, *p.Image)
	}
	return out
}

type Field string

const (
	FieldAudio Field = "audio"
	FieldImage Field = "image"
	FieldText  Field = "text"
	FieldTitle Field = "title"
)

// Column returns the table column backing the field.
func (f Field) Column() (string, error) {
	switch f {
	case FieldAudio, FieldImage, FieldText, FieldTitle:
		return string(f), nil
	}
	return "", ErrUnknownField
}

func StringPtr(s string) *string { return &s }
