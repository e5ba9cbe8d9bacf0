package stations

import (
	"bytes"
	"fmt"

	"github.com/Vovarama1992/qrpage/internal/ports"
)

type S3Store struct {
	media ports.MediaStore
}

func NewS3Store(media ports.MediaStore) *S3Store {
	return &S3Store{media: media}
}

func (s *S3Store) Run(name string, data []byte) error {
	if _, err := s.media.Save(name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}
