package ports

import "io"

type MediaStore interface {
	Save(name string, r io.Reader) (int64, error)
	Delete(name string) error
	Exists(name string) bool
	Dir() string
}
