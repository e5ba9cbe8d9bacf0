package models

import "errors"

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUpstreamFetch      = errors.New("upstream fetch failed")
	ErrEncoding           = errors.New("qr encoding failed")
	ErrUnknownField       = errors.New("unknown page field")
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidMediaName   = errors.New("invalid media name")
)
