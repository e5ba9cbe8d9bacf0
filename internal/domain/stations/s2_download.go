package stations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/models"
)

type S2Download struct {
	client   *http.Client
	maxBytes int64
	log      *logger.ZapLogger
}

func NewS2Download(timeout time.Duration, maxBytes int64, log *logger.ZapLogger) *S2Download {
	return &S2Download{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		log:      log,
	}
}

func (s *S2Download) Run(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", models.ErrUpstreamFetch, resp.StatusCode)
	}
	if resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: file too large (%d bytes)", models.ErrUpstreamFetch, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", models.ErrUpstreamFetch, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file too large", models.ErrUpstreamFetch)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", models.ErrUpstreamFetch)
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[S2] downloaded",
		Fields: map[string]any{
			"bytes": len(body),
			"dur":   time.Since(start).String(),
		},
	})
	return body, nil
}
