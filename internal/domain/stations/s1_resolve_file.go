package stations

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
)

type S1ResolveFile struct {
	resolver ports.FileResolver
	log      *logger.ZapLogger
}

func NewS1ResolveFile(resolver ports.FileResolver, log *logger.ZapLogger) *S1ResolveFile {
	return &S1ResolveFile{resolver: resolver, log: log}
}

func (s *S1ResolveFile) Run(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("%w: empty file id", models.ErrUpstreamFetch)
	}

	url, err := s.resolver.ResolveFileURL(ctx, fileID)
	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "[S1] resolve file failed",
			Fields:  map[string]any{"fileID": fileID},
			Error:   err,
		})
		return "", fmt.Errorf("%w: %w", models.ErrUpstreamFetch, err)
	}
	if url == "" {
		return "", fmt.Errorf("%w: empty file url", models.ErrUpstreamFetch)
	}
	return url, nil
}
