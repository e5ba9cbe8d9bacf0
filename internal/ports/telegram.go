package ports

import "context"

// FileResolver turns a Telegram file_id into a direct download URL.
type FileResolver interface {
	ResolveFileURL(ctx context.Context, fileID string) (string, error)
}
