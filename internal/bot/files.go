package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dispatchbot/internal/conversation"
	kit "dispatchbot/internal/transport"
)

// DefaultMaxFileSize is the Bot API download limit.
const DefaultMaxFileSize = 20 << 20

// Files downloads attachments for the conversation machine. Documents land in
// DownloadDir and are removed by the caller after parsing; photos land in
// MediaDir and are referenced by templates.
type Files struct {
	ad          kit.Adapter
	downloadDir string
	mediaDir    string
	maxSize     int64
}

var _ conversation.FileFetcher = (*Files)(nil)

func NewFiles(ad kit.Adapter, downloadDir, mediaDir string, maxSize int64) *Files {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Files{ad: ad, downloadDir: downloadDir, mediaDir: mediaDir, maxSize: maxSize}
}

func (f *Files) FetchDocument(ctx context.Context, file conversation.File) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))
	return f.fetch(ctx, file, f.downloadDir, ext)
}

func (f *Files) FetchPhoto(ctx context.Context, file conversation.File) (string, error) {
	return f.fetch(ctx, file, f.mediaDir, ".jpg")
}

func (f *Files) fetch(ctx context.Context, file conversation.File, dir, ext string) (string, error) {
	if file.ID == "" {
		return "", fmt.Errorf("empty file id")
	}
	if file.Size > f.maxSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", file.Size, f.maxSize)
	}
	dst := filepath.Join(dir, uuid.NewString()+ext)
	if err := f.ad.Download(ctx, file.ID, dst); err != nil {
		return "", fmt.Errorf("download %s: %w", file.ID, err)
	}
	return dst, nil
}
