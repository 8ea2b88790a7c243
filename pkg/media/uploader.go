package media

import (
	"context"
	"io"
)

// UploadResult is the media host's description of a stored asset.
type UploadResult struct {
	PublicID  string  `json:"public_id"`
	URL       string  `json:"secure_url"`
	Format    string  `json:"format"`
	Bytes     int64   `json:"bytes"`
	Duration  float64 `json:"duration,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Uploader stores a file on the external media host and returns its public
// URL. Implementations must be safe for concurrent use.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error)
}
