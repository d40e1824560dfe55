package media

import (
	"context"
	"errors"
	"strings"
)

// Kind distinguishes image from video assets at the remote store.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset describes a successfully stored binary asset.
type Asset struct {
	URL      string
	Duration float64
}

// ErrProviderUnavailable indicates the media provider is not configured.
var ErrProviderUnavailable = errors.New("media provider unavailable")

// Uploader transmits a local file to the remote media store. Implementations
// remove the local file when the upload fails; callers remain responsible for
// cleanup after a successful upload.
type Uploader interface {
	Upload(ctx context.Context, localPath string, kind Kind) (Asset, error)
}

// Remover deletes a previously uploaded asset by its provider id. Failures
// are non-fatal to callers: the database row is the source of truth for what
// the user intended to remove.
type Remover interface {
	Remove(ctx context.Context, publicID string, kind Kind) error
}

// Provider combines upload and removal against a single remote store.
type Provider interface {
	Uploader
	Remover
}

// PublicID derives the provider-addressable id from a stored asset URL by
// taking the last two path segments and stripping any file extension. The
// transform does not validate URL shape; malformed or foreign URLs produce an
// id the remote delete call will simply reject.
func PublicID(url string) string {
	if url == "" {
		return ""
	}

	parts := strings.Split(url, "/")
	file := parts[len(parts)-1]
	folder := ""
	if len(parts) > 1 {
		folder = parts[len(parts)-2]
	}

	if dot := strings.Index(file, "."); dot >= 0 {
		file = file[:dot]
	}

	if folder == "" {
		return file
	}
	return folder + "/" + file
}
