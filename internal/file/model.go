package file

import (
	"net/http"
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "file not found")
	ErrTypeNotAllowed = apperror.New(http.StatusBadRequest, "file type not allowed")
	ErrNoThumbnail    = apperror.New(http.StatusNotFound, "thumbnail not available")
)

// File is an uploaded object (typically a resource photo or user avatar).
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string // internal, never exposed
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public download path for a file id.
func URL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public thumbnail path for a file id.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
