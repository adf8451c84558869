package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/joshua-takyi/workwave/internal/helpers"
)

// UploadedPhoto is the result of pushing a photo to the upload sink. PublicID
// is kept so a failed registration can remove the orphaned asset again.
type UploadedPhoto struct {
	URL      string
	PublicID string
}

// PhotoSink is the external object-storage collaborator that hosts worker
// photos and hands back a publicly-resolvable URL.
type PhotoSink interface {
	Upload(ctx context.Context, r io.Reader, filename string) (*UploadedPhoto, error)
	Remove(ctx context.Context, publicID string) error
}

const workerPhotoFolder = "worker_photos"

type CloudinarySink struct {
	cld *cloudinary.Cloudinary
}

var _ PhotoSink = (*CloudinarySink)(nil)

func NewCloudinarySink(cld *cloudinary.Cloudinary) *CloudinarySink {
	return &CloudinarySink{cld: cld}
}

func (s *CloudinarySink) Upload(ctx context.Context, r io.Reader, filename string) (*UploadedPhoto, error) {
	name := helpers.UniquePhotoName(filename)
	publicID := strings.TrimSuffix(name, filepath.Ext(name))

	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: publicID,
		Folder:   workerPhotoFolder,
		Tags:     []string{"workwave"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo %s: %v", filename, err)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("upload of %s returned no URL", filename)
	}

	return &UploadedPhoto{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
	}, nil
}

func (s *CloudinarySink) Remove(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to remove photo %s: %v", publicID, err)
	}
	return nil
}
