package utils

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ImageIngestor validates uploads and encodes them for the completion API.
// It does not decode the bytes as an image and never touches the filesystem.
type ImageIngestor struct {
	maxSize int64
	log     *zap.Logger
}

func NewImageIngestor(maxSize int64, log *zap.Logger) *ImageIngestor {
	return &ImageIngestor{maxSize: maxSize, log: log}
}

// Ingest checks the extension and size of an upload and returns it base64
// encoded. The content type is derived from the extension alone.
func (p *ImageIngestor) Ingest(fileBytes []byte, filename string) (domain.UploadedImage, error) {
	contentType, err := ContentTypeFor(filename)
	if err != nil {
		return domain.UploadedImage{}, err
	}

	if p.maxSize > 0 && int64(len(fileBytes)) > p.maxSize {
		return domain.UploadedImage{}, fmt.Errorf("%w: %d bytes (limit %d)",
			domain.ErrImageTooLarge, len(fileBytes), p.maxSize)
	}

	img := domain.UploadedImage{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(fileBytes)),
		Base64:      base64.StdEncoding.EncodeToString(fileBytes),
	}

	p.log.Info("Image ingested",
		zap.String("filename", img.Filename),
		zap.String("content_type", img.ContentType),
		zap.Int64("size", img.Size))

	return img, nil
}

// ContentTypeFor maps an accepted filename extension to its MIME type.
// Extensions outside {png, jpg, jpeg} fail with domain.ErrUnsupportedFormat.
func ContentTypeFor(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return contentType, nil
}
