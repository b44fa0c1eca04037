package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

const DefaultMaxDimension = 3840

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Validator checks uploaded images before they reach object storage: the
// content type must be an allowed image format and both dimensions must
// stay within maxDimension.
type Validator struct {
	maxDimension int
}

func NewValidator(maxDimension int) *Validator {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Validator{maxDimension: maxDimension}
}

// Validate decodes the image header from r and returns the normalized
// content type. It reads only as much of r as DecodeConfig needs, so the
// caller must rewind before uploading.
func (v *Validator) Validate(r io.Reader, fileName, contentType string) (string, error) {
	normalized := NormalizeContentType(contentType, fileName)
	if _, ok := allowedContentTypes[normalized]; !ok {
		return "", fmt.Errorf("media: unsupported content type %q", normalized)
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return "", fmt.Errorf("media: decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("media: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width > v.maxDimension || cfg.Height > v.maxDimension {
		return "", fmt.Errorf("media: image %dx%d exceeds max dimension %d", cfg.Width, cfg.Height, v.maxDimension)
	}
	return normalized, nil
}

func NormalizeContentType(contentType, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mediaType
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return "application/octet-stream"
}
