package domain

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxLogoSize is the largest accepted logo upload in bytes
const MaxLogoSize = 1_000_000

// logoTypes are the image formats the PDF renderer can embed or decode
var logoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// NewLogo checks that data is a supported image of at most MaxLogoSize
// bytes. The type is sniffed from the content rather than trusted from a
// file name.
func NewLogo(data []byte) (*Logo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: logo is empty", ErrUnsupportedAsset)
	}
	if len(data) > MaxLogoSize {
		return nil, fmt.Errorf("%w: image must be under 1MB, got %d bytes", ErrUnsupportedAsset, len(data))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: only image files allowed, got %s", ErrUnsupportedAsset, mt.String())
	}
	if !logoTypes[mt.String()] {
		return nil, fmt.Errorf("%w: %s logos are not supported, use PNG, JPEG, GIF, WebP, BMP or TIFF", ErrUnsupportedAsset, mt.String())
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return &Logo{Data: buf, MIMEType: mt.String()}, nil
}
