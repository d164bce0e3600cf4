package biometric

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned for payloads that are not a JPEG, PNG, GIF or WebP image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// jpegQuality keeps re-encoding loss well below what affects face descriptors.
const jpegQuality = 95

// NormalizeJPEG decodes an image of any supported format, applies its EXIF
// orientation and re-encodes it as JPEG.
func NormalizeJPEG(raw []byte) ([]byte, error) {
	img, err := decodeImage(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImage(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, ErrUnsupportedImage
	}

	mime := mimetype.Detect(raw)
	switch {
	case mime.Is("image/webp"):
		img, err := webp.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode webp: %w", err)
		}
		return img, nil
	case mime.Is("image/jpeg"), mime.Is("image/png"), mime.Is("image/gif"):
		img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", mime.Extension(), err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime.String())
	}
}
