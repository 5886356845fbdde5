// Image sniffing, decoding and downscaling for uploaded buffers
package io

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for buffers whose content is not an image
var ErrNotImage = errors.New("not an image")

// ImageLoader handles image buffer operations
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// Sniff detects the image format of data from its content, returning the
// canonical extension (e.g. "png")
func (il *ImageLoader) Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty buffer: %w", ErrNotImage)
	}
	if !filetype.IsImage(data) {
		return "", ErrNotImage
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	if !il.isSupportedImageFormat(kind.Extension) {
		return "", fmt.Errorf("unsupported image format %q: %w", kind.MIME.Value, ErrNotImage)
	}
	return kind.Extension, nil
}

// Dimensions reads the pixel size from the image header without decoding
// the pixels
func (il *ImageLoader) Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode turns an uploaded buffer into a drawable image. The header is
// checked against the size limit before any pixels are allocated.
func (il *ImageLoader) Decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h, err := il.Dimensions(data)
	if err != nil {
		return nil, err
	}
	if err := validateDimensions(w, h); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := ValidateImage(img); err != nil {
		return nil, err
	}

	il.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Image decoded")

	return img, ctx.Err()
}

// Thumbnail downscales img to fit within maxWidth x maxHeight, preserving
// the aspect ratio. Images that already fit are returned unchanged.
func (il *ImageLoader) Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	if img == nil || maxWidth <= 0 || maxHeight <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)
}

// PreviewTexture bounds the texture used by the live preview
func (il *ImageLoader) PreviewTexture(img image.Image, maxDimension int) image.Image {
	if img == nil || maxDimension <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Bilinear)
}

func (il *ImageLoader) isSupportedImageFormat(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

var supportedFormats = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp", "tif", "tiff"}

// FileExtensions lists the dotted extensions for file pickers
func (il *ImageLoader) FileExtensions() []string {
	exts := make([]string, 0, len(supportedFormats))
	for _, format := range supportedFormats {
		exts = append(exts, "."+format)
	}
	return exts
}

// GetSupportedFormats lists the format names shown to users
func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "GIF", "WebP", "BMP", "TIFF"}
}

// MaxDimension is the largest accepted width or height
const MaxDimension = 16384

// ErrTooLarge is returned for images beyond MaxDimension
var ErrTooLarge = errors.New("image too large")

// ValidateImage validates decoded dimensions
func ValidateImage(img image.Image) error {
	b := img.Bounds()
	return validateDimensions(b.Dx(), b.Dy())
}

func validateDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", w, h)
	}
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d (max: %d)", ErrTooLarge, w, h, MaxDimension)
	}
	return nil
}
