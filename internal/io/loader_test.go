package io

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	stdio "io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader() *ImageLoader {
	logger := logrus.New()
	logger.SetOutput(stdio.Discard)
	return NewImageLoader(logger)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	il := newLoader()

	ext, err := il.Sniff(pngBytes(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = il.Sniff([]byte("%PDF-1.7 definitely not a picture"))
	assert.True(t, errors.Is(err, ErrNotImage))

	_, err = il.Sniff(nil)
	assert.True(t, errors.Is(err, ErrNotImage))
}

func TestDecode(t *testing.T) {
	il := newLoader()

	img, err := il.Decode(context.Background(), pngBytes(t, 6, 3))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 3), img.Bounds().Size())

	_, err = il.Decode(context.Background(), []byte{0x89, 'P', 'N', 'G', 0, 0})
	assert.Error(t, err)
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader().Decode(ctx, pngBytes(t, 2, 2))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestThumbnailPreservesAspect(t *testing.T) {
	il := newLoader()
	img, err := il.Decode(context.Background(), pngBytes(t, 400, 200))
	require.NoError(t, err)

	thumb := il.Thumbnail(img, 100, 100)
	assert.Equal(t, image.Pt(100, 50), thumb.Bounds().Size())

	small := il.PreviewTexture(img, 1000)
	assert.Equal(t, image.Pt(400, 200), small.Bounds().Size())
}

func TestFileExtensions(t *testing.T) {
	exts := newLoader().FileExtensions()
	assert.Contains(t, exts, ".png")
	assert.Contains(t, exts, ".jpeg")
	for _, ext := range exts {
		assert.Equal(t, byte('.'), ext[0])
	}
}

// pngHeader is a bare PNG signature plus IHDR chunk declaring w x h RGBA
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	il := newLoader()

	w, h, err := il.Dimensions(pngHeader(40000, 40000))
	require.NoError(t, err)
	assert.Equal(t, 40000, w)
	assert.Equal(t, 40000, h)

	// no pixel data follows the header: only the size check can reject it
	_, err = il.Decode(context.Background(), pngHeader(40000, 40000))
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = il.Decode(context.Background(), pngHeader(20, 20))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTooLarge))
}

func TestDimensions(t *testing.T) {
	w, h, err := newLoader().Dimensions(pngBytes(t, 7, 3))
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 3, h)

	_, _, err = newLoader().Dimensions([]byte("plain text"))
	assert.Error(t, err)
}
