// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Register decoders for the cover formats we accept.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/taibuivan/tomeswap/internal/platform/apperr"
)

// Limits for cover downloads.
const (
	// DefaultThumbnailWidth is the target width in pixels; height follows the
	// source aspect ratio.
	DefaultThumbnailWidth = 320

	// maxCoverBytes caps how much of a remote cover we are willing to read.
	maxCoverBytes = 10 << 20

	// downloadTimeout bounds a single cover fetch end to end.
	downloadTimeout = 30 * time.Second
)

// ImageProcessor implements [Processor] by fetching the source cover over
// HTTP, scaling it down, and writing a JPEG into a local media directory.
//
// Output keys are derived from the book ID, so reprocessing the same job
// overwrites the previous file rather than accumulating copies.
type ImageProcessor struct {
	client    *http.Client
	outputDir string
	publicURL string

	// Width is the target thumbnail width; defaults to [DefaultThumbnailWidth].
	Width int
}

// NewImageProcessor creates a processor writing into outputDir.
//
// Parameters:
//   - outputDir: Filesystem directory for generated thumbnails (created if absent).
//   - publicURL: URL prefix under which outputDir is served, without trailing slash.
func NewImageProcessor(outputDir, publicURL string) (*ImageProcessor, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("thumbnail: create media dir: %w", err)
	}

	return &ImageProcessor{
		client:    &http.Client{Timeout: downloadTimeout},
		outputDir: outputDir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		Width:     DefaultThumbnailWidth,
	}, nil
}

/*
Process downloads the job's source cover, scales it to the configured width,
and stores the result as <outputDir>/<bookID>.jpg.

Parameters:
  - ctx: context.Context for cancellation.
  - job: The queued thumbnail job.

Returns:
  - string: Public URL of the stored thumbnail.
  - error: Fetch, decode, or write failure.
*/
func (processor *ImageProcessor) Process(ctx context.Context, job Job) (string, error) {
	source, err := processor.fetch(ctx, job.SourceURL)
	if err != nil {
		return "", err
	}

	thumbnail := processor.scale(source)

	fileName := job.BookID + ".jpg"
	outputPath := filepath.Join(processor.outputDir, fileName)

	// Write to a temp file first so a crash mid-write never leaves a
	// truncated thumbnail behind the public URL.
	temp, err := os.CreateTemp(processor.outputDir, fileName+".*")
	if err != nil {
		return "", fmt.Errorf("thumbnail: create temp file: %w", err)
	}

	if err := jpeg.Encode(temp, thumbnail, &jpeg.Options{Quality: 85}); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", fmt.Errorf("thumbnail: encode: %w", err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return "", fmt.Errorf("thumbnail: close temp file: %w", err)
	}

	if err := os.Rename(temp.Name(), outputPath); err != nil {
		os.Remove(temp.Name())
		return "", fmt.Errorf("thumbnail: publish: %w", err)
	}

	return processor.publicURL + "/" + fileName, nil
}

// fetch downloads and decodes the source cover image.
func (processor *ImageProcessor) fetch(ctx context.Context, sourceURL string) (image.Image, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, apperr.ValidationError("Cover URL is not fetchable")
	}

	response, err := processor.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: fetch cover: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail: fetch cover: unexpected status %d", response.StatusCode)
	}

	limited := http.MaxBytesReader(nil, response.Body, maxCoverBytes)

	source, _, err := image.Decode(limited)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: decode cover: %w", err)
	}

	return source, nil
}

// scale resizes the source to the configured width, preserving aspect ratio.
func (processor *ImageProcessor) scale(source image.Image) image.Image {
	width := processor.Width
	if width < 1 {
		width = DefaultThumbnailWidth
	}

	bounds := source.Bounds()
	if bounds.Dx() <= width {
		return source
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	target := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(target, target.Bounds(), source, bounds, draw.Over, nil)
	return target
}
