package inkwell

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
)

// imagesIntegration post-processes raster images that were copied into the
// output directory: anything wider than maxImageWidth is scaled down and
// re-encoded as JPEG so the published site never ships oversized originals.
type imagesIntegration struct {
	resized int
}

func newImagesIntegration() *imagesIntegration { return &imagesIntegration{} }

func (im *imagesIntegration) Name() string { return "images" }

func (im *imagesIntegration) Transform(page *Page) error { return nil }

func (im *imagesIntegration) Finalize(outDir string) error {
	return filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png":
		default:
			return nil
		}
		changed, data, err := shrinkImage(path, ext)
		if err != nil {
			return fmt.Errorf("images: %s: %w", path, err)
		}
		if !changed {
			return nil
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		im.resized++
		return nil
	})
}

// shrinkImage decodes the image at path and, if it is wider than
// maxImageWidth, scales it down preserving aspect ratio and re-encodes it
// in its original format. Returns false when the file is already small enough.
func shrinkImage(path, ext string) (bool, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return false, nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return false, nil, nil
	}

	newH := h * maxImageWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if ext == ".png" {
		if err := png.Encode(&buf, dst); err != nil {
			return false, nil, fmt.Errorf("encode png: %w", err)
		}
	} else {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return false, nil, fmt.Errorf("encode jpeg: %w", err)
		}
	}
	return true, buf.Bytes(), nil
}
