// Package artwork prepares cover images: download, square crop, and a small
// dominant-colour palette for title styling.
package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"lyricsync/internal/services"
)

// DefaultSize is the edge length of the square cover.
const DefaultSize = 700

const maxImageBytes = 20 << 20

// Download fetches source (an http(s) URL or a local path), crops it to a
// size×size square, and writes it to dest as PNG.
func Download(ctx context.Context, client *http.Client, source, dest string, size int) (image.Image, error) {
	data, err := fetch(ctx, client, source)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cover_art", "decode image", source, err)
	}
	cover := CoverCrop(img, size)
	if err := SavePNG(dest, cover); err != nil {
		return nil, services.Wrap(services.ErrTransient, "cover_art", "save png", dest, err)
	}
	return cover, nil
}

func fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, services.Wrap(services.ErrValidation, "cover_art", "resolve source", "cover source required", nil)
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cover_art", "read image", source, err)
		}
		return data, nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cover_art", "build request", source, err)
	}
	req.Header.Set("Accept", "image/*")
	resp, err := client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "cover_art", "download", source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, services.Wrap(services.ErrExternalTool, "cover_art", "download", fmt.Sprintf("%s returned %s", source, resp.Status), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "cover_art", "read body", source, err)
	}
	return data, nil
}

// CoverCrop takes the centred square of img and scales it to size×size with
// Catmull-Rom resampling. size <= 0 uses DefaultSize.
func CoverCrop(img image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultSize
	}
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	square := image.Rect(x0, y0, x0+side, y0+side)

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(out, out.Bounds(), img, square, draw.Src, nil)
	return out
}

// SavePNG writes img to path atomically.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadPNG reads a PNG written by SavePNG.
func LoadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return png.Decode(file)
}
