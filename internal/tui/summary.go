package tui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/blacktop/go-termimg"
	"github.com/dmorgan81/promptshot/internal/display"
	"github.com/dustin/go-humanize"
)

// Summary describes an image in one line: format, dimensions and size.
func Summary(h display.Handle) string {
	size := humanize.IBytes(uint64(h.Size))
	cfg, format, err := image.DecodeConfig(bytes.NewReader(h.Data))
	if err != nil {
		return fmt.Sprintf("%s, %s", h.ContentType, size)
	}
	return fmt.Sprintf("%s %d×%d, %s", format, cfg.Width, cfg.Height, size)
}

// Render draws an image with half blocks into a box of width columns and
// height rows. Half blocks need no terminal capability queries.
func Render(data []byte, width, height int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	return termimg.New(img).
		Protocol(termimg.Halfblocks).
		Width(width).
		Height(height).
		Render()
}
