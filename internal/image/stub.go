package image

import (
	"bytes"
	"context"
	"hash/fnv"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"sync"

	"github.com/dmorgan81/promptshot/internal/log"
)

// StubGenerator draws a flat PNG whose colour depends on the prompt. It makes no network calls.
// The first LoadingFailures calls answer with the model-loading error.
type StubGenerator struct {
	LoadingFailures int

	mu    sync.Mutex
	calls int
}

func (g *StubGenerator) Generate(ctx context.Context, params Params) (Image, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("stub")

	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	if call <= g.LoadingFailures {
		log.Info("simulating model warmup", "call", call)
		return Image{}, &APIError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Model stabilityai/stable-diffusion-xl-base-1.0 is currently loading",
		}
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(params.Inputs))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	w, ht := params.Parameters.Width/16, params.Parameters.Height/16
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, max(w, 1), max(ht, 1)))
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, err
	}
	log.Info("drew stub image", "bytes", buf.Len())
	return Image{Data: buf.Bytes(), ContentType: "image/png"}, nil
}

// Calls returns how many times Generate has been called.
func (g *StubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
