package handler

import (
	"context"
	"time"

	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/prompt"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Input struct {
	Date   string `json:"date,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

func (i Input) toMetadata(id string) map[string]string {
	return map[string]string{
		"date":   i.Date,
		"prompt": i.Prompt,
		"id":     id,
	}
}

type Output struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
	Key    string `json:"key"`
}

type Handler struct {
	randomizer  *prompt.Randomizer
	controller  *controller.Controller
	uploader    store.Uploader
	invalidator store.Invalidator
	now         func() time.Time
}

func New(r *prompt.Randomizer, c *controller.Controller, u store.Uploader, inv store.Invalidator) *Handler {
	return &Handler{
		randomizer:  r,
		controller:  c,
		uploader:    u,
		invalidator: inv,
		now:         time.Now,
	}
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(
		do.MustInvoke[*prompt.Randomizer](i),
		do.MustInvoke[*controller.Controller](i),
		do.MustInvoke[store.Uploader](i),
		do.MustInvoke[store.Invalidator](i),
	), nil
}

// Handle runs one cycle and publishes the image as <date>.<ext>, and also as
// latest.<ext> when the input carries no date.
func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("input", input)
	log.Info("handling lambda invocation")

	if input.Prompt == "" {
		p, err := h.randomizer.Randomize(ctx)
		if err != nil {
			return Output{}, err
		}
		input.Prompt = p
	}

	latest := false
	if input.Date == "" {
		input.Date = h.now().UTC().Format("20060102")
		latest = true
	}

	img, err := h.controller.Generate(ctx, input.Prompt)
	if err != nil {
		return Output{}, err
	}

	ext := img.Ext()
	metadata := input.toMetadata(img.ID)
	names := []string{input.Date + ext}
	if latest {
		names = append(names, "latest"+ext)
	}
	for _, name := range names {
		err := h.uploader.Upload(ctx, store.UploadParams{
			Name:        name,
			Data:        img.Data,
			ContentType: img.ContentType,
			Metadata:    metadata,
		})
		if err != nil {
			return Output{}, err
		}
	}

	paths := lo.Map(names, func(name string, _ int) string { return "/" + name })
	if err := h.invalidator.Invalidate(ctx, paths); err != nil {
		return Output{}, err
	}

	return Output{Date: input.Date, Prompt: input.Prompt, Key: names[0]}, nil
}
