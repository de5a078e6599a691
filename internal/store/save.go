package store

import (
	"context"
	"time"

	"github.com/dmorgan81/promptshot/internal/display"
)

// Save uploads the image behind h and returns the name it was stored under.
func Save(ctx context.Context, u Uploader, h display.Handle, prompt string, now time.Time) (string, error) {
	now = now.UTC()
	id := h.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := now.Format("20060102-150405") + "-" + id + h.Ext()

	err := u.Upload(ctx, UploadParams{
		Name:        name,
		Data:        h.Data,
		ContentType: h.ContentType,
		Metadata: map[string]string{
			"date":   now.Format("20060102"),
			"prompt": prompt,
			"id":     h.ID,
		},
	})
	if err != nil {
		return "", err
	}
	return name, nil
}
