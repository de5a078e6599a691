package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmorgan81/promptshot/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader writes images into Dir, each with a <name>.json file holding its metadata.
type FileUploader struct {
	Dir string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	path := filepath.Join(u.Dir, params.Name)
	log.Info("writing", "file", path)

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", u.Dir, err)
	}
	if err := os.WriteFile(path, params.Data, 0o644); err != nil {
		return err
	}

	meta, err := json.Marshal(sidecar{ContentType: params.ContentType, Metadata: params.Metadata})
	if err != nil {
		return err
	}
	return os.WriteFile(path+sidecarExt, meta, 0o644)
}

const sidecarExt = ".json"

type sidecar struct {
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}
