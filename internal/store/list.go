package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/lo"
)

// Object is a stored image.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Updated     time.Time
	Metadata    map[string]string
}

type Lister interface {
	List(context.Context) ([]Object, error)
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

// IsImageFile reports whether name carries an image extension.
func IsImageFile(name string) bool {
	lower := strings.ToLower(name)
	return slices.ContainsFunc(imageExts, func(ext string) bool { return strings.HasSuffix(lower, ext) })
}

// isImage skips the latest.* aliases so every image is listed once.
func isImage(name string) bool {
	return !strings.HasPrefix(strings.ToLower(name), "latest") && IsImageFile(name)
}

type FileLister struct {
	Dir string
}

func (l *FileLister) List(ctx context.Context) ([]Object, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file").With("dir", l.Dir)
	log.Info("listing images")

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	entries = lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && isImage(e.Name())
	})

	objs := make([]Object, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			log.Warn("skipping unreadable file", "name", e.Name(), "error", err)
			continue
		}
		obj := Object{Name: e.Name(), Size: info.Size(), Updated: info.ModTime().UTC()}

		if raw, err := os.ReadFile(filepath.Join(l.Dir, e.Name()+sidecarExt)); err == nil {
			var sc sidecar
			if err := json.Unmarshal(raw, &sc); err == nil {
				obj.ContentType = sc.ContentType
				obj.Metadata = sc.Metadata
			}
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
