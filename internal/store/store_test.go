package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmorgan81/promptshot/internal/display"
)

type recordingUploader struct {
	uploads []UploadParams
}

func (u *recordingUploader) Upload(_ context.Context, params UploadParams) error {
	u.uploads = append(u.uploads, params)
	return nil
}

func TestIsImage(t *testing.T) {
	tests := map[string]bool{
		"20240101.png":           true,
		"20240101-120000-ab.JPG": true,
		"x.jpeg":                 true,
		"x.webp":                 true,
		"latest.png":             false,
		"20240101.png.json":      false,
		"20240101.html":          false,
		"notes.txt":              false,
	}
	for name, want := range tests {
		if got := isImage(name); got != want {
			t.Errorf("isImage(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"latest.png":        true,
		"20240101.WEBP":     true,
		"20240101.png.json": false,
		"20240101":          false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSave(t *testing.T) {
	u := &recordingUploader{}
	h := display.Handle{ID: "0123456789abcdef", ContentType: "image/png", Data: []byte("png")}
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	name, err := Save(context.Background(), u, h, "a red fox", now)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if name != "20240309-140506-01234567.png" {
		t.Errorf("name = %q", name)
	}
	if len(u.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(u.uploads))
	}
	got := u.uploads[0]
	if got.Name != name || got.ContentType != "image/png" || string(got.Data) != "png" {
		t.Errorf("upload = %+v", got)
	}
	if got.Metadata["prompt"] != "a red fox" || got.Metadata["date"] != "20240309" || got.Metadata["id"] != h.ID {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	ctx := context.Background()
	u := &FileUploader{Dir: dir}

	uploads := []UploadParams{
		{Name: "20240101.png", Data: []byte("one"), ContentType: "image/png", Metadata: map[string]string{"prompt": "cat"}},
		{Name: "latest.png", Data: []byte("one"), ContentType: "image/png"},
		{Name: "20240102.jpg", Data: []byte("two!"), ContentType: "image/jpeg", Metadata: map[string]string{"prompt": "dog"}},
	}
	for _, p := range uploads {
		if err := u.Upload(ctx, p); err != nil {
			t.Fatalf("Upload(%s) failed: %v", p.Name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "20240101.png.json")); err != nil {
		t.Errorf("metadata file missing: %v", err)
	}

	objs, err := (&FileLister{Dir: dir}).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("listed %d objects, want 2: %+v", len(objs), objs)
	}
	byName := map[string]Object{}
	for _, o := range objs {
		byName[o.Name] = o
	}
	if o := byName["20240102.jpg"]; o.ContentType != "image/jpeg" || o.Size != 4 || o.Metadata["prompt"] != "dog" {
		t.Errorf("jpg object = %+v", o)
	}
	if o := byName["20240101.png"]; o.Metadata["prompt"] != "cat" {
		t.Errorf("png object = %+v", o)
	}
}

func TestFileListerMissingDir(t *testing.T) {
	objs, err := (&FileLister{Dir: filepath.Join(t.TempDir(), "nope")}).List(context.Background())
	if err != nil || len(objs) != 0 {
		t.Errorf("List = %v, %v", objs, err)
	}
}

func TestNoopInvalidator(t *testing.T) {
	if err := (NoopInvalidator{}).Invalidate(context.Background(), []string{"/latest.png"}); err != nil {
		t.Errorf("Invalidate failed: %v", err)
	}
}
