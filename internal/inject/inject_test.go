package inject

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/feed"
	"github.com/dmorgan81/promptshot/internal/handler"
	"github.com/dmorgan81/promptshot/internal/image"
	"github.com/dmorgan81/promptshot/internal/server"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/samber/do"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Generator:  "stub",
		StubWarmup: 1,
		Attempts:   5,
		ListenAddr: ":0",
		BaseURL:    "http://localhost:8080/",
		OutputDir:  t.TempDir(),
		Prompts:    []string{"a lighthouse at dusk"},
	}
}

func TestSetupLocal(t *testing.T) {
	cfg := testConfig(t)
	injector := Setup(context.Background(), cfg)
	defer func() { _ = injector.Shutdown() }()

	if _, ok := do.MustInvoke[store.Uploader](injector).(*store.FileUploader); !ok {
		t.Error("expected the file uploader without a bucket")
	}
	if _, ok := do.MustInvoke[store.Invalidator](injector).(store.NoopInvalidator); !ok {
		t.Error("expected the no-op invalidator without a distribution")
	}
	if got := do.MustInvokeNamed[string](injector, "image_base_url"); got != "http://localhost:8080/saved" {
		t.Errorf("image_base_url = %q", got)
	}
	_ = do.MustInvoke[*server.Server](injector)

	h := do.MustInvoke[*handler.Handler](injector)
	out, err := h.Handle(context.Background(), handler.Input{Date: "20240101"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if out.Prompt != "a lighthouse at dusk" {
		t.Errorf("prompt = %q", out.Prompt)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, out.Key)); err != nil {
		t.Errorf("image not written: %v", err)
	}

	rss, err := do.MustInvoke[*feed.Generator](injector).Generate(context.Background())
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if !strings.Contains(string(rss), "http://localhost:8080/saved/20240101.png") {
		t.Errorf("feed does not link the image:\n%s", rss)
	}

	c := do.MustInvoke[*controller.Controller](injector)
	if c.Displays().Len() != 1 {
		t.Errorf("displays = %d, want 1", c.Displays().Len())
	}
	if err := injector.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if c.Displays().Len() != 0 {
		t.Error("shutdown should release every display handle")
	}
}

func TestSetupMissingKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generator = "huggingface"
	injector := Setup(context.Background(), cfg)

	if _, err := do.Invoke[image.Generator](injector); err == nil {
		t.Error("expected the missing key to fail the generator")
	}
}
