package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmorgan81/promptshot/internal/store"
)

type fakeLister struct {
	objs []store.Object
	err  error
}

func (l fakeLister) List(context.Context) ([]store.Object, error) { return l.objs, l.err }

func TestGenerate(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lister := fakeLister{objs: []store.Object{
		{Name: "old.png", ContentType: "image/png", Size: 10, Updated: day, Metadata: map[string]string{"prompt": "an old cat"}},
		{Name: "new.png", ContentType: "image/png", Size: 20, Updated: day.AddDate(0, 0, 2), Metadata: map[string]string{"prompt": "a new dog"}},
		{Name: "bare.jpg", ContentType: "image/jpeg", Size: 30, Updated: day.AddDate(0, 0, 1)},
	}}
	g := New(lister, "https://example.com", "https://cdn.example.com/")

	rss, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out := string(rss)

	for _, want := range []string{
		"<title>promptshot</title>",
		"<link>https://cdn.example.com/new.png</link>",
		`<enclosure url="https://cdn.example.com/bare.jpg" length="30" type="image/jpeg">`,
		"<title>bare.jpg</title>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q:\n%s", want, out)
		}
	}

	iNew, iBare, iOld := strings.Index(out, "a new dog"), strings.Index(out, "bare.jpg"), strings.Index(out, "an old cat")
	if !(iNew < iBare && iBare < iOld) {
		t.Errorf("items not newest first: new=%d bare=%d old=%d", iNew, iBare, iOld)
	}
}

func TestGenerateListError(t *testing.T) {
	g := New(fakeLister{err: errors.New("access denied")}, "https://example.com", "https://example.com")
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("expected error")
	}
}
