package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/session"
	"github.com/samber/do"
)

//go:embed assets/index.html
var indexTmpl string

const Placeholder = "Generated image will appear here"

type Params struct {
	Title       string
	Placeholder string
	Snapshot    session.Snapshot
}

type Templator struct {
	title string

	tmpl *template.Template
	once sync.Once
}

func New(title string) *Templator {
	return &Templator{title: title}
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return New("promptshot"), nil
}

func (g *Templator) Template(ctx context.Context, snap session.Snapshot) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("generating page", "status", snap.Status)

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, Params{Title: g.title, Placeholder: Placeholder, Snapshot: snap}); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
