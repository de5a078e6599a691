package feed

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	Title       = "promptshot"
	Description = "AI generated images"
)

type Generator struct {
	lister    store.Lister
	link      string
	imageBase string
	now       func() time.Time
}

// New builds a feed generator. Item links are imageBase joined with the stored object name.
func New(lister store.Lister, link, imageBase string) *Generator {
	return &Generator{
		lister:    lister,
		link:      link,
		imageBase: strings.TrimSuffix(imageBase, "/"),
		now:       time.Now,
	}
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return New(
		do.MustInvoke[store.Lister](i),
		do.MustInvokeNamed[string](i, "base_url"),
		do.MustInvokeNamed[string](i, "image_base_url"),
	), nil
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed")

	objs, err := g.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	feed := feeds.Feed{
		Title:       Title,
		Description: Description,
		Link:        &feeds.Link{Href: g.link},
		Updated:     g.now().UTC(),
	}
	feed.Items = lo.Map(objs, func(o store.Object, _ int) *feeds.Item {
		href := g.imageBase + "/" + o.Name
		prompt := o.Metadata["prompt"]
		return &feeds.Item{
			Title:       lo.CoalesceOrEmpty(prompt, o.Name),
			Link:        &feeds.Link{Href: href},
			Description: prompt,
			Id:          href,
			Created:     o.Updated,
			Updated:     o.Updated,
			Enclosure: &feeds.Enclosure{
				Url:    href,
				Length: strconv.FormatInt(o.Size, 10),
				Type:   o.ContentType,
			},
		}
	})

	// newest first
	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.After(b.Updated)
	})
	log.Debug("feed items", "count", len(feed.Items))

	rss, err := feed.ToRss()
	return []byte(rss), err
}
