package prompt

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var ErrNoPrompts = errors.New("no prompts configured")

type Randomizer struct {
	prompts []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(prompts []string, seed int64) *Randomizer {
	prompts = lo.Compact(lo.Map(prompts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
	return &Randomizer{prompts: prompts, rnd: rand.New(rand.NewSource(seed))}
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "prompts")
	return New(prompts, time.Now().UTC().Unix()), nil
}

func (r *Randomizer) Len() int { return len(r.prompts) }

func (r *Randomizer) Randomize(ctx context.Context) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	log.Info("getting random prompt", "choices", len(r.prompts))
	if len(r.prompts) == 0 {
		return "", ErrNoPrompts
	}

	r.mu.Lock()
	idx := r.rnd.Intn(len(r.prompts))
	r.mu.Unlock()
	return r.prompts[idx], nil
}
