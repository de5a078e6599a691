package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/promptshot/internal/display"
	"github.com/dmorgan81/promptshot/internal/image"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/retry"
	"github.com/dmorgan81/promptshot/internal/session"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	ValidationMessage = "Please enter a prompt"
	FallbackMessage   = "Failed to generate image"
)

var (
	ErrEmptyPrompt = errors.New(ValidationMessage)
	ErrBusy        = session.ErrBusy
)

// RequestError is the terminal failure of a cycle. Its message is what the user sees.
type RequestError struct {
	Message  string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string { return e.Message }
func (e *RequestError) Unwrap() error { return e.Err }

// Classify treats configuration problems as fatal and retries the rest, model warmup
// and attempt timeouts included. Canceling the cycle's context ends the loop on its own.
func Classify(err error) retry.Decision {
	if errors.Is(err, image.ErrMissingKey) {
		return retry.Fatal
	}
	return retry.Always(err)
}

// Message turns the last attempt's error into the text shown to the user.
func Message(err error) string {
	var apiErr *image.APIError
	if errors.As(err, &apiErr) {
		return lo.CoalesceOrEmpty(apiErr.Message, FallbackMessage)
	}
	if err == nil || err.Error() == "" {
		return FallbackMessage
	}
	return err.Error()
}

type Controller struct {
	generator image.Generator
	policy    retry.Policy
	session   *session.Session
	displays  *display.Registry

	wg sync.WaitGroup
}

func New(generator image.Generator, policy retry.Policy, sess *session.Session, displays *display.Registry) *Controller {
	if policy.Classify == nil {
		policy.Classify = Classify
	}
	return &Controller{
		generator: generator,
		policy:    policy,
		session:   sess,
		displays:  displays,
	}
}

func NewController(i *do.Injector) (*Controller, error) {
	return New(
		do.MustInvoke[image.Generator](i),
		retry.Policy{
			Attempts: do.MustInvokeNamed[int](i, "attempts"),
			Delay:    do.MustInvokeNamed[time.Duration](i, "retry_delay"),
		},
		do.MustInvoke[*session.Session](i),
		do.MustInvoke[*display.Registry](i),
	), nil
}

func (c *Controller) Session() *session.Session   { return c.session }
func (c *Controller) Displays() *display.Registry { return c.displays }

// Attempts is the per-cycle attempt budget.
func (c *Controller) Attempts() int { return c.policy.Attempts }

// Generate runs one request cycle and returns the new image.
func (c *Controller) Generate(ctx context.Context, prompt string) (display.Handle, error) {
	if err := c.begin(prompt); err != nil {
		return display.Handle{}, err
	}
	return c.run(ctx, prompt)
}

// Start begins a cycle and runs it in the background. It returns ErrBusy or
// ErrEmptyPrompt when no cycle was started. ctx must outlive the call.
func (c *Controller) Start(ctx context.Context, prompt string) error {
	if err := c.begin(prompt); err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, _ = c.run(ctx, prompt)
	}()
	return nil
}

// Shutdown waits for a background cycle to finish.
func (c *Controller) Shutdown() error {
	c.wg.Wait()
	return nil
}

func (c *Controller) begin(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		prev, err := c.session.Reject(prompt, ValidationMessage)
		if err != nil {
			return err
		}
		c.release(prev)
		return ErrEmptyPrompt
	}
	prev, err := c.session.Begin(prompt)
	if err != nil {
		return err
	}
	c.release(prev)
	return nil
}

func (c *Controller) release(h *display.Handle) {
	if h != nil {
		c.displays.Release(h.ID)
	}
}

func (c *Controller) run(ctx context.Context, prompt string) (h display.Handle, err error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("controller").With("prompt", prompt)
	log.Info("starting generation", "attempts", c.policy.Attempts, "delay", c.policy.Delay)

	attempts := 0
	defer func() {
		if r := recover(); r != nil {
			err = &RequestError{Message: FallbackMessage, Attempts: attempts, Err: fmt.Errorf("generator panicked: %v", r)}
		}
		if err != nil {
			// the loading state must not outlive the cycle
			_ = c.session.Fail(err.Error())
		}
	}()

	policy := c.policy
	policy.Notify = func(attempt int, err error, wait time.Duration) {
		log.Warn("attempt failed, retrying", "attempt", attempt, "loading", image.IsLoading(err), "wait", wait, "error", err)
	}

	img, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (image.Image, error) {
		attempts = attempt
		c.session.Attempt(attempt)
		return c.generator.Generate(ctx, image.NewParams(prompt))
	})
	if err != nil {
		msg := Message(err)
		log.Error("generation failed", "attempts", attempts, "error", err)
		return display.Handle{}, &RequestError{Message: msg, Attempts: attempts, Err: err}
	}

	h = c.displays.Create(img.Data, img.ContentType)
	if err := c.session.Succeed(h); err != nil {
		c.displays.Release(h.ID)
		return display.Handle{}, err
	}
	log.Info("generation succeeded", "attempts", attempts, "image", h.ID, "bytes", h.Size)
	return h, nil
}
