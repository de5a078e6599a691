// Package server is the web front end: a page that follows the session over
// server-sent events and a small JSON API around the request controller.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/feed"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/page"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Addr string
	// SavedDir, when set, has its images served under /saved.
	SavedDir string
	Health   func() map[string]error
}

type Server struct {
	controller *controller.Controller
	templator  *page.Templator
	feed       *feed.Generator
	uploader   store.Uploader
	opts       Options

	// ctx is the run context: it bounds background cycles and open event streams.
	ctx    context.Context
	engine *gin.Engine
	now    func() time.Time
}

func New(c *controller.Controller, t *page.Templator, f *feed.Generator, u store.Uploader, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		controller: c,
		templator:  t,
		feed:       f,
		uploader:   u,
		opts:       opts,
		ctx:        context.Background(),
		now:        time.Now,
	}
	s.engine = s.routes()
	return s
}

func NewServer(i *do.Injector) (*Server, error) {
	opts := Options{
		Addr:   do.MustInvokeNamed[string](i, "listen_addr"),
		Health: i.HealthCheck,
	}
	if do.MustInvokeNamed[string](i, "bucket") == "" {
		opts.SavedDir = do.MustInvokeNamed[string](i, "output_dir")
	}
	return New(
		do.MustInvoke[*controller.Controller](i),
		do.MustInvoke[*page.Templator](i),
		do.MustInvoke[*feed.Generator](i),
		do.MustInvoke[store.Uploader](i),
		opts,
	), nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/", s.index)
	r.GET("/events", s.events)
	r.GET("/images/:id", s.image)
	r.GET("/feed.xml", s.rss)
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.POST("/generate", s.generate)
	api.GET("/state", s.state)
	api.POST("/save", s.save)

	if s.opts.SavedDir != "" {
		r.GET("/saved/:name", s.saved)
	}
	return r
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	log := log.FromContextOrDiscard(ctx).WithGroup("server").With("addr", s.opts.Addr)

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (s *Server) logRequests(c *gin.Context) {
	start := s.now()
	logger := log.FromContextOrDiscard(s.ctx).WithGroup("http")
	c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), logger))
	c.Next()
	logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}
