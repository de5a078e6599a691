package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type generateRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

func (s *Server) index(c *gin.Context) {
	html, err := s.templator.Template(c.Request.Context(), s.controller.Session().Snapshot())
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "rendering page failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Session().Snapshot())
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := s.controller.Start(s.ctx, req.Prompt)
	switch {
	case errors.Is(err, controller.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, controller.ErrEmptyPrompt):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": controller.ValidationMessage})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, s.controller.Session().Snapshot())
	}
}

func (s *Server) image(c *gin.Context) {
	h, ok := s.controller.Displays().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Header("Cache-Control", "private, max-age=31536000, immutable")
	c.Data(http.StatusOK, h.ContentType, h.Data)
}

// saved serves stored images by name. Metadata sidecars stay private.
func (s *Server) saved(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !store.IsImageFile(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.File(filepath.Join(s.opts.SavedDir, name))
}

func (s *Server) save(c *gin.Context) {
	snap := s.controller.Session().Snapshot()
	if snap.Image == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no image to save"})
		return
	}
	name, err := store.Save(c.Request.Context(), s.uploader, *snap.Image, snap.Prompt, s.now())
	if err != nil {
		log.FromContextOrDiscard(c.Request.Context()).Error("saving image failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving image failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

func (s *Server) rss(c *gin.Context) {
	rss, err := s.feed.Generate(c.Request.Context())
	if err != nil {
		log.FromContextOrDiscard(c.Request.Context()).Error("generating feed failed", "error", err)
		c.String(http.StatusInternalServerError, "generating feed failed")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", rss)
}

func (s *Server) healthz(c *gin.Context) {
	var checks map[string]error
	if s.opts.Health != nil {
		checks = s.opts.Health()
	}
	failed := lo.PickBy(checks, func(_ string, err error) bool { return err != nil })
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"errors": lo.MapValues(failed, func(err error, _ string) string { return err.Error() }),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// events streams every session snapshot as one server-sent event.
func (s *Server) events(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snaps, cancel := s.controller.Session().Subscribe()
	defer cancel()

	fmt.Fprintf(c.Writer, ": connected\n\n")
	flusher.Flush()

	log := log.FromContextOrDiscard(c.Request.Context()).WithGroup("events")
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-s.ctx.Done():
			return
		case snap := <-snaps:
			data, err := json.Marshal(snap)
			if err != nil {
				log.Error("encoding snapshot failed", "error", err)
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
