//go:build !js
// +build !js

package main

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/config"
	"github.com/simukka/lofi-fm/metadata"
)

//go:embed web
var webFS embed.FS

// relayPath is where browsers receive now-playing events. The page reads it
// from /api/config instead of the upstream URL, which rarely allows CORS.
const relayPath = "/api/metadata"

// Server is the app-shell HTTP server.
type Server struct {
	hub *metadata.Hub
	log zerolog.Logger

	mu  sync.RWMutex
	cfg config.Config
}

// NewServer creates a server publishing cfg.
func NewServer(cfg config.Config, hub *metadata.Hub, logger zerolog.Logger) *Server {
	return &Server{cfg: cfg, hub: hub, log: logger.With().Str("component", "server").Logger()}
}

// Config returns the configuration currently served.
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig swaps the served configuration; used by the file watcher.
func (s *Server) SetConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// NewHTTPRouter builds the echo router.
func (s *Server) NewHTTPRouter(staticDir string) *echo.Echo {
	r := echo.New()
	r.HideBanner = true
	r.HidePort = true

	r.Use(middleware.Recover())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Debug()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	web, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(fmt.Sprintf("embedded web assets: %v", err))
	}
	r.GET("/", s.indexHandler(web))
	r.GET("/manifest.webmanifest", echo.WrapHandler(http.FileServer(http.FS(web))))
	if staticDir != "" {
		r.Static("/", staticDir)
	}

	api := r.Group("/api")
	api.GET("/health", s.healthHandler)
	api.GET("/config", s.configHandler)
	api.GET("/metadata", s.metadataHandler)
	return r
}

func (s *Server) indexHandler(web fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := fs.ReadFile(web, "index.html")
		if err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, page)
	}
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "ok",
		"subscribers": s.hub.Count(),
	})
}

func (s *Server) configHandler(c echo.Context) error {
	cfg := s.Config()
	if cfg.MetadataURL != "" {
		cfg.MetadataURL = relayPath
	}
	return c.JSON(http.StatusOK, cfg)
}

// metadataHandler streams hub events as Server-Sent Events until the client
// goes away.
func (s *Server) metadataHandler(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub.ID)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
