// Package server serves the dashboard pages, the JSON API and CSV exports.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"clusterdash/internal/cache"
	"clusterdash/internal/config"
	"clusterdash/internal/dataset"
	"clusterdash/internal/logger"
	"clusterdash/internal/views"
	"clusterdash/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []string{"home.html", "collection.html", "cluster.html", "error.html"}

// ImageFetcher downloads images and returns them as data URIs, in input
// order, with empty strings for failures.
type ImageFetcher interface {
	FetchAll(ctx context.Context, urls []string) []string
}

// Options configures a Server.
type Options struct {
	Store   *dataset.Store
	BaseURL string
	Render  config.RenderConfig
	Seed    uint64
	Cache   cache.Cache
	Fetcher ImageFetcher
	Logger  *logger.Logger
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store     *dataset.Store
	baseURL   string
	render    config.RenderConfig
	seed      uint64
	builder   *views.Builder
	memo      *cache.Memo
	fetcher   ImageFetcher
	logger    *logger.Logger
	urls      *utils.HTTPHelper
	templates map[string]*template.Template
}

// New creates a server. Store is required. Without a fetcher, images are
// linked rather than inlined.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		store:   opts.Store,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		render:  opts.Render,
		seed:    opts.Seed,
		builder: views.NewBuilder(opts.Render.SampleSize),
		memo:    cache.NewMemo(opts.Cache, log),
		fetcher: opts.Fetcher,
		logger:  log,
		urls:    utils.NewHTTPHelper(),
	}

	templates, err := s.parseTemplates()
	if err != nil {
		return nil, err
	}

	s.templates = templates

	return s, nil
}

func (s *Server) parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"display": s.builder.DisplayName,
		"percent": func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
		"inc":     func(i int) int { return i + 1 },
	}

	out := make(map[string]*template.Template, len(pageTemplates))

	for _, page := range pageTemplates {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}

		out[page] = t
	}

	return out, nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logger.Middleware())

	s.RegisterPageRoutes(r)
	s.RegisterAPIRoutes(r)
	s.RegisterHealthRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "Page not found")
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down dashboard")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// current returns the dataset snapshot for this request, or writes a 503.
func (s *Server) current(c *gin.Context) (*dataset.Context, bool) {
	ctx := s.store.Current()
	if ctx == nil {
		s.renderError(c, http.StatusServiceUnavailable, "Dataset is not loaded yet")
		return nil, false
	}

	return ctx, true
}

func (s *Server) renderPage(c *gin.Context, status int, page string, data any) {
	var buf bytes.Buffer

	if err := s.templates[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template failed", "page", page, "error", err)
		c.String(http.StatusInternalServerError, "internal error")

		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	s.renderPage(c, status, "error.html", errorPage{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}
