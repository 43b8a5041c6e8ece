package ui

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is a read-only viewer for a chart file written by the CLI. It re-reads
// the file on every request so a re-run of the CLI shows up on refresh.
type App struct {
	router    *chi.Mux
	templates *template.Template
	file      string
}

// Config holds viewer configuration
type Config struct {
	Port string
	File string
}

// NewApp creates a viewer for config.File
func NewApp(config Config) (*App, error) {
	if config.File == "" {
		return nil, fmt.Errorf("chart file is required")
	}
	templates, err := template.ParseFS(templateFiles, "templates/viewer.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		templates: templates,
		file:      config.File,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/raw", a.handleRaw)
}

// Handler exposes the router for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves the viewer on port
func (a *App) Start(port string) error {
	addr := ":" + port
	log.Printf("Starting bubbleviz viewer on %s for %s", addr, a.file)
	return http.ListenAndServe(addr, a.router)
}

// handleIndex serves HTML charts as they are and wraps images in a page
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, mediaType, err := a.read()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if strings.HasPrefix(mediaType, "text/html") {
		w.Header().Set("Content-Type", mediaType)
		w.Write(body)
		return
	}

	data := map[string]interface{}{
		"Title": filepath.Base(a.file),
	}
	if strings.HasPrefix(mediaType, "image/svg") {
		data["Inline"] = template.HTML(body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, "viewer.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) handleRaw(w http.ResponseWriter, r *http.Request) {
	body, mediaType, err := a.read()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}

func (a *App) read() ([]byte, string, error) {
	body, err := os.ReadFile(a.file)
	if err != nil {
		return nil, "", fmt.Errorf("chart not available: %w", err)
	}
	return body, mediaTypeOf(a.file, body), nil
}

func mediaTypeOf(path string, body []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	}
	return http.DetectContentType(body)
}
