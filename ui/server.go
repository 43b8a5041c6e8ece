package ui

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"

	"bubbleviz/app"
	"bubbleviz/domain/table"
	"bubbleviz/internal/api"
	"bubbleviz/internal/display"
	"bubbleviz/internal/errors"
	"bubbleviz/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server is the notebook host shell: it owns one visualization, feeds it
// tables, drives its column selector and streams the target to browsers.
type Server struct {
	router    *gin.Engine
	templates *template.Template

	viz    *app.BubbleVisualization
	target *display.Buffer
	hub    *api.SSEHub
	loader ports.LibraryLoader

	needsLibrary bool
	sortGroups   bool

	tableMu sync.RWMutex
	table   *table.Table
}

// Options configures a Server
type Options struct {
	GinMode string
	// NeedsLibrary makes the page load the chart library; false for the
	// static image renderers.
	NeedsLibrary bool
	SortGroups   bool
}

// NewServer wires routes around an existing visualization and its target
func NewServer(viz *app.BubbleVisualization, target *display.Buffer, hub *api.SSEHub, loader ports.LibraryLoader, opts Options) (*Server, error) {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		router:       gin.Default(),
		templates:    templates,
		viz:          viz,
		target:       target,
		hub:          hub,
		loader:       loader,
		needsLibrary: opts.NeedsLibrary,
		sortGroups:   opts.SortGroups,
	}

	target.OnShow(func(content ports.Content, revision int) {
		hub.Broadcast(chartEvent(target.ID(), content, revision))
	})

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP on addr
func (s *Server) Start(addr string) error {
	log.Printf("Starting bubbleviz on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/assets/plotly.js", s.handleLibrary)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/transformation", s.handleGetTransformation)
		apiGroup.POST("/transformation/suggest", s.handleSuggest)
		apiGroup.PUT("/transformation/:role", s.handleSelectColumn)
		apiGroup.DELETE("/transformation/:role", s.handleClearColumn)

		apiGroup.POST("/render", s.handleRender)
		apiGroup.GET("/summary", s.handleSummary)

		apiGroup.GET("/chart", s.handleChart)
		apiGroup.GET("/chart/event", s.handleChartEvent)
		apiGroup.GET("/events", s.hub.HandleSSE)
	}
}

// SetTable replaces the current table and renders it in the background
func (s *Server) SetTable(tbl *table.Table) {
	s.tableMu.Lock()
	s.table = tbl
	s.tableMu.Unlock()
	s.rerender()
}

func (s *Server) currentTable() *table.Table {
	s.tableMu.RLock()
	defer s.tableMu.RUnlock()
	return s.table
}

// rerender queues a draw of the current table; results are only logged
// because browsers learn about draws through the event stream.
func (s *Server) rerender() {
	tbl := s.currentTable()
	if tbl == nil {
		if !s.viz.Ready() {
			s.viz.Render(context.Background(), nil)
		}
		return
	}
	done := s.viz.RenderAsync(tbl)
	go func() {
		if err := <-done; err != nil {
			log.Printf("[Server] Render failed: %v", err)
		}
	}()
}

func chartEvent(chartID string, content ports.Content, revision int) api.ChartEvent {
	ev := api.ChartEvent{
		ChartID:   chartID,
		EventType: "draw",
		Revision:  revision,
		MediaType: content.MediaType,
	}
	if isText(content.MediaType) {
		ev.Body = string(content.Body)
	}
	return ev
}

func isText(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") || strings.HasPrefix(mediaType, "image/svg") || strings.HasPrefix(mediaType, "application/json")
}

// respondError maps AppError codes onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNotReady:
		status = http.StatusConflict
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
