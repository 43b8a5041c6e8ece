package ui

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"bubbleviz/adapters/zeppelin"
	"bubbleviz/domain/chart"
	"bubbleviz/domain/core"
	"bubbleviz/domain/table"
	"bubbleviz/internal/columnselector"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"

	"github.com/gin-gonic/gin"
)

// renderRequest is the JSON body of POST /api/render. Config is optional;
// roles it names are selected by column name before rendering.
type renderRequest struct {
	Table  *table.Table          `json:"table"`
	Config map[chart.Role]string `json:"config,omitempty"`
}

type selectRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.templates.ExecuteTemplate(c.Writer, "index.html", gin.H{
		"Title":        "Bubble chart",
		"ChartID":      s.target.ID(),
		"NeedsLibrary": s.needsLibrary,
	})
	if err != nil {
		log.Printf("[Index] Template execution failed: %v", err)
	}
}

// handleLibrary serves the chart library the loader fetched, or redirects to
// its CDN location when only the URL is known.
func (s *Server) handleLibrary(c *gin.Context) {
	lib, err := s.loader.Wait(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if lib == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if !lib.Inline() {
		c.Redirect(http.StatusFound, lib.URL)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "application/javascript", lib.Source)
}

func (s *Server) handleGetTransformation(c *gin.Context) {
	c.JSON(http.StatusOK, s.viz.Transformation().Spec())
}

func (s *Server) handleSelectColumn(c *gin.Context) {
	role, ok := chart.ParseRole(c.Param("role"))
	if !ok {
		respondError(c, errors.InvalidInput(fmt.Sprintf("unknown role %q", c.Param("role"))))
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("body must be {\"column\": \"<name>\"}"))
		return
	}

	tbl := s.currentTable()
	if tbl == nil {
		respondError(c, errors.NotFound("table"))
		return
	}
	if err := s.viz.Transformation().SelectByName(tbl, role, req.Column); err != nil {
		respondError(c, err)
		return
	}

	s.rerender()
	c.JSON(http.StatusOK, s.viz.Transformation().Spec())
}

func (s *Server) handleClearColumn(c *gin.Context) {
	role, ok := chart.ParseRole(c.Param("role"))
	if !ok {
		respondError(c, errors.InvalidInput(fmt.Sprintf("unknown role %q", c.Param("role"))))
		return
	}
	if err := s.viz.Transformation().Clear(role); err != nil {
		respondError(c, err)
		return
	}

	s.rerender()
	c.JSON(http.StatusOK, s.viz.Transformation().Spec())
}

// handleSuggest fills unset roles with columns inferred from the current table
func (s *Server) handleSuggest(c *gin.Context) {
	tbl := s.currentTable()
	if tbl == nil {
		respondError(c, errors.NotFound("table"))
		return
	}

	suggested := columnselector.Suggest(tbl)
	current := s.viz.Config()
	tr := s.viz.Transformation()
	for _, role := range chart.Roles {
		if current.Get(role) != nil {
			continue
		}
		if col := suggested.Get(role); col != nil {
			if err := tr.Select(role, *col); err != nil {
				respondError(c, err)
				return
			}
		}
	}

	s.rerender()
	c.JSON(http.StatusOK, tr.Spec())
}

// handleRender accepts a table as JSON or as %table text and queues a draw
func (s *Server) handleRender(c *gin.Context) {
	var req renderRequest
	if strings.HasPrefix(c.ContentType(), "text/") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, errors.InvalidInput("failed to read body"))
			return
		}
		req.Table, err = zeppelin.ParseString(string(body))
		if err != nil {
			respondError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput(fmt.Sprintf("invalid render request: %v", err)))
		return
	}

	if req.Table == nil {
		respondError(c, errors.InvalidInput("table is required"))
		return
	}
	if err := req.Table.Validate(); err != nil {
		respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "malformed table"))
		return
	}

	if len(req.Config) > 0 {
		if err := s.viz.Transformation().SelectAll(req.Table, req.Config); err != nil {
			respondError(c, err)
			return
		}
	}

	s.SetTable(req.Table)

	status := http.StatusAccepted
	if !s.viz.Ready() {
		status = http.StatusOK
	}
	cfg := s.viz.Config()
	c.JSON(status, gin.H{
		"chart_id": s.target.ID(),
		"ready":    cfg.Ready(),
		"missing":  cfg.Missing(),
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	tbl := s.currentTable()
	if tbl == nil {
		respondError(c, errors.NotFound("table"))
		return
	}
	cfg := s.viz.Config()
	trs, err := traces.BuildTracesWithOptions(tbl, &cfg, traces.Options{SortGroups: s.sortGroups})
	if errors.Is(err, traces.ErrNotReady) {
		respondError(c, errors.NotReady("set all axes before requesting a summary"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"traces": traces.Summarize(trs)})
}

// handleChart returns the latest content of the display target
func (s *Server) handleChart(c *gin.Context) {
	content, rev := s.target.Content()
	if rev == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	etag := core.NewHash(content.Body).ETag()
	c.Header("ETag", etag)
	c.Header("X-Chart-Revision", fmt.Sprint(rev))
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, content.MediaType, content.Body)
}

// handleChartEvent returns the latest content wrapped like a stream event so
// a freshly opened page can catch up before the first push.
func (s *Server) handleChartEvent(c *gin.Context) {
	content, rev := s.target.Content()
	if rev == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, chartEvent(s.target.ID(), content, rev))
}
