package server

import (
	"bytes"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clusterdash/internal/dataset"
	"clusterdash/internal/views"
)

// RegisterAPIRoutes registers the JSON API and the CSV export.
func (s *Server) RegisterAPIRoutes(r *gin.Engine) {
	r.GET("/export.csv", s.handleExport)

	api := r.Group("/api")
	api.GET("/weeks", s.handleListWeeks)
	api.GET("/weeks/:week", s.handleGetWeek)
	api.GET("/report", s.handleReport)
}

// RegisterHealthRoutes registers the health check.
func (s *Server) RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)
}

// apiCurrent is current for JSON endpoints.
func (s *Server) apiCurrent(c *gin.Context) (*dataset.Context, bool) {
	dc := s.store.Current()
	if dc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded"})
		return nil, false
	}

	return dc, true
}

type weekSummary struct {
	Name     string `json:"name"`
	Clusters int    `json:"clusters"`
	Articles int    `json:"articles"`
	URL      string `json:"url"`
}

func (s *Server) handleListWeeks(c *gin.Context) {
	dc, ok := s.apiCurrent(c)
	if !ok {
		return
	}

	weeks := make([]weekSummary, 0, len(dc.Dataset.Weeks))
	for _, w := range dc.Dataset.Weeks {
		weeks = append(weeks, weekSummary{
			Name:     w.Name,
			Clusters: len(w.Clusters),
			Articles: w.TotalArticles(),
			URL:      s.baseURL + views.HomeLink(w.Name),
		})
	}

	c.JSON(http.StatusOK, gin.H{"weeks": weeks, "hash": dc.Meta.Hash})
}

func (s *Server) handleGetWeek(c *gin.Context) {
	dc, ok := s.apiCurrent(c)
	if !ok {
		return
	}

	w, err := dc.Week(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, w)
}

type unrecognizedLabel struct {
	Label    string `json:"label"`
	Articles int    `json:"articles"`
}

func (s *Server) handleReport(c *gin.Context) {
	dc, ok := s.apiCurrent(c)
	if !ok {
		return
	}

	labels := make([]unrecognizedLabel, 0)
	for label, n := range dc.Report.UnrecognizedLabels() {
		labels = append(labels, unrecognizedLabel{Label: label, Articles: n})
	}

	c.JSON(http.StatusOK, gin.H{
		"weeks":        dc.Report.Weeks,
		"clusters":     dc.Report.Clusters,
		"articles":     dc.Report.Articles,
		"defaulted":    dc.Report.Defaulted(),
		"unrecognized": labels,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	dc, ok := s.current(c)
	if !ok {
		return
	}

	w, ok := s.resolveWeek(c, dc)
	if !ok {
		return
	}

	week := w.Name

	index, err := parseIndex(c.Query("cluster"), len(w.Clusters))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, msgInvalidCluster)
		return
	}

	selected, err := views.ParseSelection(c.QueryArray("collection"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, msgInvalidCollection)
		return
	}

	cluster := &w.Clusters[index]

	var buf bytes.Buffer
	if err := views.WriteCSV(&buf, cluster, selected); err != nil {
		s.logger.Error("export failed", "week", week, "cluster", index, "error", err)
		s.renderError(c, http.StatusInternalServerError, "Export failed")

		return
	}

	name := views.ExportFileName(cluster, week, c.Query("duplicate") == "1")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	dc := s.store.Current()
	if dc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"dataset": gin.H{
			"source":   dc.Meta.Source,
			"hash":     dc.Meta.Hash,
			"loadedAt": dc.Meta.LoadedAt.Format(time.RFC3339),
			"weeks":    dc.Meta.Weeks,
			"clusters": dc.Meta.Clusters,
			"articles": dc.Meta.Articles,
		},
	})
}
