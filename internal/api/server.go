// Package api exposes the analysis service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"spckit/app"
)

// Server holds the gin router and its dependencies.
type Server struct {
	router    *gin.Engine
	svc       *app.AnalysisService
	maxUpload int64
	log       logrus.FieldLogger
}

// NewServer creates the router and registers every route. maxUpload bounds
// the size of an uploaded dataset in bytes.
func NewServer(svc *app.AnalysisService, maxUpload int64, log logrus.FieldLogger) *Server {
	s := &Server{
		router:    gin.New(),
		svc:       svc,
		maxUpload: maxUpload,
		log:       log.WithField("component", "api"),
	}
	s.router.Use(gin.Recovery(), requestLogger(s.log))
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	datasets := api.Group("/datasets")
	datasets.POST("", s.handleUpload)
	datasets.GET("/current", s.handleCurrent)
	datasets.GET("/current/describe", s.handleDescribe)
	datasets.GET("/current/profile", s.handleProfile)
	datasets.POST("/current/prepare", s.handlePrepare)
	datasets.GET("/current/export", s.handleExport)

	analyses := api.Group("/analyses")
	analyses.POST("/pareto", s.handlePareto)
	analyses.POST("/control-chart", s.handleControl)
	analyses.POST("/stratification", s.handleStratify)
	analyses.POST("/histogram", s.handleHistogram)
	analyses.POST("/correlation", s.handleCorrelation)
	analyses.POST("/dpmo", s.handleDPMO)

	charts := api.Group("/charts")
	charts.GET("/pareto.png", s.handleParetoChart)
	charts.GET("/control-chart.png", s.handleControlChart)
	charts.GET("/histogram.png", s.handleHistogramChart)
	charts.GET("/stratification.png", s.handleStratificationChart)
	charts.GET("/dpmo.png", s.handleDPMOChart)

	api.POST("/reports/:kind", s.handleReport)

	ishikawa := api.Group("/ishikawa")
	ishikawa.POST("/dot", s.handleIshikawaDOT)
	ishikawa.POST("/summary", s.handleIshikawaSummary)
	ishikawa.POST("/summary.csv", s.handleIshikawaCSV)

	sheets := api.Group("/checksheets")
	sheets.POST("", s.handleCreateSheet)
	sheets.GET("", s.handleListSheets)
	sheets.GET("/:id", s.handleGetSheet)
	sheets.POST("/:id/records", s.handleRecord)
	sheets.GET("/:id/export", s.handleExportSheet)
	sheets.POST("/:id/load", s.handleLoadSheet)
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}
