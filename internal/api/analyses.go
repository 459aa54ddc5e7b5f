package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"spckit/adapters/chart"
	"spckit/app"
	"spckit/internal/analysis"
	"spckit/internal/errors"
	"spckit/internal/report"
)

// The run helpers bind the request, call the service and write any error.
// They return false once a response has been written.

func (s *Server) runPareto(c *gin.Context) (*app.ParetoResult, bool) {
	var req paretoRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.Pareto(req.toService())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) runControl(c *gin.Context) (*analysis.ControlChart, bool) {
	var req columnRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.Control(req.Version, req.Column)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) runStratify(c *gin.Context) (*analysis.StratumSummary, bool) {
	var req stratifyRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.Stratify(req.Version, req.CategoryColumn, req.NumericColumn)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) runHistogram(c *gin.Context) (*analysis.Histogram, bool) {
	var req histogramRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.Histogram(req.Version, req.Column, req.Bins)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) runCorrelation(c *gin.Context) (*analysis.Correlation, bool) {
	var req correlationRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.Correlate(req.Version, req.XColumn, req.YColumn)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) runDPMO(c *gin.Context) (*analysis.DpmoResult, bool) {
	var req dpmoRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	res, err := s.svc.DPMO(*req.Defects, *req.Units, *req.Opportunities)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) handlePareto(c *gin.Context) {
	if res, ok := s.runPareto(c); ok {
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) handleControl(c *gin.Context) {
	if res, ok := s.runControl(c); ok {
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) handleStratify(c *gin.Context) {
	if res, ok := s.runStratify(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"summary":           res,
			"rounded":           res.Rounded(),
			"dominant_by_count": res.DominantByCount(),
			"dominant_by_mean":  res.DominantByMean(),
		})
	}
}

func (s *Server) handleHistogram(c *gin.Context) {
	if res, ok := s.runHistogram(c); ok {
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) handleCorrelation(c *gin.Context) {
	if res, ok := s.runCorrelation(c); ok {
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) handleDPMO(c *gin.Context) {
	if res, ok := s.runDPMO(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"result":    res,
			"reference": analysis.SigmaReferenceTable(),
		})
	}
}

// Charts

func writePNG(c *gin.Context, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleParetoChart(c *gin.Context) {
	if res, ok := s.runPareto(c); ok {
		writePNG(c, func(w io.Writer) error { return chart.Pareto(w, res.Pareto, res.Threshold) })
	}
}

func (s *Server) handleControlChart(c *gin.Context) {
	if res, ok := s.runControl(c); ok {
		writePNG(c, func(w io.Writer) error { return chart.Control(w, res) })
	}
}

func (s *Server) handleHistogramChart(c *gin.Context) {
	if res, ok := s.runHistogram(c); ok {
		writePNG(c, func(w io.Writer) error { return chart.Histogram(w, res) })
	}
}

func (s *Server) handleStratificationChart(c *gin.Context) {
	if res, ok := s.runStratify(c); ok {
		writePNG(c, func(w io.Writer) error { return chart.Stratification(w, res) })
	}
}

func (s *Server) handleDPMOChart(c *gin.Context) {
	if res, ok := s.runDPMO(c); ok {
		writePNG(c, func(w io.Writer) error { return chart.DPMO(w, res) })
	}
}

// handleReport renders one analysis as md, html or csv. The body is the
// same as for the matching analysis.
func (s *Server) handleReport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	kind := c.Param("kind")
	var doc *report.Document
	switch kind {
	case "pareto":
		if res, ok := s.runPareto(c); ok {
			doc = report.Pareto(res.Pareto, res.Threshold, res.Interpretation)
		}
	case "control-chart":
		if res, ok := s.runControl(c); ok {
			doc = report.Control(res)
		}
	case "stratification":
		if res, ok := s.runStratify(c); ok {
			doc = report.Stratification(res)
		}
	case "histogram":
		if res, ok := s.runHistogram(c); ok {
			doc = report.Histogram(res)
		}
	case "correlation":
		if res, ok := s.runCorrelation(c); ok {
			doc = report.Correlation(res)
		}
	case "dpmo":
		if res, ok := s.runDPMO(c); ok {
			doc = report.DPMO(res)
		}
	default:
		respondError(c, errors.NotFound("report "+kind))
		return
	}
	if doc == nil {
		return
	}
	writeDocument(c, doc, format, kind)
}
