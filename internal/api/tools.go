package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spckit/internal/checksheet"
	"spckit/internal/ishikawa"
	"spckit/internal/report"
)

func bindDiagram(c *gin.Context) (*ishikawa.Diagram, []ishikawa.Category, bool) {
	var req ishikawaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return nil, nil, false
	}
	d, filter, err := req.diagram()
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return d, filter, true
}

func (s *Server) handleIshikawaDOT(c *gin.Context) {
	d, _, ok := bindDiagram(c)
	if !ok {
		return
	}
	out, err := d.DOT()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", out)
}

func (s *Server) handleIshikawaSummary(c *gin.Context) {
	d, filter, ok := bindDiagram(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"effect": d.Effect,
		"causes": d.CauseCount(),
		"rows":   d.Summary(filter...),
	})
}

func (s *Server) handleIshikawaCSV(c *gin.Context) {
	d, filter, ok := bindDiagram(c)
	if !ok {
		return
	}
	writeDocument(c, report.Ishikawa(d, filter...), report.FormatCSV, "ishikawa_summary")
}

// Check sheets

type sheetView struct {
	ID        string               `json:"id"`
	Type      checksheet.SheetType `json:"type"`
	Fields    []checksheet.Field   `json:"fields"`
	Records   int                  `json:"records"`
	CreatedAt time.Time            `json:"created_at"`
}

func viewOf(s *checksheet.Sheet) sheetView {
	return sheetView{
		ID:        s.ID.String(),
		Type:      s.Definition.Type,
		Fields:    s.Definition.Fields,
		Records:   s.Len(),
		CreatedAt: s.CreatedAt,
	}
}

func (s *Server) handleCreateSheet(c *gin.Context) {
	var def checksheet.Definition
	if err := c.ShouldBindJSON(&def); err != nil {
		bindError(c, err)
		return
	}
	sheet, err := s.svc.Sheets().Create(def)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(sheet))
}

func (s *Server) handleListSheets(c *gin.Context) {
	sheets := s.svc.Sheets().List()
	views := make([]sheetView, len(sheets))
	for i, sh := range sheets {
		views[i] = viewOf(sh)
	}
	c.JSON(http.StatusOK, gin.H{"sheets": views})
}

func (s *Server) handleGetSheet(c *gin.Context) {
	sheet, err := s.svc.Sheets().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sheet))
}

func (s *Server) handleRecord(c *gin.Context) {
	sheet, err := s.svc.Sheets().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		bindError(c, err)
		return
	}
	if err := sheet.Record(values); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(sheet))
}

func (s *Server) handleExportSheet(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondError(c, err)
		return
	}
	sheet, err := s.svc.Sheets().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := sheet.ToTable()
	if err != nil {
		respondError(c, err)
		return
	}
	writeDocument(c, report.Table(string(sheet.Definition.Type)+" check sheet", t), format, "check_sheet")
}

// handleLoadSheet makes the sheet's records the current dataset.
func (s *Server) handleLoadSheet(c *gin.Context) {
	info, err := s.svc.LoadCheckSheet(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}
