package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"spckit/app"
	"spckit/internal/errors"
	"spckit/internal/report"
)

// multipartSlack leaves room for the multipart envelope around the file.
const multipartSlack = 1 << 20

func (s *Server) tooLarge(c *gin.Context) {
	respondStatus(c, http.StatusRequestEntityTooLarge, errors.InvalidInput(fmt.Sprintf(
		"file exceeds the %.1f MB limit", float64(s.maxUpload)/(1024*1024))))
}

// handleUpload replaces the current dataset with the multipart file in the
// "dataset" field.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartSlack)

	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.tooLarge(c)
			return
		}
		respondError(c, errors.InvalidInput(`no file uploaded in field "dataset"`))
		return
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		s.tooLarge(c)
		return
	}

	info, err := s.svc.Load(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleCurrent(c *gin.Context) {
	info, err := s.svc.Current()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleDescribe(c *gin.Context) {
	var req columnRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	summary, err := s.svc.Describe(req.Version, req.Column)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleProfile(c *gin.Context) {
	var q versionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	profile, err := s.svc.Profile(c.Request.Context(), q.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handlePrepare(c *gin.Context) {
	var req app.PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	info, err := s.svc.Prepare(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleExport writes the current dataset as CSV, Markdown or HTML.
func (s *Server) handleExport(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondError(c, err)
		return
	}
	var q versionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	snap, err := s.svc.Snapshot(q.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	writeDocument(c, report.Table(snap.Name, snap.Table), format, "dataset")
}

// writeDocument renders doc; CSV is sent as an attachment named base.csv.
func writeDocument(c *gin.Context, doc *report.Document, format report.Format, base string) {
	body, err := report.Render(doc, format)
	if err != nil {
		respondError(c, err)
		return
	}
	if format == report.FormatCSV {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, base))
	}
	c.Data(http.StatusOK, format.ContentType(), body)
}
