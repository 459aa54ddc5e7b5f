// Package report renders analysis results as Markdown, HTML or CSV.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"spckit/internal/errors"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts md, markdown, html or csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported report format %q", s))
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Grid is a header plus string rows.
type Grid struct {
	Header []string
	Rows   [][]string
}

// Section is a heading with paragraphs and an optional table.
type Section struct {
	Heading    string
	Paragraphs []string
	Table      *Grid
}

// Document is a titled report. Data is the table exported as CSV.
type Document struct {
	Title    string
	Sections []Section
	Data     *Grid
}

// Render writes doc in the given format.
func Render(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(doc)), nil
	case FormatHTML:
		return HTML(doc), nil
	case FormatCSV:
		return CSV(doc)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported report format %q", format))
	}
}

// Markdown renders doc as GitHub-flavoured Markdown.
func Markdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Title)
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n## %s\n", s.Heading)
		for _, p := range s.Paragraphs {
			fmt.Fprintf(&b, "\n%s\n", p)
		}
		if s.Table != nil {
			b.WriteString("\n")
			writeMarkdownTable(&b, s.Table)
		}
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, g *Grid) {
	b.WriteString("| " + strings.Join(escapeCells(g.Header), " | ") + " |\n")
	seps := make([]string, len(g.Header))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range g.Rows {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(c, "|", `\|`), "\n", " ")
	}
	return out
}

// HTML renders doc as a complete HTML page.
func HTML(doc *Document) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: doc.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(doc)), p, renderer)
}

// CSV writes the document's data table.
func CSV(doc *Document) ([]byte, error) {
	if doc.Data == nil {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no tabular data", doc.Title))
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(doc.Data.Header); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	if err := w.WriteAll(doc.Data.Rows); err != nil {
		return nil, errors.Wrap(err, "write csv rows")
	}
	return buf.Bytes(), nil
}
