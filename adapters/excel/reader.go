package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"spckit/adapters/coercer"
	"spckit/domain/table"
	"spckit/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	log     logrus.FieldLogger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, log logrus.FieldLogger) *DataReader {
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.Coercion),
		log:     log.WithField("component", "ingestion"),
	}
}

// FileTypeOf returns "csv" or "xlsx" from the file extension.
func FileTypeOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(name)))
	}
}

// ReadFile reads a CSV or XLSX file from disk into raw rows.
func (r *DataReader) ReadFile(path string) (*RawData, error) {
	fileType, err := FileTypeOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(fileType), path))
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return r.Read(f, fileType)
}

// Read reads raw rows of the given file type ("csv" or "xlsx") from src.
func (r *DataReader) Read(src io.Reader, fileType string) (*RawData, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case "csv":
		rows, err = r.readCSV(src)
	case "xlsx":
		rows, err = r.readExcel(src)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", fileType))
	}
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"type":    fileType,
		"rows":    len(rows),
		"elapsed": time.Since(start).String(),
	}).Debug("file read")

	return r.processRows(rows, fileType)
}

// ReadTable reads src and builds a typed table from it.
func (r *DataReader) ReadTable(src io.Reader, fileType string) (*table.Table, error) {
	raw, err := r.Read(src, fileType)
	if err != nil {
		return nil, err
	}
	return r.BuildTable(raw)
}

// ReadTableFile reads a file from disk and builds a typed table from it.
func (r *DataReader) ReadTableFile(path string) (*table.Table, error) {
	raw, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.BuildTable(raw)
}

// BuildTable infers column kinds and builds the table.
func (r *DataReader) BuildTable(raw *RawData) (*table.Table, error) {
	t, err := r.coercer.BuildTable(raw.Headers, raw.Rows)
	if err != nil {
		return nil, err
	}
	for _, info := range t.Columns() {
		r.log.WithFields(logrus.Fields{"column": info.Name, "kind": info.Kind}).Debug("column kind inferred")
	}
	r.log.WithFields(logrus.Fields{
		"columns": t.ColumnCount(),
		"rows":    t.RowCount(),
	}).Info("table built")
	return t, nil
}

// readExcel reads the first worksheet of a workbook.
func (r *DataReader) readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.EmptyTable("workbook has no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheets[0])
	}
	return rows, nil
}

func (r *DataReader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read CSV file: %v", err))
	}
	return rows, nil
}

// processRows splits the header row off, enforces the configured limits
// and pads every data row to the header width.
func (r *DataReader) processRows(rows [][]string, fileType string) (*RawData, error) {
	if len(rows) == 0 {
		return nil, errors.EmptyTable(fmt.Sprintf("%s file has no header row", strings.ToUpper(fileType)))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if seen[name] {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column header %q", name))
		}
		seen[name] = true
		headers[i] = name
	}
	if len(headers) == 0 {
		return nil, errors.EmptyTable("header row is empty")
	}
	if r.config.MaxColumns > 0 && len(headers) > r.config.MaxColumns {
		return nil, errors.InvalidInput(fmt.Sprintf("too many columns: %d (maximum %d)", len(headers), r.config.MaxColumns))
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			padded[j] = strings.TrimSpace(row[j])
		}
		dataRows = append(dataRows, padded)
	}
	if r.config.MaxRows > 0 && len(dataRows) > r.config.MaxRows {
		return nil, errors.InvalidInput(fmt.Sprintf("too many rows: %d (maximum %d)", len(dataRows), r.config.MaxRows))
	}

	r.log.WithFields(logrus.Fields{
		"type":    fileType,
		"columns": len(headers),
		"rows":    len(dataRows),
	}).Info("file processed")

	return &RawData{Headers: headers, Rows: dataRows}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
