package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Column names accepted by WriteTable.
const (
	ColTitle           = "title"
	ColURL             = "url"
	ColSource          = "source"
	ColPublishTime     = "publish_time"
	ColDescription     = "description"
	ColCategory        = "category"
	ColImportanceScore = "importance_score"
	ColFullContent     = "full_content"
	ColSummarized      = "summarized_content"
)

var columnValue = map[string]func(domain.Article) string{
	ColTitle:           func(a domain.Article) string { return a.Title },
	ColURL:             func(a domain.Article) string { return a.URL },
	ColSource:          func(a domain.Article) string { return a.Source },
	ColPublishTime:     func(a domain.Article) string { return a.PublishTime },
	ColDescription:     func(a domain.Article) string { return a.Description },
	ColCategory:        func(a domain.Article) string { return a.Category },
	ColImportanceScore: func(a domain.Article) string { return strconv.Itoa(a.ImportanceScore) },
	ColFullContent:     func(a domain.Article) string { return a.FullContent },
	ColSummarized:      func(a domain.Article) string { return a.SummarizedContent },
}

// FileExporter writes run artifacts under a root directory: timestamped CSV
// and XLSX tables per stage, plus the plain-text digest.
type FileExporter struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Exporter = (*FileExporter)(nil)

// NewFileExporter roots all exports at dir.
func NewFileExporter(dir string, logger *slog.Logger) *FileExporter {
	if dir == "" {
		dir = "."
	}
	return &FileExporter{root: dir, logger: logger, now: time.Now}
}

// WriteTable saves the articles as CSV and XLSX under root/folder with a
// timestamped base name. Empty batches skip the write.
func (e *FileExporter) WriteTable(folder, base string, articles []domain.Article, columns []string) error {
	if len(articles) == 0 {
		e.debug("empty batch, skipping table", "base", base)
		return nil
	}

	dir := filepath.Join(e.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	stamp := e.now().Format("20060102_150405")
	prefix := filepath.Join(dir, fmt.Sprintf("%s_%s", base, stamp))

	rows := buildRows(articles, columns)

	if err := writeCSV(prefix+".csv", rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := writeXLSX(prefix+".xlsx", rows); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	e.debug("table written", "base", base, "rows", len(articles), "dir", dir)
	return nil
}

// WriteDigest saves the plain-text digest: title, link and summary per
// selected article.
func (e *FileExporter) WriteDigest(name string, articles []domain.Article) error {
	if len(articles) == 0 {
		e.debug("empty batch, skipping digest", "name", name)
		return nil
	}

	var b strings.Builder
	for _, a := range articles {
		b.WriteString(strings.Repeat("=", 80) + "\n")
		fmt.Fprintf(&b, "Title: %s\n\n", a.Title)
		fmt.Fprintf(&b, "Link: %s\n\n", a.URL)
		b.WriteString("--- Summary ---\n")
		summary := a.SummarizedContent
		if summary == "" {
			summary = "summary unavailable"
		}
		b.WriteString(strings.TrimSpace(summary) + "\n\n")
	}

	path := filepath.Join(e.root, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	e.debug("digest written", "path", path, "articles", len(articles))
	return nil
}

func buildRows(articles []domain.Article, columns []string) [][]string {
	rows := make([][]string, 0, len(articles)+1)
	rows = append(rows, columns)
	for _, a := range articles {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			if value, ok := columnValue[col]; ok {
				row = append(row, value(a))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func (e *FileExporter) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
