package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/logger"
)

// listSep joins multi-value cells, matching the aggregated-column separator
// the merge stage produces.
const listSep = "|"

// Writer lands datasets and edge lists as CSV files under one directory.
type Writer struct {
	dir string
	log *logger.Logger
}

func NewWriter(dir string, log *logger.Logger) *Writer {
	if dir == "" {
		dir = "output"
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Writer{dir: dir, log: log}
}

// WriteDataset writes one table as <name>.csv with the field list as the
// header row; absent values become empty cells. Returns the file path.
func (w *Writer) WriteDataset(name string, fields []string, records []model.Record) (string, error) {
	path, file, err := w.create(name)
	if err != nil {
		return "", err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(fields); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(fields))
	for _, rec := range records {
		for i, f := range fields {
			row[i] = ""
			if v, ok := rec.Text(f); ok {
				row[i] = v
			}
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.log.Info("dataset exported", "path", path, "rows", len(records))
	return path, nil
}

// WriteEdges writes an edge list as <name>.csv. The fixed columns are
// source_id, label and target_id; property keys across all edges become
// additional columns in sorted order.
func (w *Writer) WriteEdges(name string, edges []model.Edge) (string, error) {
	keys := map[string]struct{}{}
	for _, e := range edges {
		for k := range e.Props {
			keys[k] = struct{}{}
		}
	}
	propCols := make([]string, 0, len(keys))
	for k := range keys {
		propCols = append(propCols, k)
	}
	sort.Strings(propCols)

	path, file, err := w.create(name)
	if err != nil {
		return "", err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	header := append([]string{"source_id", "label", "target_id"}, propCols...)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range edges {
		row := make([]string, 0, len(header))
		row = append(row, e.SourceID, e.Label, e.TargetID)
		for _, k := range propCols {
			row = append(row, cell(e.Props[k]))
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.log.Info("edges exported", "path", path, "rows", len(edges))
	return path, nil
}

func (w *Writer) create(name string) (string, *os.File, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(w.dir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return path, file, nil
}

// cell renders one property value, joining lists with the aggregated-column
// separator.
func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, listSep)
	default:
		return fmt.Sprint(t)
	}
}
