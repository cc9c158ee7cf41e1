package csvcodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/taskmanager/task-api/internal/core/ports"
)

// Codec reads uploaded CSV files and writes task exports.
type Codec struct{}

func New() *Codec { return &Codec{} }

// ParseRows reads a header row followed by records. Each record becomes a map
// keyed by header name.
func (Codec) ParseRows(data []byte) ([]map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("csv: empty file")
	}
	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if rows == nil {
		rows = []map[string]string{}
	}
	return rows, nil
}

func (Codec) EncodeTasks(rows []ports.TaskExportRow) ([]byte, error) {
	if rows == nil {
		rows = []ports.TaskExportRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	return out, nil
}
