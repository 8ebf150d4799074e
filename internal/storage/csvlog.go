package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/resume-rater/internal/hiring"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVLog appends evaluation records to a UTF-8 CSV file with a byte order mark.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

func NewCSVLog(path string) (*CSVLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap("create evaluation log dir", filepath.Dir(path), err)
	}
	return &CSVLog{path: path}, nil
}

func (l *CSVLog) Path() string {
	return l.path
}

// Append adds one row. The header is written first when the file is new or empty.
func (l *CSVLog) Append(record *hiring.EvaluationRecord) error {
	row, err := flatten(record)
	if err != nil {
		return wrap("flatten evaluation", record.SubmissionID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return wrap("open evaluation log", l.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return wrap("stat evaluation log", l.path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		buf.Write(utf8BOM)
		if err := w.Write(Columns); err != nil {
			return wrap("write evaluation log header", l.path, err)
		}
	}
	if err := w.Write(row); err != nil {
		return wrap("write evaluation", l.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return wrap("write evaluation", l.path, err)
	}

	// One write call per record keeps rows whole under O_APPEND.
	if _, err := f.Write(buf.Bytes()); err != nil {
		return wrap("append evaluation", l.path, err)
	}
	return wrap("sync evaluation log", l.path, f.Sync())
}

func (l *CSVLog) List(jobID string) ([]*hiring.EvaluationRecord, error) {
	records, err := l.readAll()
	if err != nil || jobID == "" {
		return records, err
	}

	filtered := make([]*hiring.EvaluationRecord, 0, len(records))
	for _, record := range records {
		if record.JobID == jobID {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (l *CSVLog) Get(submissionID string) (*hiring.EvaluationRecord, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.SubmissionID == submissionID {
			return record, nil
		}
	}
	return nil, wrap("get evaluation", submissionID, ErrNotFound)
}

func (l *CSVLog) Count() (int, error) {
	records, err := l.readAll()
	return len(records), err
}

func (l *CSVLog) Close() error {
	return nil
}

func (l *CSVLog) readAll() ([]*hiring.EvaluationRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, wrap("open evaluation log", l.path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, wrap("read evaluation log", l.path, err)
		}
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, wrap("read evaluation log header", l.path, err)
	}
	for i, name := range header {
		if current, ok := legacyColumns[name]; ok {
			header[i] = current
		}
	}

	var records []*hiring.EvaluationRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrap("read evaluation log", l.path, err)
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				values[name] = row[i]
			}
		}

		record, err := unflatten(values)
		if err != nil {
			return nil, wrap("decode evaluation", l.path, err)
		}
		records = append(records, record)
	}

	return records, nil
}
