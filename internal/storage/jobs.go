package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spigell/resume-rater/internal/hiring"
	"github.com/spigell/resume-rater/internal/rubric"
)

const jobExt = ".json"

// JobStore keeps one pretty-printed JSON file per job posting.
type JobStore struct {
	dir string
}

func NewJobStore(dir string) (*JobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("create job postings dir", dir, err)
	}
	return &JobStore{dir: dir}, nil
}

func (s *JobStore) Dir() string {
	return s.dir
}

// Save writes job atomically, replacing any posting with the same ID.
func (s *JobStore) Save(job *hiring.JobPosting) error {
	if job == nil {
		return rubric.Invalid("job posting is required")
	}
	if err := checkID(job.ID); err != nil {
		return err
	}
	if total := job.EvaluationCriteria.Total(); total != hiring.RequiredTotal {
		return &rubric.ValidationError{
			Total:   total,
			Message: fmt.Sprintf("rubric scores must total %d points, got %d", hiring.RequiredTotal, total),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(job); err != nil {
		return wrap("encode job posting", job.ID, err)
	}

	return writeFileAtomic(s.path(job.ID), buf.Bytes())
}

// Get loads the posting with the given ID.
func (s *JobStore) Get(id string) (*hiring.JobPosting, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.load(s.path(id))
}

// List returns all postings ordered by file name, descending.
func (s *JobStore) List() ([]*hiring.JobPosting, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}

	jobs := make([]*hiring.JobPosting, 0, len(names))
	for _, name := range names {
		job, err := s.load(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Delete removes a posting. Evaluations that reference it are kept.
func (s *JobStore) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	path := s.path(id)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return wrap("delete job posting", id, ErrNotFound)
		}
		return wrap("delete job posting", path, err)
	}
	return nil
}

// Count returns the number of stored postings.
func (s *JobStore) Count() (int, error) {
	names, err := s.names()
	return len(names), err
}

func (s *JobStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, wrap("list job postings", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), jobExt) {
			continue
		}
		names = append(names, entry.Name())
	}

	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}

func (s *JobStore) load(path string) (*hiring.JobPosting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, wrap("read job posting", strings.TrimSuffix(filepath.Base(path), jobExt), ErrNotFound)
		}
		return nil, wrap("read job posting", path, err)
	}

	var job hiring.JobPosting
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, wrap("decode job posting", path, err)
	}
	return &job, nil
}

func (s *JobStore) path(id string) string {
	return filepath.Join(s.dir, id+jobExt)
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return rubric.Invalid("job posting id is required")
	}
	if id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return rubric.Invalid("invalid job posting id %q", id)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return wrap("create temp file", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wrap("write temp file", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return wrap("sync temp file", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("close temp file", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return wrap("chmod temp file", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return wrap("rename temp file", path, err)
	}
	return nil
}
