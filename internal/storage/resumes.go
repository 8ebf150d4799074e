package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spigell/resume-rater/internal/document"
	"github.com/spigell/resume-rater/internal/utils"
)

// ResumeStore keeps the submitted resume of every evaluation as one PDF file.
type ResumeStore struct {
	dir string
}

func NewResumeStore(dir string) (*ResumeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("create resume dir", dir, err)
	}
	return &ResumeStore{dir: dir}, nil
}

func (s *ResumeStore) Dir() string {
	return s.dir
}

// Save stores files as <submissionID>_<applicant>.pdf. Several files are merged
// into one document in the given order. It returns the stored path.
func (s *ResumeStore) Save(submissionID, applicant string, files []string) (string, error) {
	if len(files) == 0 {
		return "", wrap("store resume", submissionID, errors.New("no resume files given"))
	}

	name := submissionID + "_" + utils.SanitizeFileName(applicant, "applicant") + ".pdf"
	dst := filepath.Join(s.dir, name)

	if len(files) > 1 {
		if err := document.Merge(files, dst); err != nil {
			os.Remove(dst)
			return "", wrap("merge resume files", dst, err)
		}
		return dst, nil
	}

	if err := document.CheckPDF(files[0]); err != nil {
		return "", wrap("store resume", files[0], err)
	}
	if err := copyFile(files[0], dst); err != nil {
		return "", wrap("copy resume", dst, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
