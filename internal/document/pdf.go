// Package document reads and combines resume PDFs.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	// ErrNoText is returned when a PDF has no extractable text.
	ErrNoText = errors.New("no text content found in PDF")
	// ErrNotPDF is returned for files without a PDF header.
	ErrNotPDF = errors.New("file is not a PDF")
)

var pdfMagic = []byte("%PDF-")

// PDF extracts plain text from PDF files.
type PDF struct{}

// ExtractText returns the plain text of every page, in page order.
func (PDF) ExtractText(path string) (string, error) {
	return ExtractText(path)
}

// ExtractText returns the plain text of every page of the PDF at path, in page
// order. A document without any text yields ErrNoText.
func ExtractText(path string) (text string, err error) {
	if err := CheckPDF(path); err != nil {
		return "", err
	}

	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse PDF %q: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}

		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	text = builder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	return text, nil
}

// CheckPDF verifies that path exists and starts with a PDF header.
func CheckPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("%q: %w", path, ErrNotPDF)
	}
	return nil
}

// Merge concatenates inFiles into a single PDF at outFile.
func Merge(inFiles []string, outFile string) error {
	if len(inFiles) == 0 {
		return errors.New("no PDF files to merge")
	}

	for _, in := range inFiles {
		if err := CheckPDF(in); err != nil {
			return err
		}
	}

	if err := api.MergeCreateFile(inFiles, outFile, false, nil); err != nil {
		return fmt.Errorf("merging %d PDF files: %w", len(inFiles), err)
	}
	return nil
}
