// Package document validates uploaded files and extracts the metadata shown
// in the document viewer: name, size, page count and a first-page excerpt.
package document

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/format"
)

// PDFContentType is the only accepted media type.
const PDFContentType = "application/pdf"

// sniffLen is the number of bytes inspected by http.DetectContentType.
const sniffLen = 512

// MaxExcerptRunes bounds the first-page excerpt.
const MaxExcerptRunes = 400

// Info describes a document for the preview pane.
type Info struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	// Pages is zero when the PDF structure could not be read.
	Pages int
	// Excerpt is the whitespace-collapsed text of the first page.
	Excerpt string
	// Readable is false when the file passed validation but could not be parsed.
	Readable bool
}

// SizeMB returns the size in megabytes with two decimals.
func (i Info) SizeMB() string {
	return format.FormatMegabytes(i.Size)
}

// Validate checks that path is a regular file whose content sniffs as a PDF.
func Validate(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return apperrors.ValidationError{Field: "file", Message: err.Error()}
	}
	if fi.IsDir() {
		return apperrors.ValidationError{Field: "file", Message: fmt.Sprintf("%s is a directory", path)}
	}
	f, err := os.Open(path)
	if err != nil {
		return apperrors.ValidationError{Field: "file", Message: err.Error()}
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return apperrors.ValidationError{Field: "file", Message: err.Error()}
	}
	if ct := http.DetectContentType(head[:n]); ct != PDFContentType {
		return apperrors.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("only PDF files are accepted, %s is %s", filepath.Base(path), ct),
		}
	}
	return nil
}

// Inspect validates path and reads its preview metadata. A PDF whose
// structure cannot be parsed is still returned, with Readable unset.
func Inspect(path string) (Info, error) {
	if err := Validate(path); err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}

	pages, excerpt, err := readPDF(path)
	if err != nil {
		return info, nil
	}
	info.Pages = pages
	info.Excerpt = excerpt
	info.Readable = true
	return info, nil
}

// readPDF returns the page count and first-page excerpt.
func readPDF(path string) (pages int, excerpt string, err error) {
	defer func() {
		// The parser panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	pages = reader.NumPage()
	for i := 1; i <= pages && excerpt == ""; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		excerpt = Excerpt(text, MaxExcerptRunes)
	}
	return pages, excerpt, nil
}

// Excerpt collapses whitespace in text and truncates it to max runes,
// appending an ellipsis when truncated.
func Excerpt(text string, max int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(collapsed) <= max {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
