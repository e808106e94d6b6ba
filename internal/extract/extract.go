// Package extract turns uploaded notes into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure Extractor implements model.Extractor.
var _ model.Extractor = (*Extractor)(nil)

// UnsupportedMessage is returned for files with an unknown extension.
const UnsupportedMessage = "Unsupported file type. Please upload PDF or TXT."

type format int

const (
	formatUnknown format = iota
	formatPDF
	formatText
	formatHTML
)

var formats = map[string]format{
	".pdf":      formatPDF,
	".txt":      formatText,
	".md":       formatText,
	".markdown": formatText,
	".html":     formatHTML,
	".htm":      formatHTML,
}

// Supported reports whether name has an extension the extractor can read.
func Supported(name string) bool {
	return formatOf(name) != formatUnknown
}

func formatOf(name string) format {
	return formats[strings.ToLower(filepath.Ext(name))]
}

// Extractor reads PDF, plain-text, markdown and HTML notes.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads the file at path.
func (e *Extractor) Extract(path string) model.Outcome {
	if !Supported(path) {
		return unsupported()
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Failure(model.ExtractionError(err))
	}
	defer f.Close()
	return e.ExtractReader(filepath.Base(path), f)
}

// ExtractReader reads an uploaded file; name only selects the format.
func (e *Extractor) ExtractReader(name string, r io.Reader) model.Outcome {
	fm := formatOf(name)
	if fm == formatUnknown {
		return unsupported()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return model.Failure(model.ExtractionError(err))
	}

	var text string
	switch fm {
	case formatPDF:
		text, err = extractPDF(data)
	case formatText:
		text, err = decodeUTF8(data)
	case formatHTML:
		text, err = extractHTML(data)
	}
	if err != nil {
		e.logger.Warn("extraction failed", "file", name, "error", err)
		return model.Failure(model.ExtractionError(err))
	}

	e.logger.Debug("extracted text", "file", name, "bytes", len(data), "chars", len(text))
	return model.Success(text)
}

func unsupported() model.Outcome {
	return model.Failure(&model.StageError{Kind: model.KindInput, Message: UnsupportedMessage})
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8")
	}
	return string(data), nil
}

func extractHTML(data []byte) (string, error) {
	s, err := decodeUTF8(data)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return markdown, nil
}

// extractPDF returns the text layer of every page, one newline after each.
func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}
