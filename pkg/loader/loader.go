package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files that are neither pdf, docx nor
// plain text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatText Format = "txt"
)

// FormatFromName derives the document format from a file name.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	case "txt", "md", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ContentType returns the MIME type used when the raw file is stored.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/plain; charset=utf-8"
}

// ExtractPages returns the text of every page of a document. Formats without
// a page model yield a single page.
//
// Example:
//
//	pages, err := loader.ExtractPages(ctx, "requirements.pdf", content)
//	if err != nil {
//		log.Fatal(err)
//	}
func ExtractPages(ctx context.Context, name string, content []byte) ([]string, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}

	var pages []string
	switch format {
	case FormatPDF:
		pages, err = parsePDF(ctx, content)
	case FormatDocx:
		var text string
		text, err = parseDocx(content)
		pages = []string{text}
	default:
		pages = parseText(content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", name, err)
	}
	return pages, nil
}
